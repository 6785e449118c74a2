// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     tts
// Description: ElevenLabs speech synthesis
// Author:      Mike Stoffels with Claude
// Created:     2026-01-05
// License:     MIT
// ============================================================================

package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsModelID = "eleven_turbo_v2_5"

	// Rachel.
	defaultElevenLabsVoiceID = "21m00Tcm4TlvDq8ikWAM"

	// reencodeMinBytes is the smallest ffmpeg output worth playing
	// over the original.
	reencodeMinBytes = 500
)

// ElevenLabsConfig holds ElevenLabs settings.
type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
	ModelID string

	// Speed is an atempo multiplier applied after synthesis. 1.0 plays
	// the audio as delivered.
	Speed float64

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// ElevenLabs synthesizes speech through the ElevenLabs API and plays
// it locally, optionally re-encoded to a faster tempo.
type ElevenLabs struct {
	apiKey        string
	voiceID       string
	modelID       string
	speed         float64
	baseURL       string
	client        *http.Client
	player        *Player
	encodeTimeout time.Duration
	minAudioBytes int64
	logger        *logging.Logger
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// NewElevenLabs creates an ElevenLabs backend.
func NewElevenLabs(cfg ElevenLabsConfig, player *Player, requestTimeout, encodeTimeout time.Duration, minAudioBytes int64) *ElevenLabs {
	def := DefaultConfig()
	if cfg.VoiceID == "" {
		cfg.VoiceID = def.ElevenLabs.VoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = def.ElevenLabs.ModelID
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.ElevenLabs.BaseURL
	}
	if requestTimeout <= 0 {
		requestTimeout = def.RequestTimeout
	}
	if encodeTimeout <= 0 {
		encodeTimeout = def.EncodeTimeout
	}
	if minAudioBytes <= 0 {
		minAudioBytes = def.MinAudioBytes
	}
	return &ElevenLabs{
		apiKey:        cfg.APIKey,
		voiceID:       cfg.VoiceID,
		modelID:       cfg.ModelID,
		speed:         cfg.Speed,
		baseURL:       cfg.BaseURL,
		client:        &http.Client{Timeout: requestTimeout},
		player:        player,
		encodeTimeout: encodeTimeout,
		minAudioBytes: minAudioBytes,
		logger:        logging.New("tts.elevenlabs"),
	}
}

// Name identifies the backend.
func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

// Speak synthesizes the text, optionally re-encodes it to the
// configured tempo, and plays it.
func (e *ElevenLabs) Speak(ctx context.Context, text string) error {
	rawPath, err := e.synthesize(ctx, text)
	if err != nil {
		return err
	}
	defer removeQuietly(rawPath)

	playPath := rawPath
	if e.speed != 1.0 {
		if fastPath := e.reencode(ctx, rawPath); fastPath != "" {
			defer removeQuietly(fastPath)
			playPath = fastPath
		}
	}

	return e.player.Play(ctx, playPath)
}

// synthesize requests the audio and stores it in a temp file.
func (e *ElevenLabs) synthesize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: elevenLabsSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return "", mswerror.Wrap(err, "failed to encode synthesis request").
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.ElevenLabs.synthesize")
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", mswerror.Wrap(err, "failed to create synthesis request").
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.ElevenLabs.synthesize")
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return downloadAudio(e.client, req, e.minAudioBytes)
}

// reencode speeds the audio up with ffmpeg. Any trouble keeps the
// original: returns the re-encoded path or "".
func (e *ElevenLabs) reencode(ctx context.Context, rawPath string) string {
	tmp, err := os.CreateTemp("", "msw-tts-fast-*.mp3")
	if err != nil {
		return ""
	}
	fastPath := tmp.Name()
	tmp.Close()

	runCtx, cancel := context.WithTimeout(ctx, e.encodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "ffmpeg",
		"-y", "-loglevel", "error",
		"-i", rawPath,
		"-filter:a", fmt.Sprintf("atempo=%g", e.speed),
		"-q:a", "2",
		fastPath,
	)

	// Exit status alone does not decide: the output file does. Only a
	// missing ffmpeg or a hit timeout keeps the original outright.
	err = cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || runCtx.Err() != nil {
			e.logger.Debug("speed re-encode failed, playing original", "error", err)
			removeQuietly(fastPath)
			return ""
		}
	}

	info, statErr := os.Stat(fastPath)
	if statErr != nil || info.Size() <= reencodeMinBytes {
		removeQuietly(fastPath)
		return ""
	}
	return fastPath
}
