// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     tts
// Description: OpenAI speech synthesis
// Author:      Mike Stoffels with Claude
// Created:     2026-01-05
// License:     MIT
// ============================================================================

package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "tts-1"
	defaultOpenAIVoice   = "alloy"
)

// OpenAIConfig holds OpenAI TTS settings.
type OpenAIConfig struct {
	APIKey string
	Voice  string
	Model  string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// OpenAI synthesizes speech through the OpenAI audio API and plays
// it locally.
type OpenAI struct {
	apiKey        string
	voice         string
	model         string
	baseURL       string
	client        *http.Client
	player        *Player
	minAudioBytes int64
	logger        *logging.Logger
}

type openAIRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(cfg OpenAIConfig, player *Player, requestTimeout time.Duration, minAudioBytes int64) *OpenAI {
	def := DefaultConfig()
	if cfg.Voice == "" {
		cfg.Voice = def.OpenAI.Voice
	}
	if cfg.Model == "" {
		cfg.Model = def.OpenAI.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.OpenAI.BaseURL
	}
	if requestTimeout <= 0 {
		requestTimeout = def.RequestTimeout
	}
	if minAudioBytes <= 0 {
		minAudioBytes = def.MinAudioBytes
	}
	return &OpenAI{
		apiKey:        cfg.APIKey,
		voice:         cfg.Voice,
		model:         cfg.Model,
		baseURL:       cfg.BaseURL,
		client:        &http.Client{Timeout: requestTimeout},
		player:        player,
		minAudioBytes: minAudioBytes,
		logger:        logging.New("tts.openai"),
	}
}

// Name identifies the backend.
func (o *OpenAI) Name() string {
	return "openai"
}

// Speak synthesizes the text and plays it.
func (o *OpenAI) Speak(ctx context.Context, text string) error {
	body, err := json.Marshal(openAIRequest{
		Model: o.model,
		Voice: o.voice,
		Input: text,
	})
	if err != nil {
		return mswerror.Wrap(err, "failed to encode synthesis request").
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.OpenAI.Speak")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return mswerror.Wrap(err, "failed to create synthesis request").
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.OpenAI.Speak")
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	path, err := downloadAudio(o.client, req, o.minAudioBytes)
	if err != nil {
		return err
	}
	defer removeQuietly(path)

	return o.player.Play(ctx, path)
}
