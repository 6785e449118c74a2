// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     tts
// Description: Speech synthesis backends and fallback routing
// Author:      Mike Stoffels with Claude
// Created:     2026-01-05
// License:     MIT
// ============================================================================

package tts

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

// Backend synthesizes and plays one reply.
type Backend interface {
	// Name identifies the backend in logs and the startup banner.
	Name() string

	// Speak synthesizes text and plays it. A returned error means the
	// backend produced no audible output and a fallback may try.
	Speak(ctx context.Context, text string) error
}

// Config holds synthesis settings for all backends.
type Config struct {
	ElevenLabs ElevenLabsConfig
	OpenAI     OpenAIConfig
	Say        SayConfig

	// RequestTimeout bounds one synthesis HTTP call.
	RequestTimeout time.Duration

	// EncodeTimeout bounds the ffmpeg speed re-encode.
	EncodeTimeout time.Duration

	// PlaybackTimeout bounds one player run.
	PlaybackTimeout time.Duration

	// MinAudioBytes is the smallest response that counts as synthesized
	// audio. Smaller files are failures regardless of HTTP status.
	MinAudioBytes int64
}

// DefaultConfig returns default synthesis settings.
func DefaultConfig() Config {
	return Config{
		ElevenLabs: ElevenLabsConfig{
			VoiceID: defaultElevenLabsVoiceID,
			ModelID: defaultElevenLabsModelID,
			Speed:   1.0,
			BaseURL: defaultElevenLabsBaseURL,
		},
		OpenAI: OpenAIConfig{
			Voice:   defaultOpenAIVoice,
			Model:   defaultOpenAIModel,
			BaseURL: defaultOpenAIBaseURL,
		},
		Say: SayConfig{
			Rate: defaultSayRate,
		},
		RequestTimeout:  30 * time.Second,
		EncodeTimeout:   15 * time.Second,
		PlaybackTimeout: 60 * time.Second,
		MinAudioBytes:   1000,
	}
}

// Router picks the synthesis backend once at startup and degrades to
// the local synthesizer when the chosen cloud backend fails. At most
// two attempts per reply: the configured backend, then local.
type Router struct {
	attempts []Backend
	logger   *logging.Logger
}

// NewRouter builds the backend chain from available credentials:
// ElevenLabs over OpenAI over local say.
func NewRouter(cfg Config) *Router {
	logger := logging.New("tts")

	local := NewSay(cfg.Say, cfg.PlaybackTimeout)

	var cloud Backend
	switch {
	case cfg.ElevenLabs.APIKey != "":
		cloud = newElevenLabsChain(cfg, logger)
	case cfg.OpenAI.APIKey != "":
		cloud = newOpenAIChain(cfg, logger)
	}

	attempts := []Backend{local}
	if cloud != nil {
		attempts = []Backend{cloud, local}
	}
	return &Router{attempts: attempts, logger: logger}
}

func newElevenLabsChain(cfg Config, logger *logging.Logger) Backend {
	player, err := NewPlayer(cfg.PlaybackTimeout)
	if err != nil {
		logger.Warn("no audio player found, cloud synthesis disabled", "error", err)
		return nil
	}
	return NewElevenLabs(cfg.ElevenLabs, player, cfg.RequestTimeout, cfg.EncodeTimeout, cfg.MinAudioBytes)
}

func newOpenAIChain(cfg Config, logger *logging.Logger) Backend {
	player, err := NewPlayer(cfg.PlaybackTimeout)
	if err != nil {
		logger.Warn("no audio player found, cloud synthesis disabled", "error", err)
		return nil
	}
	return NewOpenAI(cfg.OpenAI, player, cfg.RequestTimeout, cfg.MinAudioBytes)
}

// Chain returns the backend names in attempt order.
func (r *Router) Chain() []string {
	names := make([]string, len(r.attempts))
	for i, b := range r.attempts {
		names[i] = b.Name()
	}
	return names
}

// Speak synthesizes and plays the reply. Synthesis trouble degrades
// along the chain and is never surfaced to the caller: a turn without
// audio is still a completed turn.
func (r *Router) Speak(ctx context.Context, text string) {
	for i, backend := range r.attempts {
		err := backend.Speak(ctx, text)
		if err == nil {
			return
		}
		if i+1 < len(r.attempts) {
			r.logger.Warn("synthesis failed, falling back",
				"backend", backend.Name(),
				"fallback", r.attempts[i+1].Name(),
				"error", err)
			continue
		}
		r.logger.Warn("no speech output for this turn",
			"backend", backend.Name(),
			"error", err)
	}
}

// downloadAudio performs a synthesis request and stores the response
// body in a temp file. The file is a failure if the status is not OK
// or the body is smaller than minBytes. The caller owns the returned
// path.
func downloadAudio(client *http.Client, req *http.Request, minBytes int64) (string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return "", mswerror.Wrap(err, "synthesis request failed").
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.downloadAudio")
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp("", "msw-tts-*.mp3")
	if err != nil {
		return "", mswerror.Wrap(err, "failed to create temp audio file").
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.downloadAudio")
	}
	path := tmp.Name()

	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()

	if copyErr != nil || closeErr != nil {
		removeQuietly(path)
		return "", mswerror.New("failed to store synthesized audio").
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.downloadAudio")
	}
	if resp.StatusCode != http.StatusOK {
		removeQuietly(path)
		return "", mswerror.Newf("synthesis returned HTTP %d", resp.StatusCode).
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.downloadAudio")
	}
	if written < minBytes {
		removeQuietly(path)
		return "", mswerror.Newf("synthesized audio too small: %d bytes", written).
			WithCode(mswerror.CodeTTSSynth).
			WithOperation("tts.downloadAudio")
	}
	return path, nil
}

// removeQuietly deletes a temp file, swallowing failures. Leftover
// temp files are not worth interrupting a conversation over.
func removeQuietly(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
