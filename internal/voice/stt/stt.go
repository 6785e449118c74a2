// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     stt
// Description: Speech-to-text interface
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package stt

import (
	"context"
	"time"

	"github.com/msto63/mSW/internal/voice/audio"
)

// Transcriber converts recorded clips to text.
type Transcriber interface {
	// Transcribe converts a clip to text. An empty string is a valid
	// result (nothing intelligible), not an error.
	Transcribe(ctx context.Context, clip *audio.Clip) (string, error)

	// Prime warms the engine so the first real utterance does not pay
	// the model load cost.
	Prime(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Config holds transcription settings.
type Config struct {
	// Binary is an explicit transcriber binary path. Empty means
	// search PATH and common install locations.
	Binary string

	// Model is the model name used to resolve a model file when
	// ModelPath is empty (e.g. "tiny", "base", "small").
	Model string

	// ModelPath is an explicit model file path. Takes precedence over
	// Model resolution.
	ModelPath string

	// Language hint passed to the engine.
	Language string

	// SampleRate of the clips to transcribe.
	SampleRate int

	// Timeout bounds a single transcription run.
	Timeout time.Duration
}

// DefaultConfig returns default transcription settings.
func DefaultConfig() Config {
	return Config{
		Model:      "tiny",
		Language:   "en",
		SampleRate: 16000,
		Timeout:    60 * time.Second,
	}
}
