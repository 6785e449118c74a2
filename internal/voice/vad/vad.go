// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     vad
// Description: Voice activity detection interface and engine selection
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package vad

import (
	"strings"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// Engine names accepted by NewDetector.
const (
	EngineEnergy = "energy"
	EngineWebRTC = "webrtc"
)

// Detector classifies audio frames as speech or non-speech.
//
// Implementations are stateful: Calibrate adapts the detector to the
// ambient noise floor before the first Classify call, and Reset clears
// any per-utterance state between recordings.
type Detector interface {
	// Classify returns true if the frame contains speech.
	Classify(frame []float32) (bool, error)

	// Calibrate adapts the detector to ambient noise samples.
	Calibrate(ambient []float32) error

	// Reset clears per-utterance state.
	Reset()

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	// Engine selects the detection backend ("energy" or "webrtc").
	Engine string

	// SampleRate is the audio sample rate (8000, 16000, 32000, or 48000
	// for the WebRTC engine; the energy engine accepts any rate).
	SampleRate int

	// ThresholdFloor is the minimum energy threshold regardless of how
	// quiet the calibration environment was. Energy engine only.
	ThresholdFloor float64

	// Mode is the WebRTC aggressiveness (0-3). WebRTC engine only.
	Mode int

	// SilenceDuration is how long silence must last to end an utterance.
	SilenceDuration time.Duration

	// MinSpeechDuration is the minimum utterance length worth keeping.
	MinSpeechDuration time.Duration
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{
		Engine:            EngineEnergy,
		SampleRate:        16000,
		ThresholdFloor:    0.005,
		Mode:              2,
		SilenceDuration:   1500 * time.Millisecond,
		MinSpeechDuration: 500 * time.Millisecond,
	}
}

// NewDetector creates the detector selected by cfg.Engine.
func NewDetector(cfg Config) (Detector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", EngineEnergy:
		return NewEnergy(cfg), nil
	case EngineWebRTC:
		return NewWebRTC(cfg)
	default:
		return nil, mswerror.Newf("unknown VAD engine %q", cfg.Engine).
			WithCode(mswerror.CodeInvalidConfig).
			WithOperation("vad.NewDetector")
	}
}
