// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     vad
// Description: WebRTC voice activity detection engine
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package vad

import (
	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// WebRTC wraps the WebRTC voice activity detector. It accepts the
// capture pipeline's float32 frames and classifies them in 10ms
// subframes; a frame counts as speech when any subframe votes speech.
type WebRTC struct {
	vad        *webrtcvad.VAD
	sampleRate int
	mode       int
}

// NewWebRTC creates a WebRTC detector with the configured
// aggressiveness mode. The mode is clamped to the valid 0-3 range.
func NewWebRTC(cfg Config) (*WebRTC, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, mswerror.Wrap(err, "failed to create WebRTC VAD").
			WithCode(mswerror.CodeAudioDevice).
			WithOperation("vad.NewWebRTC")
	}

	mode := cfg.Mode
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	if err := v.SetMode(mode); err != nil {
		return nil, mswerror.Wrap(err, "failed to set VAD mode").
			WithCode(mswerror.CodeInvalidConfig).
			WithOperation("vad.NewWebRTC")
	}

	if !validSampleRate(cfg.SampleRate) {
		return nil, mswerror.Newf("invalid sample rate %d, must be 8000, 16000, 32000, or 48000", cfg.SampleRate).
			WithCode(mswerror.CodeInvalidConfig).
			WithOperation("vad.NewWebRTC")
	}

	return &WebRTC{
		vad:        v,
		sampleRate: cfg.SampleRate,
		mode:       mode,
	}, nil
}

func validSampleRate(rate int) bool {
	switch rate {
	case 8000, 16000, 32000, 48000:
		return true
	}
	return false
}

// Classify returns true if any 10ms subframe of the frame contains
// speech.
func (w *WebRTC) Classify(frame []float32) (bool, error) {
	if len(frame) == 0 {
		return false, nil
	}

	samples := float32ToInt16(frame)

	// The detector accepts 10ms, 20ms, or 30ms windows; 10ms keeps the
	// subframe count independent of the capture frame duration.
	subframe := w.sampleRate / 100

	if len(samples) < subframe {
		padded := make([]int16, subframe)
		copy(padded, samples)
		samples = padded
	}

	for i := 0; i+subframe <= len(samples); i += subframe {
		active, err := w.vad.Process(w.sampleRate, int16ToBytes(samples[i:i+subframe]))
		if err != nil {
			return false, mswerror.Wrap(err, "VAD processing failed").
				WithCode(mswerror.CodeInternal).
				WithOperation("vad.WebRTC.Classify")
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}

// Calibrate is a no-op: the WebRTC model needs no ambient noise
// calibration.
func (w *WebRTC) Calibrate(ambient []float32) error {
	return nil
}

// Reset clears per-utterance state. The detector is stateless across
// frames, so there is nothing to clear.
func (w *WebRTC) Reset() {}

// Close releases resources.
func (w *WebRTC) Close() error {
	return nil
}

// Mode returns the active aggressiveness mode.
func (w *WebRTC) Mode() int {
	return w.mode
}

// float32ToInt16 converts normalized float32 samples to 16-bit PCM,
// clamping out-of-range values.
func float32ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		}
		if s < -1.0 {
			s = -1.0
		}
		out[i] = int16(s * 32767)
	}
	return out
}

// int16ToBytes converts int16 samples to little-endian bytes as the
// WebRTC detector expects.
func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
