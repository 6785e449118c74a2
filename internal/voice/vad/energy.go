// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     vad
// Description: RMS energy voice activity detection
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package vad

import (
	"math"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// calibrationGain scales the ambient RMS into a speech threshold. Normal
// speech sits well above triple the noise floor.
const calibrationGain = 3.0

// Energy detects speech by comparing per-frame RMS energy against a
// threshold derived from ambient noise calibration.
type Energy struct {
	threshold  float64
	floor      float64
	calibrated bool
}

// NewEnergy creates an energy detector. Until Calibrate is called the
// threshold equals the configured floor.
func NewEnergy(cfg Config) *Energy {
	floor := cfg.ThresholdFloor
	if floor <= 0 {
		floor = DefaultConfig().ThresholdFloor
	}
	return &Energy{
		threshold: floor,
		floor:     floor,
	}
}

// Calibrate derives the speech threshold from ambient noise samples.
// The threshold is the ambient RMS scaled by the calibration gain but
// never below the configured floor, so a dead-quiet room does not turn
// breathing into speech.
func (e *Energy) Calibrate(ambient []float32) error {
	if len(ambient) == 0 {
		return mswerror.New("no ambient samples captured").
			WithCode(mswerror.CodeAudioCalibrate).
			WithOperation("vad.Energy.Calibrate")
	}

	threshold := rms(ambient) * calibrationGain
	if threshold < e.floor {
		threshold = e.floor
	}
	e.threshold = threshold
	e.calibrated = true
	return nil
}

// Classify returns true if the frame's RMS energy exceeds the threshold.
func (e *Energy) Classify(frame []float32) (bool, error) {
	if len(frame) == 0 {
		return false, nil
	}
	return rms(frame) > e.threshold, nil
}

// Reset is a no-op: the calibrated threshold stays valid across
// utterances.
func (e *Energy) Reset() {}

// Close releases resources.
func (e *Energy) Close() error {
	return nil
}

// Threshold returns the active speech threshold.
func (e *Energy) Threshold() float64 {
	return e.threshold
}

// Calibrated reports whether Calibrate has run.
func (e *Energy) Calibrated() bool {
	return e.calibrated
}

// rms computes the root mean square of the samples.
func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
