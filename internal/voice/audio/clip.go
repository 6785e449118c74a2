// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     audio
// Description: Audio clip type shared across the voice pipeline
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package audio

import "time"

// Clip is one bounded span of mono audio, float32 samples in [-1, 1]
// at a fixed sample rate. The recorder produces clips, the
// transcription adapter consumes them exactly once.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// NewClip creates a clip for the given sample rate
func NewClip(sampleRate int) *Clip {
	return &Clip{SampleRate: sampleRate}
}

// Append adds a frame of samples to the clip
func (c *Clip) Append(frame []float32) {
	c.Samples = append(c.Samples, frame...)
}

// Duration returns the clip length derived from the sample count
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// Empty reports whether the clip holds no samples
func (c *Clip) Empty() bool {
	return len(c.Samples) == 0
}
