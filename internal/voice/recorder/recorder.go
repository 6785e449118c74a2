// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     recorder
// Description: Utterance recording state machine over classified frames
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/msto63/mSW/internal/voice/audio"
	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

// Source yields capture frames. ReadFrame blocks until a full frame is
// available or the context is cancelled.
type Source interface {
	ReadFrame(ctx context.Context) ([]float32, error)
}

// Classifier decides speech vs. silence for a single frame.
type Classifier interface {
	Classify(frame []float32) (bool, error)
}

// state of the recording machine.
type state int

const (
	// stateIdle drops silence frames while waiting for speech.
	stateIdle state = iota

	// stateCapturing accumulates frames of an active utterance.
	stateCapturing

	// stateTrailing accumulates frames while counting down the
	// end-of-utterance silence window.
	stateTrailing
)

// Config holds recorder settings.
type Config struct {
	// SampleRate of the incoming frames.
	SampleRate int

	// SilenceDuration of trailing silence that ends an utterance.
	SilenceDuration time.Duration
}

// DefaultConfig returns the default recorder settings.
func DefaultConfig() Config {
	return Config{
		SampleRate:      audio.DefaultSampleRate,
		SilenceDuration: 1500 * time.Millisecond,
	}
}

// Recorder captures one utterance at a time: it waits for speech,
// accumulates frames, and stops after sustained trailing silence.
// Leading silence is dropped so waiting for the user never buffers
// audio. Callers judge whether the returned clip is long enough to
// keep.
type Recorder struct {
	mu            sync.Mutex
	source        Source
	detector      Classifier
	config        Config
	logger        *logging.Logger
	onSpeechStart func()
}

// New creates a recorder reading from source and classifying with
// detector.
func New(source Source, detector Classifier, cfg Config) *Recorder {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = audio.DefaultSampleRate
	}
	if cfg.SilenceDuration <= 0 {
		cfg.SilenceDuration = DefaultConfig().SilenceDuration
	}
	return &Recorder{
		source:   source,
		detector: detector,
		config:   cfg,
		logger:   logging.New("recorder"),
	}
}

// SetOnSpeechStart sets the callback fired once per utterance when the
// first speech frame arrives.
func (r *Recorder) SetOnSpeechStart(callback func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSpeechStart = callback
}

func (r *Recorder) speechStarted() {
	r.mu.Lock()
	callback := r.onSpeechStart
	r.mu.Unlock()
	if callback != nil {
		callback()
	}
}

// Record blocks until one utterance has been captured and returns it.
// An utterance ends when trailing silence reaches the configured
// silence duration; the terminal silence frames are part of the clip.
// The only way out without an utterance is context cancellation.
func (r *Recorder) Record(ctx context.Context) (*audio.Clip, error) {
	clip := audio.NewClip(r.config.SampleRate)
	current := stateIdle
	var silence time.Duration

	for {
		frame, err := r.source.ReadFrame(ctx)
		if err != nil {
			return nil, mswerror.Wrap(err, "frame read failed").
				WithOperation("recorder.Record")
		}

		speech, err := r.detector.Classify(frame)
		if err != nil {
			return nil, mswerror.Wrap(err, "frame classification failed").
				WithOperation("recorder.Record")
		}

		switch current {
		case stateIdle:
			if !speech {
				continue
			}
			current = stateCapturing
			clip.Append(frame)
			r.logger.Debug("speech started")
			r.speechStarted()

		case stateCapturing:
			clip.Append(frame)
			if !speech {
				current = stateTrailing
				silence = frameDuration(len(frame), r.config.SampleRate)
				if silence >= r.config.SilenceDuration {
					return r.finish(clip, silence), nil
				}
			}

		case stateTrailing:
			clip.Append(frame)
			if speech {
				current = stateCapturing
				silence = 0
				continue
			}
			silence += frameDuration(len(frame), r.config.SampleRate)
			if silence >= r.config.SilenceDuration {
				return r.finish(clip, silence), nil
			}
		}
	}
}

func (r *Recorder) finish(clip *audio.Clip, silence time.Duration) *audio.Clip {
	r.logger.Debug("utterance complete",
		"duration", clip.Duration(),
		"trailing_silence", silence)
	return clip
}

// frameDuration converts a frame length to its play time. Accumulating
// frame durations instead of reading the wall clock keeps silence
// timing exact at any processing speed.
func frameDuration(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}
