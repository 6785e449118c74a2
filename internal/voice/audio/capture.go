// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     audio
// Description: Microphone capture using PortAudio, synchronous pull
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

const (
	// DefaultSampleRate is 16kHz mono, what Whisper expects
	DefaultSampleRate = 16000

	// DefaultFrameDuration is the VAD classification slice
	DefaultFrameDuration = 100 * time.Millisecond

	captureChannels = 1
)

// CaptureConfig holds configuration for microphone capture
type CaptureConfig struct {
	SampleRate    int
	FrameDuration time.Duration
	DeviceName    string // empty or "default" selects the system default
}

// DefaultCaptureConfig returns the default capture configuration
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:    DefaultSampleRate,
		FrameDuration: DefaultFrameDuration,
	}
}

// Capture reads mono float32 frames from the microphone. Frames are
// delivered by a blocking ReadFrame call on the capture stream - a
// synchronous pull, which keeps the recorder state machine a plain
// loop. One frame covers FrameDuration of audio.
type Capture struct {
	mu          sync.Mutex
	stream      *portaudio.Stream
	buffer      []float32
	sampleRate  int
	frameSize   int
	deviceName  string
	running     bool
	initialized bool
}

// NewCapture initializes PortAudio and prepares a capture instance.
// A failure here means no usable microphone - fatal at startup.
func NewCapture(cfg CaptureConfig) (*Capture, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.FrameDuration <= 0 {
		cfg.FrameDuration = DefaultFrameDuration
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, mswerror.Wrap(err, "failed to initialize PortAudio").
			WithCode(mswerror.CodeAudioDevice)
	}

	frameSize := int(float64(cfg.SampleRate) * cfg.FrameDuration.Seconds())

	return &Capture{
		sampleRate:  cfg.SampleRate,
		frameSize:   frameSize,
		deviceName:  cfg.DeviceName,
		buffer:      make([]float32, frameSize),
		initialized: true,
	}, nil
}

// Start opens and starts the capture stream
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return mswerror.New("capture already running").WithCode(mswerror.CodeAudioDevice)
	}

	stream, err := c.openStream()
	if err != nil {
		return mswerror.Wrap(err, "failed to open audio stream").
			WithCode(mswerror.CodeAudioDevice).
			WithDetail("device", c.deviceName)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return mswerror.Wrap(err, "failed to start audio stream").
			WithCode(mswerror.CodeAudioDevice)
	}

	c.stream = stream
	c.running = true
	return nil
}

func (c *Capture) openStream() (*portaudio.Stream, error) {
	if c.deviceName != "" && c.deviceName != "default" {
		device, err := findInputDevice(c.deviceName)
		if err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: captureChannels,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      float64(c.sampleRate),
				FramesPerBuffer: c.frameSize,
			}
			return portaudio.OpenStream(params, c.buffer)
		}
		// Named device not found, fall back to the default input
	}

	return portaudio.OpenDefaultStream(
		captureChannels,
		0,
		float64(c.sampleRate),
		c.frameSize,
		c.buffer,
	)
}

// ReadFrame blocks until one frame of audio is available and returns
// a copy of it. The context is checked around the blocking read, so
// cancellation takes effect within one frame duration.
func (c *Capture) ReadFrame(ctx context.Context) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	stream := c.stream
	running := c.running
	c.mu.Unlock()

	if !running || stream == nil {
		return nil, mswerror.New("capture not started").WithCode(mswerror.CodeAudioDevice)
	}

	if err := stream.Read(); err != nil {
		return nil, mswerror.Wrap(err, "audio read failed").WithCode(mswerror.CodeAudioDevice)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame := make([]float32, len(c.buffer))
	copy(frame, c.buffer)
	return frame, nil
}

// ReadFor pulls frames until the given duration of audio has been
// collected and returns the concatenated samples. Used for ambient
// noise calibration at startup.
func (c *Capture) ReadFor(ctx context.Context, d time.Duration) ([]float32, error) {
	want := int(float64(c.sampleRate) * d.Seconds())
	samples := make([]float32, 0, want)

	for len(samples) < want {
		frame, err := c.ReadFrame(ctx)
		if err != nil {
			return nil, err
		}
		samples = append(samples, frame...)
	}

	return samples, nil
}

// SampleRate returns the configured sample rate
func (c *Capture) SampleRate() int {
	return c.sampleRate
}

// FrameDuration returns the duration covered by one frame
func (c *Capture) FrameDuration() time.Duration {
	return time.Duration(float64(c.frameSize) / float64(c.sampleRate) * float64(time.Second))
}

// Stop stops and closes the capture stream
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	if c.stream != nil {
		c.stream.Stop()
		if err := c.stream.Close(); err != nil {
			return mswerror.Wrap(err, "failed to close audio stream").
				WithCode(mswerror.CodeAudioDevice)
		}
		c.stream = nil
	}
	return nil
}

// Close stops capture and terminates PortAudio
func (c *Capture) Close() error {
	if err := c.Stop(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		if err := portaudio.Terminate(); err != nil {
			return mswerror.Wrap(err, "failed to terminate PortAudio").
				WithCode(mswerror.CodeAudioDevice)
		}
		c.initialized = false
	}
	return nil
}
