// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     audio
// Description: Input device enumeration
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package audio

import (
	"github.com/gordonklaus/portaudio"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// DeviceInfo describes one audio input device
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListInputDevices returns all devices that can capture audio. It
// owns its own PortAudio lifecycle, so it is safe to call without a
// running Capture.
func ListInputDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, mswerror.Wrap(err, "failed to initialize PortAudio").
			WithCode(mswerror.CodeAudioDevice)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, mswerror.Wrap(err, "failed to enumerate devices").
			WithCode(mswerror.CodeAudioDevice)
	}

	var defaultName string
	if dev, err := portaudio.DefaultInputDevice(); err == nil && dev != nil {
		defaultName = dev.Name
	}

	var inputs []DeviceInfo
	for _, dev := range devices {
		if dev.MaxInputChannels <= 0 {
			continue
		}
		inputs = append(inputs, DeviceInfo{
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsDefault:         dev.Name == defaultName,
		})
	}

	return inputs, nil
}

// findInputDevice locates a capture device by name
func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}

	return nil, mswerror.Newf("input device not found: %s", name).
		WithCode(mswerror.CodeAudioDevice)
}
