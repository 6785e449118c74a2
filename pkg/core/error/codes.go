// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     error
// Description: Error code definitions for the voice pipeline
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown  Code = "UNKNOWN"
	CodeInternal Code = "INTERNAL"
	CodeTimeout  Code = "TIMEOUT"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Audio capture - fatal at startup, the loop cannot run without a mic
	CodeAudioDevice    Code = "AUDIO_DEVICE"
	CodeAudioCalibrate Code = "AUDIO_CALIBRATE"

	// Transcription
	CodeTranscribe Code = "TRANSCRIBE"

	// Agent - each maps to one canned spoken reply
	CodeAgentTimeout Code = "AGENT_TIMEOUT"
	CodeAgentExec    Code = "AGENT_EXEC"
	CodeAgentParse   Code = "AGENT_PARSE"
	CodeAgentEmpty   Code = "AGENT_EMPTY"
	CodeGateway      Code = "GATEWAY"

	// Speech synthesis - degraded along the fallback chain, never fatal
	CodeTTSSynth    Code = "TTS_SYNTH"
	CodeTTSEncode   Code = "TTS_ENCODE"
	CodeTTSPlayback Code = "TTS_PLAYBACK"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}
