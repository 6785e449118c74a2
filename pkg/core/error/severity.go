// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     error
// Description: Severity levels for error prioritization
// Author:      Mike Stoffels with Claude
// Created:     2026-01-03
// License:     MIT
// ============================================================================

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow - degraded but handled locally (e.g. TTS fallback)
	SeverityLow Severity = iota

	// SeverityMedium - affects the current turn, loop self-heals
	SeverityMedium

	// SeverityHigh - configuration or environment problems
	SeverityHigh

	// SeverityCritical - the process cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Level returns the numeric level of the severity (0-3)
func (s Severity) Level() int {
	return int(s)
}

// SeverityFromCode derives the default severity for an error code
func SeverityFromCode(code Code) Severity {
	switch code {
	case CodeAudioDevice, CodeAudioCalibrate:
		return SeverityCritical

	case CodeConfigError, CodeInvalidConfig:
		return SeverityHigh

	case CodeAgentTimeout, CodeAgentExec, CodeAgentParse, CodeAgentEmpty,
		CodeGateway, CodeTranscribe, CodeTimeout:
		return SeverityMedium

	case CodeTTSSynth, CodeTTSEncode, CodeTTSPlayback:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
