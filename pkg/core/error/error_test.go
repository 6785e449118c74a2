package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("something failed")

	if err.Error() != "something failed" {
		t.Errorf("Error() = %q, want %q", err.Error(), "something failed")
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
}

func TestWithCode(t *testing.T) {
	tests := []struct {
		name         string
		code         Code
		wantSeverity Severity
	}{
		{"audio device is critical", CodeAudioDevice, SeverityCritical},
		{"calibration is critical", CodeAudioCalibrate, SeverityCritical},
		{"config is high", CodeConfigError, SeverityHigh},
		{"agent timeout is medium", CodeAgentTimeout, SeverityMedium},
		{"tts synth is low", CodeTTSSynth, SeverityLow},
		{"tts playback is low", CodeTTSPlayback, SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New("test").WithCode(tt.code)
			if err.Code() != tt.code {
				t.Errorf("Code() = %v, want %v", err.Code(), tt.code)
			}
			if err.Severity() != tt.wantSeverity {
				t.Errorf("Severity() = %v, want %v", err.Severity(), tt.wantSeverity)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("io failure")
	wrapped := Wrap(base, "transcription failed").WithCode(CodeTranscribe)

	if wrapped.Error() != "transcription failed: io failure" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if wrapped.Unwrap() != base {
		t.Error("Unwrap should return the cause")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapPreservesCodeAndSeverity(t *testing.T) {
	inner := New("device missing").WithCode(CodeAudioDevice)
	outer := Wrap(inner, "startup failed")

	if outer.Code() != CodeAudioDevice {
		t.Errorf("Code() = %v, want %v", outer.Code(), CodeAudioDevice)
	}
	if outer.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", outer.Severity(), SeverityCritical)
	}
}

func TestWrapTruncatesDeepChains(t *testing.T) {
	var err error = New("root")
	for i := 0; i < MaxChainDepth+5; i++ {
		err = Wrap(err, fmt.Sprintf("layer %d", i))
	}

	if depth := chainDepth(err); depth > MaxChainDepth+1 {
		t.Errorf("chain depth = %d, want <= %d", depth, MaxChainDepth+1)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("timeout").WithCode(CodeAgentTimeout)
	outer := Wrap(inner, "ask failed")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct code", inner, CodeAgentTimeout, true},
		{"wrapped code", outer, CodeAgentTimeout, true},
		{"absent code", outer, CodeTTSSynth, false},
		{"foreign error", errors.New("plain"), CodeAgentTimeout, false},
		{"nil error", nil, CodeAgentTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeForeignError(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Errorf("GetCode() = %v, want %v", got, CodeUnknown)
	}
	if got := GetSeverity(errors.New("plain")); got != SeverityMedium {
		t.Errorf("GetSeverity() = %v, want %v", got, SeverityMedium)
	}
}

func TestWithDetail(t *testing.T) {
	err := New("agent failed").
		WithCode(CodeAgentExec).
		WithOperation("ask").
		WithDetail("stderr", "boom").
		WithDetail("exit_code", 1)

	if err.Operation() != "ask" {
		t.Errorf("Operation() = %q, want %q", err.Operation(), "ask")
	}
	if err.Details()["stderr"] != "boom" {
		t.Errorf("Details()[stderr] = %v", err.Details()["stderr"])
	}
	if err.Details()["exit_code"] != 1 {
		t.Errorf("Details()[exit_code] = %v", err.Details()["exit_code"])
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}
