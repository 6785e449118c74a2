package audio

import (
	"testing"
	"time"
)

func TestClip_Duration(t *testing.T) {
	tests := []struct {
		name       string
		samples    int
		sampleRate int
		expected   time.Duration
	}{
		{"one second", 16000, 16000, time.Second},
		{"half second", 8000, 16000, 500 * time.Millisecond},
		{"one frame", 1600, 16000, 100 * time.Millisecond},
		{"empty", 0, 16000, 0},
		{"zero rate", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Clip{
				Samples:    make([]float32, tt.samples),
				SampleRate: tt.sampleRate,
			}
			if got := c.Duration(); got != tt.expected {
				t.Errorf("Duration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClip_Append(t *testing.T) {
	c := NewClip(16000)
	if !c.Empty() {
		t.Error("new clip should be empty")
	}

	c.Append([]float32{0.1, 0.2})
	c.Append([]float32{0.3})

	if len(c.Samples) != 3 {
		t.Errorf("len(Samples) = %d, want 3", len(c.Samples))
	}
	if c.Empty() {
		t.Error("clip with samples should not be empty")
	}
	if c.Samples[2] != 0.3 {
		t.Errorf("Samples[2] = %v, want 0.3", c.Samples[2])
	}
}
