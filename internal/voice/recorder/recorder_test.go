package recorder

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testFrameLen = 1600 // 100ms at 16kHz

// scriptSource replays a fixed frame sequence and then blocks until
// the context is cancelled.
type scriptSource struct {
	frames [][]float32
	idx    int
}

func (s *scriptSource) ReadFrame(ctx context.Context) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.idx >= len(s.frames) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	frame := s.frames[s.idx]
	s.idx++
	return frame, nil
}

// ampClassifier marks frames with amplitude >= 0.5 as speech.
type ampClassifier struct{}

func (ampClassifier) Classify(frame []float32) (bool, error) {
	return len(frame) > 0 && frame[0] >= 0.5, nil
}

type errClassifier struct{ err error }

func (c errClassifier) Classify(frame []float32) (bool, error) {
	return false, c.err
}

func frame(amplitude float32) []float32 {
	f := make([]float32, testFrameLen)
	for i := range f {
		f[i] = amplitude
	}
	return f
}

func frames(pattern string) [][]float32 {
	out := make([][]float32, 0, len(pattern))
	for _, c := range pattern {
		switch c {
		case 'S':
			out = append(out, frame(0.6))
		case '.':
			out = append(out, frame(0))
		}
	}
	return out
}

func repeat(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

func newTestRecorder(pattern string) *Recorder {
	src := &scriptSource{frames: frames(pattern)}
	return New(src, ampClassifier{}, Config{
		SampleRate:      16000,
		SilenceDuration: 1500 * time.Millisecond,
	})
}

func TestRecordStopsAfterTrailingSilence(t *testing.T) {
	// 5 speech frames then 15 silence frames = 1.5s trailing silence.
	r := newTestRecorder(repeat('S', 5) + repeat('.', 15))

	clip, err := r.Record(context.Background())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	wantFrames := 20
	if got := len(clip.Samples) / testFrameLen; got != wantFrames {
		t.Errorf("clip frames = %d, want %d", got, wantFrames)
	}
	if clip.Duration() != 2*time.Second {
		t.Errorf("clip duration = %v, want 2s", clip.Duration())
	}
}

func TestRecordDropsLeadingSilence(t *testing.T) {
	r := newTestRecorder(repeat('.', 10) + repeat('S', 5) + repeat('.', 15))

	clip, err := r.Record(context.Background())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	// Leading silence must not appear in the clip.
	wantFrames := 20
	if got := len(clip.Samples) / testFrameLen; got != wantFrames {
		t.Errorf("clip frames = %d, want %d", got, wantFrames)
	}
}

func TestRecordSpeechResetsSilenceTimer(t *testing.T) {
	// 14 silence frames (1.4s) do not end the utterance; a speech frame
	// resets the window and the next 15 silence frames do.
	r := newTestRecorder(repeat('S', 5) + repeat('.', 14) + "S" + repeat('.', 15))

	clip, err := r.Record(context.Background())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	wantFrames := 35
	if got := len(clip.Samples) / testFrameLen; got != wantFrames {
		t.Errorf("clip frames = %d, want %d", got, wantFrames)
	}
}

func TestRecordStaysIdleOnPureSilence(t *testing.T) {
	r := newTestRecorder(repeat('.', 30))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := r.Record(ctx)
	if err == nil {
		t.Fatal("Record() expected context error on pure silence")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Record() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRecordCancelled(t *testing.T) {
	r := newTestRecorder(repeat('S', 3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Record(ctx)
	if err == nil {
		t.Fatal("Record() expected error on cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Record() error = %v, want context.Canceled", err)
	}
}

func TestRecordSpeechStartFiredOnce(t *testing.T) {
	r := newTestRecorder("SSS.SS" + repeat('.', 15))

	var fired int
	r.SetOnSpeechStart(func() { fired++ })

	if _, err := r.Record(context.Background()); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if fired != 1 {
		t.Errorf("speech start fired %d times, want 1", fired)
	}
}

func TestRecordSingleFrameSilenceWindow(t *testing.T) {
	src := &scriptSource{frames: frames("S.")}
	r := New(src, ampClassifier{}, Config{
		SampleRate:      16000,
		SilenceDuration: 100 * time.Millisecond,
	})

	clip, err := r.Record(context.Background())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got := len(clip.Samples) / testFrameLen; got != 2 {
		t.Errorf("clip frames = %d, want 2", got)
	}
}

func TestRecordClassifierError(t *testing.T) {
	src := &scriptSource{frames: frames("S")}
	wantErr := errors.New("engine busted")
	r := New(src, errClassifier{err: wantErr}, DefaultConfig())

	_, err := r.Record(context.Background())
	if err == nil {
		t.Fatal("Record() expected classifier error")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Record() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestFrameDuration(t *testing.T) {
	tests := []struct {
		samples    int
		sampleRate int
		want       time.Duration
	}{
		{1600, 16000, 100 * time.Millisecond},
		{16000, 16000, time.Second},
		{800, 16000, 50 * time.Millisecond},
		{0, 16000, 0},
		{1600, 0, 0},
	}

	for _, tt := range tests {
		if got := frameDuration(tt.samples, tt.sampleRate); got != tt.want {
			t.Errorf("frameDuration(%d, %d) = %v, want %v", tt.samples, tt.sampleRate, got, tt.want)
		}
	}
}
