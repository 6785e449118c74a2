package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/msto63/mSW/internal/voice/session"
	mswerror "github.com/msto63/mSW/pkg/core/error"
)

type fakeTransport struct {
	reply      string
	err        error
	gotMessage string
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(ctx context.Context, message string) (string, error) {
	f.gotMessage = message
	return f.reply, f.err
}

func TestAskSuccess(t *testing.T) {
	tr := &fakeTransport{reply: "It's sunny and 70 degrees."}
	state := session.New(50)
	c := NewClient(tr, state, 500)

	got := c.Ask(context.Background(), "What's the weather?")

	if got != "It's sunny and 70 degrees." {
		t.Errorf("Ask() = %q, want reply text", got)
	}
	if state.TurnCount() != 1 {
		t.Errorf("TurnCount() = %d, want 1", state.TurnCount())
	}
	if state.ConsecutiveErrors() != 0 {
		t.Errorf("ConsecutiveErrors() = %d, want 0", state.ConsecutiveErrors())
	}
}

func TestAskPrependsVoiceHint(t *testing.T) {
	tr := &fakeTransport{reply: "Hi."}
	c := NewClient(tr, session.New(50), 500)

	c.Ask(context.Background(), "hello")

	if !strings.HasPrefix(tr.gotMessage, "[VOICE MODE]") {
		t.Errorf("message missing voice-mode preamble: %q", tr.gotMessage[:40])
	}
	if !strings.HasSuffix(tr.gotMessage, "User said: hello") {
		t.Errorf("message missing user text: ...%q", tr.gotMessage[len(tr.gotMessage)-30:])
	}
}

func TestAskFailureReplies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"timeout",
			mswerror.New("deadline").WithCode(mswerror.CodeAgentTimeout),
			"Sorry, that took too long. Try again.",
		},
		{
			"exec failure",
			mswerror.New("exit 1").WithCode(mswerror.CodeAgentExec),
			"Sorry, I hit an error. Try again.",
		},
		{
			"gateway failure",
			mswerror.New("connection refused").WithCode(mswerror.CodeGateway),
			"Sorry, I hit an error. Try again.",
		},
		{
			"parse failure",
			mswerror.New("bad json").WithCode(mswerror.CodeAgentParse),
			"Sorry, something went wrong parsing the response.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{err: tt.err}
			state := session.New(50)
			c := NewClient(tr, state, 500)

			got := c.Ask(context.Background(), "hello")

			if got != tt.want {
				t.Errorf("Ask() = %q, want %q", got, tt.want)
			}
			if state.ConsecutiveErrors() != 1 {
				t.Errorf("ConsecutiveErrors() = %d, want 1", state.ConsecutiveErrors())
			}
			if state.TurnCount() != 0 {
				t.Errorf("TurnCount() = %d, want 0", state.TurnCount())
			}
		})
	}
}

func TestAskEmptyReply(t *testing.T) {
	tests := []string{"", "   ", "\n\t "}

	for _, reply := range tests {
		tr := &fakeTransport{reply: reply}
		state := session.New(50)
		c := NewClient(tr, state, 500)

		got := c.Ask(context.Background(), "hello")

		if got != "I processed that but had nothing to say." {
			t.Errorf("Ask() with reply %q = %q, want empty-reply apology", reply, got)
		}
		if state.ConsecutiveErrors() != 1 {
			t.Errorf("ConsecutiveErrors() = %d, want 1", state.ConsecutiveErrors())
		}
	}
}

func TestAskShapesSuccessReply(t *testing.T) {
	long := "**Important:** " + strings.Repeat("a", 480) + ". " + strings.Repeat("b", 200)
	tr := &fakeTransport{reply: long}
	state := session.New(50)
	c := NewClient(tr, state, 500)

	got := c.Ask(context.Background(), "hello")

	if strings.Contains(got, "**") {
		t.Error("reply still contains markdown bold")
	}
	if len([]rune(got)) > 500 {
		t.Errorf("reply length = %d runes, want <= 500", len([]rune(got)))
	}
	if state.TurnCount() != 1 {
		t.Errorf("TurnCount() = %d, want 1 (shaping must not affect counters)", state.TurnCount())
	}
}

func TestAskErrorStreakClearedBySuccess(t *testing.T) {
	state := session.New(50)

	failing := &fakeTransport{err: mswerror.New("x").WithCode(mswerror.CodeAgentExec)}
	c := NewClient(failing, state, 500)
	c.Ask(context.Background(), "one")
	c.Ask(context.Background(), "two")

	if state.ConsecutiveErrors() != 2 {
		t.Fatalf("ConsecutiveErrors() = %d, want 2", state.ConsecutiveErrors())
	}

	working := &fakeTransport{reply: "Fine."}
	c = NewClient(working, state, 500)
	c.Ask(context.Background(), "three")

	if state.ConsecutiveErrors() != 0 {
		t.Errorf("ConsecutiveErrors() = %d, want 0", state.ConsecutiveErrors())
	}
	if state.TurnCount() != 1 {
		t.Errorf("TurnCount() = %d, want 1", state.TurnCount())
	}
}
