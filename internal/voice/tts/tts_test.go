package tts

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

type fakeBackend struct {
	name  string
	err   error
	calls int
	last  string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Speak(_ context.Context, text string) error {
	f.calls++
	f.last = text
	return f.err
}

func TestRouterFallsBackOnFailure(t *testing.T) {
	cloud := &fakeBackend{name: "cloud", err: errors.New("quota exceeded")}
	local := &fakeBackend{name: "local"}
	r := &Router{attempts: []Backend{cloud, local}, logger: logging.New("tts")}

	r.Speak(context.Background(), "Guten Morgen.")

	if cloud.calls != 1 {
		t.Errorf("cloud calls = %d, want 1", cloud.calls)
	}
	if local.calls != 1 {
		t.Errorf("local calls = %d, want 1", local.calls)
	}
	if local.last != "Guten Morgen." {
		t.Errorf("local received %q, want %q", local.last, "Guten Morgen.")
	}
}

func TestRouterFallsBackFromEmptySynthesis(t *testing.T) {
	// The cloud API answers 200 with no audio; the local backend must
	// still speak the reply.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	cloud := NewElevenLabs(ElevenLabsConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, nil, time.Second, time.Second, 1000)
	local := &fakeBackend{name: "local"}
	r := &Router{attempts: []Backend{cloud, local}, logger: logging.New("tts")}

	r.Speak(context.Background(), "Guten Morgen.")

	if local.calls != 1 {
		t.Errorf("local calls = %d, want 1", local.calls)
	}
	if local.last != "Guten Morgen." {
		t.Errorf("local received %q, want %q", local.last, "Guten Morgen.")
	}
}

func TestRouterStopsAfterSuccess(t *testing.T) {
	cloud := &fakeBackend{name: "cloud"}
	local := &fakeBackend{name: "local"}
	r := &Router{attempts: []Backend{cloud, local}, logger: logging.New("tts")}

	r.Speak(context.Background(), "hello")

	if cloud.calls != 1 {
		t.Errorf("cloud calls = %d, want 1", cloud.calls)
	}
	if local.calls != 0 {
		t.Errorf("local calls = %d, want 0", local.calls)
	}
}

func TestRouterSwallowsTotalFailure(t *testing.T) {
	cloud := &fakeBackend{name: "cloud", err: errors.New("down")}
	local := &fakeBackend{name: "local", err: errors.New("also down")}
	r := &Router{attempts: []Backend{cloud, local}, logger: logging.New("tts")}

	// Must return normally even when every backend fails.
	r.Speak(context.Background(), "hello")

	if cloud.calls != 1 || local.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", cloud.calls, local.calls)
	}
}

func TestRouterChain(t *testing.T) {
	r := &Router{attempts: []Backend{
		&fakeBackend{name: "elevenlabs"},
		&fakeBackend{name: "say"},
	}}

	got := r.Chain()
	want := []string{"elevenlabs", "say"}
	if len(got) != len(want) {
		t.Fatalf("Chain() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Chain()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewRouterWithoutCredentials(t *testing.T) {
	r := NewRouter(DefaultConfig())

	got := r.Chain()
	if len(got) != 1 || got[0] != "say" {
		t.Errorf("Chain() = %v, want [say]", got)
	}
}

func TestDownloadAudioStoresBody(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	path, err := downloadAudio(srv.Client(), req, 1000)
	if err != nil {
		t.Fatalf("downloadAudio() error = %v", err)
	}
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("stored %d bytes, want %d", len(got), len(payload))
	}
}

func TestDownloadAudioRejectsSmallBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("oops"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	_, err = downloadAudio(srv.Client(), req, 1000)
	if !mswerror.HasCode(err, mswerror.CodeTTSSynth) {
		t.Fatalf("downloadAudio() error = %v, want code %v", err, mswerror.CodeTTSSynth)
	}
	if !strings.Contains(err.Error(), "too small") {
		t.Errorf("error = %q, want mention of too small", err)
	}
}

func TestDownloadAudioRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write(bytes.Repeat([]byte{0x00}, 2048))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	_, err = downloadAudio(srv.Client(), req, 1000)
	if !mswerror.HasCode(err, mswerror.CodeTTSSynth) {
		t.Fatalf("downloadAudio() error = %v, want code %v", err, mswerror.CodeTTSSynth)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want mention of HTTP status", err)
	}
}

func TestDownloadAudioRequestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	_, err = downloadAudio(http.DefaultClient, req, 1000)
	if !mswerror.HasCode(err, mswerror.CodeTTSSynth) {
		t.Fatalf("downloadAudio() error = %v, want code %v", err, mswerror.CodeTTSSynth)
	}
}
