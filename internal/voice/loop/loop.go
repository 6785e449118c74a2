// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     loop
// Description: Turn-based conversation loop
// Author:      Mike Stoffels with Claude
// Created:     2026-01-05
// License:     MIT
// ============================================================================

package loop

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/mSW/internal/voice/audio"
	"github.com/msto63/mSW/internal/voice/filter"
	"github.com/msto63/mSW/internal/voice/session"
	"github.com/msto63/mSW/pkg/core/logging"
)

// Recorder captures one utterance from the microphone.
type Recorder interface {
	Record(ctx context.Context) (*audio.Clip, error)
}

// Transcriber turns a recorded clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip *audio.Clip) (string, error)
}

// Asker produces a spoken reply for a transcript. It never fails: any
// trouble comes back as an apologetic reply.
type Asker interface {
	Ask(ctx context.Context, text string) string
}

// Speaker plays a reply aloud. Synthesis trouble stays inside.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Options wires the conversation stages together.
type Options struct {
	Recorder    Recorder
	Transcriber Transcriber
	Agent       Asker
	Speaker     Speaker

	// Denylist drops known transcription hallucinations. Nil uses the
	// built-in defaults.
	Denylist *filter.Denylist

	// State carries the turn and error counters across iterations.
	State *session.State

	// MinSpeechDuration discards utterances shorter than this.
	MinSpeechDuration time.Duration

	// Console receives the user-facing status lines. Nil means stdout.
	Console io.Writer
}

// Loop runs the half-duplex conversation: listen, transcribe, ask,
// speak, repeat. One iteration is one turn; nothing overlaps.
type Loop struct {
	recorder    Recorder
	transcriber Transcriber
	agent       Asker
	speaker     Speaker
	denylist    *filter.Denylist
	state       *session.State
	minSpeech   time.Duration
	console     io.Writer
	logger      *logging.Logger
}

// New creates a conversation loop.
func New(opts Options) *Loop {
	if opts.Denylist == nil {
		opts.Denylist = filter.Default()
	}
	if opts.State == nil {
		opts.State = session.New(0)
	}
	if opts.MinSpeechDuration <= 0 {
		opts.MinSpeechDuration = 500 * time.Millisecond
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	return &Loop{
		recorder:    opts.Recorder,
		transcriber: opts.Transcriber,
		agent:       opts.Agent,
		speaker:     opts.Speaker,
		denylist:    opts.Denylist,
		state:       opts.State,
		minSpeech:   opts.MinSpeechDuration,
		console:     opts.Console,
		logger:      logging.New("loop"),
	}
}

// Run iterates turns until the context is cancelled. Cancellation is
// the normal way a conversation ends.
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("conversation loop started", "max_turns", l.state.MaxTurns())
	for ctx.Err() == nil {
		l.turn(ctx)
	}
	l.logger.Info("conversation loop stopped",
		"turns", l.state.TurnCount())
}

// turn runs one conversation iteration. All per-turn trouble ends
// here: failures are logged and counted, and the next turn starts.
func (l *Loop) turn(ctx context.Context) {
	log := l.logger.With("turn_id", uuid.New().String()[:8])

	defer func() {
		if r := recover(); r != nil {
			l.state.RecordError()
			fmt.Fprintf(l.console, "❌ Fehler: %v\n", r)
			log.Error("turn aborted by panic", "panic", r)
		}
	}()

	// Counter housekeeping happens before listening so a reset never
	// swallows an utterance that was already captured.
	if l.state.AtTurnLimit() {
		fmt.Fprintf(l.console, "\n⚠️  %d Runden erreicht, Zähler werden zurückgesetzt\n", l.state.TurnCount())
		log.Info("turn limit reached, counters reset", "turns", l.state.TurnCount())
		l.state.Reset()
	}
	if l.state.AtErrorLimit() {
		fmt.Fprintf(l.console, "\n⚠️  %d Fehler in Folge, Zähler werden zurückgesetzt\n", l.state.ConsecutiveErrors())
		log.Warn("error limit reached, counters reset", "errors", l.state.ConsecutiveErrors())
		l.state.Reset()
	}

	fmt.Fprintln(l.console, "\n🎤 Höre zu - sprechen Sie...")

	clip, err := l.recorder.Record(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.state.RecordError()
		fmt.Fprintf(l.console, "❌ Fehler: %v\n", err)
		log.Error("recording failed", "error", err)
		return
	}

	if clip.Duration() < l.minSpeech {
		fmt.Fprintln(l.console, "(zu kurz, ignoriere)")
		log.Debug("utterance too short, discarded",
			"duration", clip.Duration(),
			"minimum", l.minSpeech)
		return
	}
	fmt.Fprintf(l.console, "   %.1fs aufgenommen, transkribiere...\n", clip.Duration().Seconds())

	text, err := l.transcriber.Transcribe(ctx, clip)
	if err != nil {
		l.state.RecordError()
		fmt.Fprintf(l.console, "❌ Fehler: %v\n", err)
		log.Error("transcription failed", "error", err)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" || l.denylist.Blocked(text) {
		fmt.Fprintln(l.console, "(leer oder Halluzination, ignoriere)")
		log.Debug("transcript discarded", "text", text)
		return
	}

	fmt.Fprintf(l.console, "\n[Sie] %s\n", text)
	fmt.Fprintln(l.console, "⏳ Verarbeite Anfrage...")

	started := time.Now()
	reply := l.agent.Ask(ctx, text)
	fmt.Fprintf(l.console, "[mSW] %s\n", reply)

	fmt.Fprintln(l.console, "🔊 Spreche...")
	l.speaker.Speak(ctx, reply)

	elapsed := time.Since(started)
	fmt.Fprintf(l.console, "⏱️  %.1fs (Runde %d/%d)\n",
		elapsed.Seconds(), l.state.TurnCount(), l.state.MaxTurns())
	log.Info("turn complete",
		"duration_ms", elapsed.Milliseconds(),
		"turn", l.state.TurnCount(),
		"max_turns", l.state.MaxTurns())
}
