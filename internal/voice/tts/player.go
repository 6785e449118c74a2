// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     tts
// Description: Audio file playback via command-line players
// Author:      Mike Stoffels with Claude
// Created:     2026-01-05
// License:     MIT
// ============================================================================

package tts

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// playerCandidates in preference order. afplay ships with macOS,
// ffplay and mpg123 cover Linux hosts.
var playerCandidates = []struct {
	binary string
	args   []string
}{
	{"afplay", nil},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "error"}},
	{"mpg123", []string{"-q"}},
}

// Player plays synthesized audio files through the first available
// command-line player.
type Player struct {
	binary  string
	args    []string
	timeout time.Duration
}

// NewPlayer finds a usable player on PATH.
func NewPlayer(timeout time.Duration) (*Player, error) {
	if timeout <= 0 {
		timeout = DefaultConfig().PlaybackTimeout
	}
	for _, candidate := range playerCandidates {
		path, err := exec.LookPath(candidate.binary)
		if err != nil {
			continue
		}
		return &Player{
			binary:  path,
			args:    candidate.args,
			timeout: timeout,
		}, nil
	}
	return nil, mswerror.New("no audio player found (afplay, ffplay, or mpg123)").
		WithCode(mswerror.CodeTTSPlayback).
		WithOperation("tts.NewPlayer")
}

// Play plays one audio file, blocking until done. The timeout
// guarantees a stuck player cannot hang the conversation.
func (p *Player) Play(ctx context.Context, path string) error {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := append(append([]string{}, p.args...), path)
	cmd := exec.CommandContext(runCtx, p.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return mswerror.Wrapf(err, "playback failed: %s", detail).
			WithCode(mswerror.CodeTTSPlayback).
			WithOperation("tts.Player.Play")
	}
	return nil
}

// Name returns the player binary name.
func (p *Player) Name() string {
	return filepath.Base(p.binary)
}
