// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     tts
// Description: Local speech synthesis via the say command
// Author:      Mike Stoffels with Claude
// Created:     2026-01-05
// License:     MIT
// ============================================================================

package tts

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

const defaultSayRate = 350

// SayConfig holds settings for the local say command.
type SayConfig struct {
	// Voice selects a system voice. Empty uses the system default.
	Voice string

	// Rate is the speaking rate in words per minute.
	Rate int
}

// Say speaks text through the local say command. It needs no network
// and no API key, which makes it the terminal fallback of the chain.
type Say struct {
	binary  string
	voice   string
	rate    int
	timeout time.Duration
	logger  *logging.Logger
}

// NewSay creates a say backend.
func NewSay(cfg SayConfig, timeout time.Duration) *Say {
	if cfg.Rate <= 0 {
		cfg.Rate = defaultSayRate
	}
	if timeout <= 0 {
		timeout = DefaultConfig().PlaybackTimeout
	}

	binary, err := exec.LookPath("say")
	if err != nil {
		binary = ""
	}

	return &Say{
		binary:  binary,
		voice:   cfg.Voice,
		rate:    cfg.Rate,
		timeout: timeout,
		logger:  logging.New("tts.say"),
	}
}

// Name identifies the backend.
func (s *Say) Name() string {
	return "say"
}

// Available reports whether the say command was found.
func (s *Say) Available() bool {
	return s.binary != ""
}

// Speak runs say with the configured voice and rate. A missing say
// command is reported but does not fail the turn.
func (s *Say) Speak(ctx context.Context, text string) error {
	if s.binary == "" {
		s.logger.Warn("no TTS available, say command not found")
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := make([]string, 0, 5)
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	args = append(args, "-r", strconv.Itoa(s.rate), text)

	cmd := exec.CommandContext(runCtx, s.binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return mswerror.Wrap(err, "say command failed").
			WithCode(mswerror.CodeTTSPlayback).
			WithOperation("tts.Say.Speak").
			WithDetail("stderr", detail)
	}
	return nil
}
