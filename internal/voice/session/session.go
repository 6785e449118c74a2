// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     session
// Description: Conversation turn and error counters
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package session

// errorLimit is the number of consecutive agent failures that forces a
// full session reset. The reset gives the agent a fresh context after
// persistent trouble instead of degrading forever.
const errorLimit = 3

// DefaultMaxTurns caps a session before the turn counter wraps.
const DefaultMaxTurns = 50

// State tracks one conversation's counters. Single-writer: only the
// turn loop goroutine mutates it, so there is no locking.
type State struct {
	turnCount         int
	consecutiveErrors int
	maxTurns          int
}

// New creates session state with the given turn cap.
func New(maxTurns int) *State {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &State{maxTurns: maxTurns}
}

// RecordSuccess counts a completed turn and clears the error streak.
func (s *State) RecordSuccess() {
	s.turnCount++
	s.consecutiveErrors = 0
}

// RecordError counts a failed agent exchange.
func (s *State) RecordError() {
	s.consecutiveErrors++
}

// Reset clears both counters.
func (s *State) Reset() {
	s.turnCount = 0
	s.consecutiveErrors = 0
}

// AtTurnLimit reports whether the session reached its turn cap.
func (s *State) AtTurnLimit() bool {
	return s.turnCount >= s.maxTurns
}

// AtErrorLimit reports whether consecutive failures reached the reset
// threshold.
func (s *State) AtErrorLimit() bool {
	return s.consecutiveErrors >= errorLimit
}

// TurnCount returns the number of completed turns.
func (s *State) TurnCount() int {
	return s.turnCount
}

// ConsecutiveErrors returns the current failure streak.
func (s *State) ConsecutiveErrors() int {
	return s.consecutiveErrors
}

// MaxTurns returns the configured turn cap.
func (s *State) MaxTurns() int {
	return s.maxTurns
}
