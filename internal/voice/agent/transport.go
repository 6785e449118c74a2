// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     agent
// Description: Agent transport interface and selection
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package agent

import (
	"context"
	"strings"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// Transport names accepted by NewTransport.
const (
	TransportCLI     = "cli"
	TransportGateway = "gateway"
)

// Transport delivers one prepared message to the agent and returns the
// plain-text reply. Failures carry agent error codes (timeout, exec,
// parse) so the client can map them to spoken apologies.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string

	// Send delivers the message and returns the reply text. An empty
	// reply is possible and left to the caller to judge.
	Send(ctx context.Context, message string) (string, error)
}

// Config holds agent connection settings.
type Config struct {
	// Transport selects "cli" or "gateway".
	Transport string

	// Binary is the agent CLI executable.
	Binary string

	// SessionID correlates successive turns into one conversation.
	SessionID string

	// Thinking is the agent's reasoning effort level.
	Thinking string

	// Timeout is the reply budget handed to the agent.
	Timeout time.Duration

	// Grace is added on top of Timeout when bounding the exchange, so
	// the agent's own timeout handling gets a chance to answer first.
	Grace time.Duration

	// GatewayURL is the gateway WebSocket endpoint.
	GatewayURL string

	// GatewayToken authenticates against the gateway.
	GatewayToken string
}

// DefaultConfig returns default agent settings.
func DefaultConfig() Config {
	return Config{
		Transport: TransportCLI,
		Binary:    "openclaw",
		SessionID: "voice-loop",
		Thinking:  "low",
		Timeout:   60 * time.Second,
		Grace:     10 * time.Second,
	}
}

// NewTransport creates the transport selected by cfg.Transport.
func NewTransport(cfg Config) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", TransportCLI:
		return NewCLITransport(cfg), nil
	case TransportGateway:
		return NewGatewayTransport(cfg)
	default:
		return nil, mswerror.Newf("unknown agent transport %q", cfg.Transport).
			WithCode(mswerror.CodeInvalidConfig).
			WithOperation("agent.NewTransport")
	}
}
