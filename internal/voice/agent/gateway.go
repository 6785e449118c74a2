// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     agent
// Description: Agent invocation via gateway WebSocket
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

// handshakeTimeout bounds the WebSocket upgrade.
const handshakeTimeout = 10 * time.Second

// GatewayTransport talks to an OpenClaw gateway directly over
// WebSocket, skipping the CLI subprocess. Each Send dials a fresh
// connection; a turn every few seconds does not justify keeping a
// connection alive across gateway restarts.
type GatewayTransport struct {
	url       string
	token     string
	sessionID string
	timeout   time.Duration
	logger    *logging.Logger
}

// wsEnvelope is the gateway's message frame.
type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsChatPayload carries the outgoing message.
type wsChatPayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// wsChunkPayload carries one streamed reply fragment. Some gateways
// send "content", others "delta".
type wsChunkPayload struct {
	Content string `json:"content,omitempty"`
	Delta   string `json:"delta,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (p *wsChunkPayload) text() string {
	if p.Content != "" {
		return p.Content
	}
	return p.Delta
}

// NewGatewayTransport creates a gateway transport from cfg.
func NewGatewayTransport(cfg Config) (*GatewayTransport, error) {
	if cfg.GatewayURL == "" {
		return nil, mswerror.New("gateway transport requires agent.gateway_url").
			WithCode(mswerror.CodeInvalidConfig).
			WithOperation("agent.NewGatewayTransport")
	}
	def := DefaultConfig()
	if cfg.SessionID == "" {
		cfg.SessionID = def.SessionID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &GatewayTransport{
		url:       cfg.GatewayURL,
		token:     cfg.GatewayToken,
		sessionID: cfg.SessionID,
		timeout:   cfg.Timeout,
		logger:    logging.New("agent.gateway"),
	}, nil
}

// Name identifies the transport in logs.
func (t *GatewayTransport) Name() string {
	return TransportGateway
}

// Send delivers the message and accumulates streamed reply chunks
// until the gateway signals completion.
func (t *GatewayTransport) Send(ctx context.Context, message string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := http.Header{}
	if t.token != "" {
		header.Set("Authorization", "Bearer "+t.token)
	}

	conn, _, err := dialer.DialContext(runCtx, t.url, header)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", mswerror.Wrap(err, "gateway connect exceeded deadline").
				WithCode(mswerror.CodeAgentTimeout).
				WithOperation("agent.GatewayTransport.Send")
		}
		return "", mswerror.Wrapf(err, "failed to connect to gateway: %s", t.url).
			WithCode(mswerror.CodeGateway).
			WithOperation("agent.GatewayTransport.Send")
	}
	defer conn.Close()

	if deadline, ok := runCtx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	payload, err := json.Marshal(wsChatPayload{SessionID: t.sessionID, Message: message})
	if err != nil {
		return "", mswerror.Wrap(err, "failed to encode chat payload").
			WithCode(mswerror.CodeGateway).
			WithOperation("agent.GatewayTransport.Send")
	}
	if err := conn.WriteJSON(wsEnvelope{Type: "chat", Payload: payload}); err != nil {
		return "", mswerror.Wrap(err, "failed to send message to gateway").
			WithCode(mswerror.CodeGateway).
			WithOperation("agent.GatewayTransport.Send")
	}

	var reply strings.Builder
	for {
		var envelope wsEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if isTimeout(err) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				return "", mswerror.Wrap(err, "gateway reply exceeded deadline").
					WithCode(mswerror.CodeAgentTimeout).
					WithOperation("agent.GatewayTransport.Send")
			}
			return "", mswerror.Wrap(err, "gateway read failed").
				WithCode(mswerror.CodeGateway).
				WithOperation("agent.GatewayTransport.Send")
		}

		switch envelope.Type {
		case "chunk":
			var chunk wsChunkPayload
			if err := json.Unmarshal(envelope.Payload, &chunk); err != nil {
				continue
			}
			if chunk.Error != "" {
				return "", mswerror.Newf("gateway error: %s", chunk.Error).
					WithCode(mswerror.CodeGateway).
					WithOperation("agent.GatewayTransport.Send")
			}
			reply.WriteString(chunk.text())
			if chunk.Done {
				return reply.String(), nil
			}

		case "done":
			return reply.String(), nil

		case "error":
			var errPayload struct {
				Error string `json:"error"`
			}
			json.Unmarshal(envelope.Payload, &errPayload)
			return "", mswerror.Newf("gateway error: %s", errPayload.Error).
				WithCode(mswerror.CodeGateway).
				WithOperation("agent.GatewayTransport.Send")

		case "pong":
			continue
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
