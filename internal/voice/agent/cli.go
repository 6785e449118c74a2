// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     agent
// Description: Agent invocation via CLI subprocess
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

// stderrLogLimit caps how much subprocess stderr lands in the log.
const stderrLogLimit = 300

// CLITransport invokes the agent CLI once per turn. The CLI holds the
// conversation state keyed by session ID; this process only carries
// the message across.
type CLITransport struct {
	binary       string
	sessionID    string
	thinking     string
	timeout      time.Duration
	grace        time.Duration
	gatewayURL   string
	gatewayToken string
	logger       *logging.Logger
}

// NewCLITransport creates a CLI transport from cfg.
func NewCLITransport(cfg Config) *CLITransport {
	def := DefaultConfig()
	if cfg.Binary == "" {
		cfg.Binary = def.Binary
	}
	if cfg.SessionID == "" {
		cfg.SessionID = def.SessionID
	}
	if cfg.Thinking == "" {
		cfg.Thinking = def.Thinking
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Grace <= 0 {
		cfg.Grace = def.Grace
	}
	return &CLITransport{
		binary:       cfg.Binary,
		sessionID:    cfg.SessionID,
		thinking:     cfg.Thinking,
		timeout:      cfg.Timeout,
		grace:        cfg.Grace,
		gatewayURL:   cfg.GatewayURL,
		gatewayToken: cfg.GatewayToken,
		logger:       logging.New("agent.cli"),
	}
}

// Name identifies the transport in logs.
func (t *CLITransport) Name() string {
	return TransportCLI
}

// Send runs the agent CLI with the message and parses its JSON reply.
// The agent gets Timeout as its own budget; the subprocess is bounded
// by Timeout + Grace so the CLI's internal timeout reply wins over a
// hard kill.
func (t *CLITransport) Send(ctx context.Context, message string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout+t.grace)
	defer cancel()

	args := []string{
		"agent",
		"-m", message,
		"--session-id", t.sessionID,
		"--thinking", t.thinking,
		"--json",
		"--timeout", strconv.Itoa(int(t.timeout / time.Second)),
	}

	cmd := exec.CommandContext(runCtx, t.binary, args...)
	cmd.Env = t.environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", mswerror.Wrap(err, "agent subprocess exceeded deadline").
				WithCode(mswerror.CodeAgentTimeout).
				WithOperation("agent.CLITransport.Send")
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "unknown error"
		}
		if len(detail) > stderrLogLimit {
			detail = detail[:stderrLogLimit]
		}
		t.logger.Warn("agent subprocess failed", "stderr", detail)
		return "", mswerror.Wrap(err, "agent subprocess failed").
			WithCode(mswerror.CodeAgentExec).
			WithOperation("agent.CLITransport.Send").
			WithDetail("stderr", detail)
	}

	return parseAgentJSON(stdout.Bytes())
}

// environ builds the child environment, passing the gateway
// credentials through to the CLI.
func (t *CLITransport) environ() []string {
	env := os.Environ()
	if t.gatewayURL != "" {
		env = append(env, "OPENCLAW_GATEWAY_URL="+t.gatewayURL)
	}
	if t.gatewayToken != "" {
		env = append(env, "OPENCLAW_GATEWAY_TOKEN="+t.gatewayToken)
	}
	return env
}

// agentResponse is the CLI's --json output shape.
type agentResponse struct {
	Result struct {
		Payloads []struct {
			Text string `json:"text"`
		} `json:"payloads"`
	} `json:"result"`
}

// parseAgentJSON extracts the reply text from the CLI's JSON output:
// non-empty payload texts, trimmed, joined with single spaces.
func parseAgentJSON(data []byte) (string, error) {
	var resp agentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", mswerror.Wrap(err, "agent response is not valid JSON").
			WithCode(mswerror.CodeAgentParse).
			WithOperation("agent.parseAgentJSON")
	}

	parts := make([]string, 0, len(resp.Result.Payloads))
	for _, p := range resp.Result.Payloads {
		text := strings.TrimSpace(p.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
