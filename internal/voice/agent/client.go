// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     agent
// Description: Agent client with spoken failure handling
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package agent

import (
	"context"
	"strings"
	"time"

	"github.com/msto63/mSW/internal/voice/session"
	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

// Canned spoken replies for the failure classes. The conversation
// keeps flowing even when the agent does not.
const (
	replyTimeout = "Sorry, that took too long. Try again."
	replyError   = "Sorry, I hit an error. Try again."
	replyEmpty   = "I processed that but had nothing to say."
	replyParse   = "Sorry, something went wrong parsing the response."
)

// Client asks the agent and always produces something speakable.
// Failures become canned apologies and an error-counter increment; a
// success bumps the turn counter and clears the streak before the
// reply is shaped for synthesis.
type Client struct {
	transport Transport
	state     *session.State
	budget    int
	logger    *logging.Logger
}

// NewClient creates an agent client. maxReplyChars bounds shaped
// replies (0 keeps the 500-char default).
func NewClient(transport Transport, state *session.State, maxReplyChars int) *Client {
	if maxReplyChars <= 0 {
		maxReplyChars = 500
	}
	return &Client{
		transport: transport,
		state:     state,
		budget:    maxReplyChars,
		logger:    logging.New("agent"),
	}
}

// Ask sends the transcript to the agent and returns the spoken reply.
// It never returns an error: every failure class has a canned reply.
func (c *Client) Ask(ctx context.Context, text string) string {
	start := time.Now()

	raw, err := c.transport.Send(ctx, voiceHint+text)
	took := time.Since(start).Round(100 * time.Millisecond)

	if err != nil {
		c.state.RecordError()
		switch {
		case mswerror.HasCode(err, mswerror.CodeAgentTimeout):
			c.logger.Warn("agent timed out", "transport", c.transport.Name(), "took", took)
			return replyTimeout
		case mswerror.HasCode(err, mswerror.CodeAgentParse):
			c.logger.Warn("agent reply unparseable", "transport", c.transport.Name(), "error", err)
			return replyParse
		default:
			c.logger.Warn("agent call failed", "transport", c.transport.Name(), "took", took, "error", err)
			return replyError
		}
	}

	reply := strings.TrimSpace(raw)
	if reply == "" {
		c.state.RecordError()
		c.logger.Warn("agent returned empty reply", "transport", c.transport.Name(), "took", took)
		return replyEmpty
	}

	c.state.RecordSuccess()
	reply = Truncate(reply, c.budget)
	reply = StripMarkdown(reply)

	c.logger.Debug("agent replied", "chars", len(reply), "took", took)
	return reply
}
