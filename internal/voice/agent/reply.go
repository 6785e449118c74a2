// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     agent
// Description: Reply shaping for speech synthesis
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package agent

import "strings"

// markdownSequences are removed literally from replies, in this order.
// The fence must go before the single backtick.
var markdownSequences = []string{"**", "```", "`", "- ", "* "}

// Truncate limits a reply to budget characters. It prefers ending at
// the last sentence boundary when one sits in the second half of the
// budget; otherwise it hard-cuts and marks the cut with an ellipsis.
func Truncate(text string, budget int) string {
	if budget <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}

	truncated := runes[:budget]
	lastPeriod := -1
	for i := len(truncated) - 1; i >= 0; i-- {
		if truncated[i] == '.' {
			lastPeriod = i
			break
		}
	}
	if lastPeriod > budget/2 {
		return string(truncated[:lastPeriod+1])
	}
	return string(truncated) + "..."
}

// StripMarkdown removes markdown control sequences the agent produces
// despite the voice-mode rules. Crude literal removal is enough here:
// the text goes to a speech synthesizer, not a renderer.
func StripMarkdown(text string) string {
	for _, seq := range markdownSequences {
		text = strings.ReplaceAll(text, seq, "")
	}
	return text
}
