// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     agent
// Description: Voice-mode preamble for agent messages
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package agent

// voiceHint is prepended to every user message. It constrains the
// agent to short plain-text replies that survive speech synthesis.
const voiceHint = "[VOICE MODE] You are in a live voice conversation. " +
	"The caller handles TTS playback. RULES: " +
	"1) Reply with 1-3 SHORT spoken sentences as plain text. " +
	"2) No markdown, no bullets, no code, no lists. " +
	"3) Do NOT use the tts tool — the caller handles audio. " +
	"4) Do NOT use tools unless absolutely necessary. " +
	"5) ALWAYS produce a text reply. " +
	"User said: "
