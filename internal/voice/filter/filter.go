// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     filter
// Description: Transcript hallucination filter with configurable denylist
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package filter

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// defaultPhrases are transcripts the speech model produces from
// near-silence and background noise. Collected empirically; matching
// is exact after trimming and lowercasing.
var defaultPhrases = []string{
	"",
	"you",
	"thank you.",
	"thanks for watching!",
	"thanks for watching.",
	"thank you for watching.",
	"bye.",
	"bye",
	"the end.",
	"hmm.",
}

// Denylist filters out transcripts known to be model hallucinations
// rather than user speech.
type Denylist struct {
	phrases map[string]struct{}
}

// denylistFile is the YAML shape of a user-provided phrase list.
type denylistFile struct {
	// Replace discards the built-in phrases instead of extending them.
	Replace bool `yaml:"replace"`

	// Phrases to block.
	Phrases []string `yaml:"phrases"`
}

// Default returns the built-in denylist.
func Default() *Denylist {
	d := &Denylist{phrases: make(map[string]struct{}, len(defaultPhrases))}
	d.Add(defaultPhrases...)
	return d
}

// Load reads a YAML phrase file. The file extends the built-in list
// unless it sets replace: true.
func Load(path string) (*Denylist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mswerror.Wrapf(err, "failed to read denylist file: %s", path).
			WithCode(mswerror.CodeConfigError).
			WithOperation("filter.Load")
	}

	var file denylistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, mswerror.Wrapf(err, "invalid denylist file: %s", path).
			WithCode(mswerror.CodeConfigError).
			WithOperation("filter.Load")
	}

	var d *Denylist
	if file.Replace {
		d = &Denylist{phrases: make(map[string]struct{}, len(file.Phrases)+1)}
		// The empty transcript is always blocked, even with replace.
		d.Add("")
	} else {
		d = Default()
	}
	d.Add(file.Phrases...)
	return d, nil
}

// Add inserts phrases into the denylist.
func (d *Denylist) Add(phrases ...string) {
	for _, p := range phrases {
		d.phrases[normalize(p)] = struct{}{}
	}
}

// Blocked reports whether the transcript is a known hallucination.
// Matching trims whitespace and ignores case.
func (d *Denylist) Blocked(text string) bool {
	_, ok := d.phrases[normalize(text)]
	return ok
}

// Len returns the number of blocked phrases.
func (d *Denylist) Len() int {
	return len(d.phrases)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
