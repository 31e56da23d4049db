package stream

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSummaryLength is the longest summary, in runes, that cleaning keeps.
const MaxSummaryLength = 1000

// boilerplate is the footer phrase some policy pages repeat once per
// scraped section.
const boilerplate = "Privacy & Terms"

var boilerplateRun = regexp.MustCompile(regexp.QuoteMeta(boilerplate) + `\s*(?:` + regexp.QuoteMeta(boilerplate) + `\s*)*`)

// CleanRepetitiveText prepares text for display. It collapses the first run
// of consecutive "Privacy & Terms" phrases into a single "Privacy & Terms "
// (later runs are left alone), trims surrounding whitespace, and truncates
// the result to MaxSummaryLength runes. Whitespace exposed by truncation
// is trimmed too, so cleaning an already cleaned string changes nothing.
func CleanRepetitiveText(text string) string {
	if loc := boilerplateRun.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + boilerplate + " " + text[loc[1]:]
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= MaxSummaryLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimRightFunc(string(runes[:MaxSummaryLength]), unicode.IsSpace)
}

// endsLikeSentence reports whether text ends with sentence-terminal
// punctuation.
func endsLikeSentence(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(text)
	switch r {
	case '.', '!', '?':
		return true
	}
	return false
}
