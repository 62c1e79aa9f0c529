// Package script interprets recorder scripts: one directive or line of
// dialogue per line, classified by its leading marker.
package script

import (
	"strings"
	"unicode/utf8"
)

// Kind is the closed set of script line kinds.
type Kind int

const (
	// KindText is rendered verbatim in the current mode.
	KindText Kind = iota
	// KindControl starts with '%' and carries a directive.
	KindControl
	// KindPrompt starts with '$': a prompt followed by typed text.
	KindPrompt
	// KindImmediate starts with '>': a blank line or a command whose output shows up at once.
	KindImmediate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindControl:
		return "control"
	case KindPrompt:
		return "prompt"
	case KindImmediate:
		return "immediate"
	}
	return "unknown"
}

// Line is one classified script line.
type Line struct {
	Number int
	Kind   Kind
	// Text is the raw line without its terminator.
	Text string
	// Body is what follows the marker: directive tokens for control lines,
	// the typed text for prompt lines, the command for immediate lines with
	// its tokens joined by single spaces.
	Body string
}

// Parse classifies raw by its first non-blank character.
func Parse(number int, raw string) Line {
	text := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	l := Line{Number: number, Kind: KindText, Text: text, Body: text}

	trimmed := strings.TrimLeft(text, " \t")
	if trimmed == "" {
		return l
	}
	switch trimmed[0] {
	case '%':
		l.Kind = KindControl
		l.Body = trimmed[1:]
	case '$':
		l.Kind = KindPrompt
		l.Body = afterSeparator(trimmed[1:])
	case '>':
		l.Kind = KindImmediate
		l.Body = strings.Join(strings.Fields(trimmed[1:]), " ")
	}
	return l
}

// afterSeparator drops the single character that separates a marker from its text.
func afterSeparator(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[size:]
}
