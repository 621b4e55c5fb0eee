package transcription

import "strings"

const unitSeparator = "\n\n"

// Transcript is the sentence-unit view of one engine output.
type Transcript struct {
	Units []string
	// Dropped is the unterminated text after the last sentence terminator.
	Dropped string
}

// String joins the units with blank lines. An empty transcript yields "".
func (t Transcript) String() string {
	return strings.Join(t.Units, unitSeparator)
}

// Empty reports whether the transcript has no units.
func (t Transcript) Empty() bool {
	return len(t.Units) == 0
}

// SplitSentences splits raw at '.', '!' and '?', keeping each terminator with
// the text before it. Leading whitespace stays with the unit it precedes, so
// concatenating the units reproduces raw up to its last terminator. Text after
// the last terminator is returned separately as dropped.
func SplitSentences(raw string) (units []string, dropped string) {
	rest := raw
	for {
		idx := strings.IndexAny(rest, ".!?")
		if idx < 0 {
			break
		}
		units = append(units, rest[:idx+1])
		rest = rest[idx+1:]
	}
	return units, rest
}
