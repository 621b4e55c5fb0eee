package claims

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// ClaimList is an ordered list of claims. Duplicates are kept.
type ClaimList []string

// ParseMode records which parsing tier produced a ClaimList.
type ParseMode string

const (
	ModeJSON     ParseMode = "json"
	ModeFallback ParseMode = "fallback"
)

// minFallbackLineRunes is the untrimmed length a line must exceed to count as a claim.
const minFallbackLineRunes = 20

const bulletCutset = "-* "

// ParseClaims decodes raw model output. A JSON array of strings is returned
// element-wise trimmed; anything else goes through the line-based fallback.
// It never fails: unusable output yields an empty list.
func ParseClaims(raw string) (ClaimList, ParseMode) {
	if out, ok := parseJSON(raw); ok {
		return out, ModeJSON
	}
	return parseLines(raw), ModeFallback
}

// parseJSON accepts only an array whose every element is a JSON string; a
// null element does not decode into a blank claim.
func parseJSON(raw string) (ClaimList, bool) {
	var decoded []*string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil || decoded == nil {
		return nil, false
	}
	out := make(ClaimList, 0, len(decoded))
	for _, item := range decoded {
		if item == nil {
			return nil, false
		}
		out = append(out, strings.TrimSpace(*item))
	}
	return out, true
}

func parseLines(raw string) ClaimList {
	out := ClaimList{}
	for _, line := range splitLines(raw) {
		if utf8.RuneCountInString(line) <= minFallbackLineRunes {
			continue
		}
		stripped := strings.Trim(line, bulletCutset)
		if stripped == "" {
			continue
		}
		out = append(out, stripped)
	}
	return out
}

// splitLines breaks text at \n, \r, \r\n, and the other Unicode line
// boundaries (\v, \f, \x1c-\x1e, \x85, U+2028, U+2029).
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
