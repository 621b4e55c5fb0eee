package transcription

import (
	"slices"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		units   []string
		dropped string
	}{
		{name: "mixed terminators", raw: "A. B! C?", units: []string{"A.", " B!", " C?"}},
		{name: "trailing fragment", raw: "Eat greens. Sleep more", units: []string{"Eat greens."}, dropped: " Sleep more"},
		{name: "no terminator", raw: "no punctuation here", dropped: "no punctuation here"},
		{name: "empty", raw: ""},
		{name: "ellipsis", raw: "Wait...", units: []string{"Wait.", ".", "."}},
		{name: "decimal", raw: "Take 2.5 mg.", units: []string{"Take 2.", "5 mg."}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			units, dropped := SplitSentences(tc.raw)
			if !slices.Equal(units, tc.units) {
				t.Fatalf("units = %q, want %q", units, tc.units)
			}
			if dropped != tc.dropped {
				t.Fatalf("dropped = %q, want %q", dropped, tc.dropped)
			}
		})
	}
}

func TestSplitSentencesReproducesPrefix(t *testing.T) {
	raw := "Drink water! Is coffee fine? Yes. Maybe not"
	units, dropped := SplitSentences(raw)
	joined := strings.Join(units, "")
	if joined+dropped != raw {
		t.Fatalf("concatenation lost text: %q + %q", joined, dropped)
	}
	if !strings.HasSuffix(joined, ".") {
		t.Fatalf("expected joined units to end at last terminator, got %q", joined)
	}
}

func TestTranscriptString(t *testing.T) {
	if got := (Transcript{}).String(); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	tr := Transcript{Units: []string{"A.", " B!"}}
	if got := tr.String(); got != "A.\n\n B!" {
		t.Fatalf("unexpected join %q", got)
	}
}
