package logging

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

type infoField struct {
	label string
	value string
}

const (
	infoValueLimit = 160
	infoErrorLimit = 240
)

// infoPriority lists keys shown first, in this order, at info level.
var infoPriority = []string{
	FieldAlert,
	FieldEventType,
	FieldErrorKind,
	FieldErrorHint,
	"error",
	FieldVideoURL,
	"title",
	"backend",
	"model",
	"units",
	"claims",
	"parse_mode",
	"stage_duration",
}

var infoLabels = map[string]string{
	FieldAlert:       "Alert",
	FieldEventType:   "Event",
	FieldErrorKind:   "Error Kind",
	FieldErrorHint:   "Hint",
	FieldVideoURL:    "Video",
	"stage_duration": "Duration",
	"parse_mode":     "Parse Mode",
}

// selectInfoFields orders priority keys first and counts the fields it leaves
// out: debug-only keys and values longer than infoValueLimit.
func selectInfoFields(fields []field) ([]infoField, int) {
	ordered := slices.Clone(fields)
	slices.SortStableFunc(ordered, func(a, b field) int {
		return infoRank(a.key) - infoRank(b.key)
	})

	shown := make([]infoField, 0, len(ordered))
	hidden := 0
	for _, f := range ordered {
		switch {
		case headerKey(f.key):
			continue
		case debugOnlyKey(f.key):
			hidden++
			continue
		}
		value := infoText(f.key, f.value)
		if f.key != "error" && len(value) > infoValueLimit {
			hidden++
			continue
		}
		shown = append(shown, infoField{label: infoLabel(f.key), value: value})
	}
	return shown, hidden
}

func infoRank(key string) int {
	if i := slices.Index(infoPriority, key); i >= 0 {
		return i
	}
	return len(infoPriority)
}

func infoText(key string, v slog.Value) string {
	if isSecretKey(key) {
		return redactedValue
	}
	switch v.Kind() {
	case slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	}
	text := fieldText(v)
	if key == "error" && len(text) > infoErrorLimit {
		text = text[:infoErrorLimit] + "…"
	}
	return text
}

// headerKey reports keys already rendered in the header line.
func headerKey(key string) bool {
	return key == FieldComponent || key == FieldStage || key == FieldCorrelationID
}

func debugOnlyKey(key string) bool {
	switch key {
	case "command", "args", "stderr", "raw_output", "prompt":
		return true
	}
	return strings.Contains(key, "_path") || strings.Contains(key, "_dir")
}

func infoLabel(key string) string {
	if label, ok := infoLabels[key]; ok {
		return label
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
