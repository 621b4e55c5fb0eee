package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// consoleHandler prints a one-line header per record followed by an indented
// field list. Debug records show every field; info and above show a curated
// subset.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    []string
	preset    []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = slices.Clone(h.preset)
	for _, attr := range attrs {
		next.preset = appendField(next.preset, h.prefix, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = append(slices.Clone(h.prefix), name)
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	fields := slices.Clone(h.preset)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.prefix, attr)
		return true
	})
	fields = lastWins(fields)

	var b strings.Builder
	h.writeHeader(&b, record, fields)
	if record.Level < slog.LevelInfo {
		writeDebugFields(&b, fields)
	} else {
		writeInfoFields(&b, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) writeHeader(b *strings.Builder, record slog.Record, fields []field) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(consoleTime(ts))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if component := lookup(fields, FieldComponent); component != "" {
		fmt.Fprintf(b, " [%s]", component)
	}
	if subject := FormatSubject(lookup(fields, FieldCorrelationID), lookup(fields, FieldStage)); subject != "" {
		b.WriteByte(' ')
		b.WriteString(subject)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(" | ")
	b.WriteString(msg)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')
}

func writeDebugFields(b *strings.Builder, fields []field) {
	for _, f := range fields {
		if f.key == FieldComponent {
			continue
		}
		value := fieldText(f.value)
		if isSecretKey(f.key) {
			value = redactedValue
		}
		fmt.Fprintf(b, "    %s: %s\n", f.key, value)
	}
}

func writeInfoFields(b *strings.Builder, fields []field) {
	shown, hidden := selectInfoFields(fields)
	for _, f := range shown {
		fmt.Fprintf(b, "    - %s: %s\n", f.label, f.value)
	}
	switch {
	case hidden == 1:
		b.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		fmt.Fprintf(b, "    + %d more fields hidden\n", hidden)
	}
}

// FormatSubject renders the request and stage portion of a console header.
// Request IDs are cut to eight characters.
func FormatSubject(requestID, stage string) string {
	requestID = strings.TrimSpace(requestID)
	stage = strings.TrimSpace(stage)
	if len(requestID) > 8 {
		requestID = requestID[:8]
	}
	if requestID == "" {
		return stage
	}
	if stage == "" {
		return "Req " + requestID
	}
	return "Req " + requestID + " (" + stage + ")"
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, prefix []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = append(slices.Clone(prefix), attr.Key)
		}
		for _, child := range value.Group() {
			dst = appendField(dst, inner, child)
		}
		return dst
	}
	if attr.Key == "" {
		return dst
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(prefix, ".") + "." + key
	}
	return append(dst, field{key: key, value: value})
}

// lastWins keeps the first position of each key with its most recent value.
func lastWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func lookup(fields []field, key string) string {
	for _, f := range fields {
		if f.key == key {
			return plainText(f.value)
		}
	}
	return ""
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
