package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// hiddenKeys never reach the console; they are only useful in the log file.
var hiddenKeys = map[string]bool{
	RunIDKey: true,
}

// NewFriendlyErrorHandler returns a slog.Handler that renders error records in a
// concise, human-friendly format suitable for console output.
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return &friendlyHandler{w: w}
}

type friendlyHandler struct {
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

type field struct {
	key   string
	value string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	fields := h.collect(record)

	summary := strings.TrimSpace(record.Message)
	if summary == "" {
		for _, f := range fields {
			if f.key == "error" && f.value != "" {
				summary = f.value
				break
			}
		}
	}
	if summary == "" {
		summary = "an unknown error occurred"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", summary)

	others := make([]field, 0, len(fields))
	for _, f := range fields {
		switch {
		case f.value == "" || hiddenKeys[f.key] || f.key == "error":
		case f.key == "suggestion":
			fmt.Fprintf(&sb, "  suggestion: %s\n", f.value)
		default:
			others = append(others, f)
		}
	}

	sort.SliceStable(others, func(i, j int) bool {
		return others[i].key < others[j].key
	})
	for _, f := range others {
		writeField(&sb, f)
	}

	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *friendlyHandler) clone() *friendlyHandler {
	return &friendlyHandler{
		w:      h.w,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *friendlyHandler) collect(record slog.Record) []field {
	fields := make([]field, 0, len(h.attrs)+record.NumAttrs())
	add := func(attr slog.Attr) bool {
		fields = append(fields, field{key: h.fullKey(attr.Key), value: valueString(attr.Value.Resolve())})
		return true
	}
	for _, attr := range h.attrs {
		add(attr)
	}
	record.Attrs(add)
	return fields
}

func (h *friendlyHandler) fullKey(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(append(append([]string{}, h.groups...), key), ".")
}

func valueString(val slog.Value) string {
	switch val.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(val.Group()))
		for _, attr := range val.Group() {
			parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, valueString(attr.Value.Resolve())))
		}
		return strings.Join(parts, ", ")
	case slog.KindAny:
		if err, ok := val.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(val.Any())
	default:
		return val.String()
	}
}

func writeField(sb *strings.Builder, f field) {
	lines := strings.Split(strings.TrimSpace(f.value), "\n")
	fmt.Fprintf(sb, "  %s: %s\n", f.key, strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fmt.Fprintf(sb, "    %s\n", trimmed)
		}
	}
}
