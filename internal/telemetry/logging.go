package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// redactedKeys never reach the log output with their value.
var redactedKeys = map[string]struct{}{
	"secret":     {},
	"secret_key": {},
	"password":   {},
}

func NewLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	baseHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	})

	handler := &traceHandler{baseHandler: baseHandler}
	return slog.New(handler)
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := redactedKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

type traceHandler struct {
	baseHandler slog.Handler
	groups      []string
	attrs       []slog.Attr
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	traceAttrs := []slog.Attr{}
	if traceID := TraceID(ctx); traceID != "" {
		traceAttrs = append(traceAttrs, slog.String("trace_id", traceID))
	}
	if spanID := SpanID(ctx); spanID != "" {
		traceAttrs = append(traceAttrs, slog.String("span_id", spanID))
	}

	handler := h.baseHandler

	if len(traceAttrs) > 0 {
		handler = handler.WithAttrs(traceAttrs)
	}

	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}

	for _, group := range h.groups {
		handler = handler.WithGroup(group)
	}

	return handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &traceHandler{
		baseHandler: h.baseHandler,
		groups:      h.groups,
		attrs:       newAttrs,
	}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &traceHandler{
		baseHandler: h.baseHandler,
		groups:      newGroups,
		attrs:       h.attrs,
	}
}
