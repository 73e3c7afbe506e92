package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sink persists log records, typically the node's event journal.
// Write must not log through the Logger it is attached to.
type Sink interface {
	Write(level slog.Level, msg, attrs string)
}

// WithSink returns a Logger that also copies records at or above min to
// sink. Attributes are flattened to "key=value" pairs.
func (l *Logger) WithSink(sink Sink, min slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(&sinkHandler{next: l.Handler(), sink: sink, min: min}),
	}
}

type sinkHandler struct {
	next  slog.Handler
	sink  Sink
	min   slog.Level
	attrs []slog.Attr
}

func (h *sinkHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min || h.next.Enabled(ctx, level)
}

func (h *sinkHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.min {
		h.sink.Write(r.Level, r.Message, h.flatten(r))
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &sinkHandler{next: h.next.WithAttrs(attrs), sink: h.sink, min: h.min, attrs: merged}
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	return &sinkHandler{next: h.next.WithGroup(name), sink: h.sink, min: h.min, attrs: h.attrs}
}

// flatten renders the handler's own attributes followed by the record's.
func (h *sinkHandler) flatten(r slog.Record) string {
	var parts []string
	for _, a := range h.attrs {
		parts = append(parts, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	})
	return strings.Join(parts, " ")
}
