package logging

import (
	"context"
	"log/slog"
)

// NewNopLogger returns a logger that drops every record without formatting it.
func NewNopLogger() Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// filterHandler drops records below level before they reach Handler.
type filterHandler struct {
	slog.Handler
	level Level
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.Handler.Enabled(ctx, level)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filterHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	return &filterHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}
