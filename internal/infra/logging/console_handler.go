package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	ansiReset     = "\033[0m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiCyan      = "\033[36m"
	ansiGray      = "\033[90m"
	ansiUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var levelColors = map[slog.Level]string{
	slog.LevelDebug: ansiCyan,
	slog.LevelInfo:  ansiGreen,
	slog.LevelWarn:  ansiYellow,
	slog.LevelError: ansiRed,
}

// ConsoleHandler writes one human readable line per record, colored on terminals.
type ConsoleHandler struct {
	Output io.Writer

	// Level applies to loggers no PkgLevels entry matches
	Level Level

	// PkgLevels maps logger name prefixes to their minimum level
	PkgLevels map[string]Level

	Color     bool
	AddSource bool

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	attrs = append(attrs, h.attrs...)

	var name string

	for _, attr := range attrs {
		if attr.Key == "logger" {
			name = attr.Value.String()

			break
		}
	}

	if r.Level < levelFor(name, h.Level, h.PkgLevels) {
		return nil
	}

	var b strings.Builder

	b.WriteString(h.paint(ansiGray, r.Time.Format("15:04:05.000")))
	b.WriteString(" ")
	b.WriteString(h.paint(levelColors[r.Level], "["+r.Level.String()+"]"))
	b.WriteString(" ")
	b.WriteString(r.Message)

	if len(attrs) > 0 {
		var prefix string
		if len(h.groups) > 0 {
			prefix = strings.Join(h.groups, ".") + "."
		}

		b.WriteString(" ")
		b.WriteString(h.paint(ansiGray, "|"))
		h.writeAttrs(&b, prefix, attrs)
	}

	if h.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fn := frame.Function[strings.LastIndexByte(frame.Function, '/')+1:]

		b.WriteString("\n-> ")
		b.WriteString(h.paint(ansiGray, fn+"()"))
		b.WriteString(" in ")
		b.WriteString(h.paint(ansiUnderline, filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line)))
	}

	b.WriteString("\n")

	_, err := io.WriteString(h.Output, b.String())

	return err //nolint:wrapcheck
}

func (h *ConsoleHandler) writeAttrs(b *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		attr = RedactAttr(nil, attr)

		if attr.Value.Kind() == slog.KindGroup {
			h.writeAttrs(b, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		b.WriteString(" ")
		b.WriteString(prefix + attr.Key)
		b.WriteString("=")
		b.WriteString(h.paint(ansiGray, attr.Value.String()))
	}
}

func (h *ConsoleHandler) paint(code, text string) string {
	if !h.Color || code == "" {
		return text
	}

	return code + text + ansiReset
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	c.groups = append([]string(nil), h.groups...)

	return &c
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	c := h.clone()
	c.groups = append(c.groups, name)

	return c
}

// Enabled implements slog.Handler. Per logger levels are applied in Handle.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= minLevel(h.Level, h.PkgLevels)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
