package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

// ErrInvalidOutput is returned when the configured log output cannot be opened.
var ErrInvalidOutput = errors.New("invalid log output")

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is added to every record
	AppName string

	// Output is "stdout", "stderr", "discard" or a file path
	Output string `env:"OUTPUT" default:"stderr"`

	// Redact lists additional attribute keys whose values are masked ("key,key")
	Redact []string `env:"REDACT" default:""`

	// Level is the minimum level ("debug", "info", "warn", "error")
	Level string `env:"LEVEL" default:"info"`

	// Filter overrides the level per logger name prefix ("svc.adminclient:debug,repo:warn")
	Filter string `env:"FILTER" default:""`

	// JSON switches from the console format to one JSON object per line
	JSON bool `env:"JSON" default:"false"`

	// Color forces ANSI colors on the console; by default they are used on terminals only
	Color bool `env:"COLOR" default:"false"`

	OutputHandle io.Writer
}

// state is the configuration every new logger is built from.
type state struct {
	cfg    LoggerConfig
	output io.Writer
	level  Level
	levels map[string]Level
	color  bool
}

//nolint:gochecknoglobals
var (
	Group      = slog.Group
	GroupValue = slog.GroupValue

	current     = state{output: io.Discard, level: LevelInfo}
	currentLock sync.RWMutex
)

// Configure sets the output, level and format of loggers created afterwards.
// Loggers obtained before the first call discard everything.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) error {
	cfg.AppName = appName

	output := cfg.OutputHandle
	if output == nil {
		var err error
		if output, err = openOutput(cfg.Output); err != nil {
			return err
		}
	}

	next := state{
		cfg:    cfg,
		output: output,
		level:  parseLogLevel(cfg.Level, LevelInfo),
		levels: parseFilter(cfg.Filter),
		color:  cfg.Color || isTerminal(output),
	}

	setRedactedKeys(cfg.Redact)
	slog.SetLogLoggerLevel(next.level)

	currentLock.Lock()
	current = next
	currentLock.Unlock()

	GetLogger("infra.logging").With(Group("config",
		"appName", appName,
		"output", cfg.Output,
		"level", cfg.Level,
		"filter", cfg.Filter,
		"json", cfg.JSON,
		"redact", cfg.Redact,
	)).DebugContext(ctx, "logging configured")

	return nil
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "discard":
		return io.Discard, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	return file, nil
}

// GetLogLogger adapts logger for APIs that want a *log.Logger, such as http.Server.ErrorLog.
func GetLogLogger(logger Logger, level Level) *log.Logger {
	return slog.NewLogLogger(logger.With("stdlog", true).Handler(), level)
}

// GetLogger returns a logger named after the component it serves, e.g. "svc.adminclient.http_client".
func GetLogger(name string) Logger {
	currentLock.RLock()
	st := current
	currentLock.RUnlock()

	if st.output == io.Discard {
		return NewNopLogger()
	}

	var handler slog.Handler

	if st.cfg.JSON {
		//nolint:exhaustruct
		handler = slog.NewJSONHandler(st.output, &slog.HandlerOptions{
			AddSource:   true,
			Level:       minLevel(st.level, st.levels),
			ReplaceAttr: RedactAttr,
		})
		handler = &filterHandler{Handler: handler, level: levelFor(name, st.level, st.levels)}
	} else {
		handler = &ConsoleHandler{
			Output:    st.output,
			Level:     st.level,
			PkgLevels: st.levels,
			Color:     st.color,
			AddSource: st.level <= LevelDebug,
		}
	}

	logger := slog.New(NewTracingHandler(handler))

	if st.cfg.AppName != "" {
		logger = logger.With("app", st.cfg.AppName)
	}

	return logger.With("logger", name)
}

// parseFilter reads "name:level,name:level". Malformed entries are skipped.
func parseFilter(filter string) map[string]Level {
	levels := make(map[string]Level)

	for _, entry := range strings.Split(filter, ",") {
		name, level, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}

		levels[strings.TrimSpace(name)] = parseLogLevel(level, LevelDebug)
	}

	return levels
}

// levelFor returns the level of the longest filter prefix matching name.
func levelFor(name string, fallback Level, levels map[string]Level) Level {
	for key := name; ; {
		if level, ok := levels[key]; ok {
			return level
		}

		i := strings.LastIndexByte(key, '.')
		if i < 0 {
			break
		}

		key = key[:i]
	}

	return fallback
}

func minLevel(level Level, levels map[string]Level) Level {
	for _, l := range levels {
		level = min(level, l)
	}

	return level
}

func parseLogLevel(levelStr string, fallback Level) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}

	return fallback
}
