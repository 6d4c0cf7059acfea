package logging

import (
	"context"
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

//nolint:gochecknoglobals
var levelNames = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is added to every record as "app"
	AppName string

	// Output is "stdout", "stderr", "discard" or a file path
	Output string `env:"OUTPUT" default:"stderr"`

	// Level is the minimum level ("debug", "info", "warn", "error")
	Level string `env:"LEVEL" default:"info"`

	// Filter holds per-logger overrides as "svc.cartsvc:debug,repo:warn"
	Filter string `env:"FILTER" default:""`

	// JSON switches from console output to slog's JSON handler
	JSON bool `env:"JSON" default:"false"`

	// NoColor disables ANSI colors in console output
	NoColor bool `env:"NO_COLOR" default:"false"`

	OutputHandle io.Writer
}

//nolint:gochecknoglobals
var (
	Group      = slog.Group
	GroupValue = slog.GroupValue

	config     LoggerConfig
	configLock sync.Mutex
)

// Configure sets the process-wide logging configuration.
// Loggers obtained before the call keep their old output.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) error {
	if err := configure(cfg, appName); err != nil {
		return err
	}

	GetLogger("infra.logging").With(Group("config",
		"appName", appName,
		"output", cfg.Output,
		"level", cfg.Level,
		"filter", cfg.Filter,
		"json", cfg.JSON,
	)).DebugContext(ctx, "logging configured")

	return nil
}

func configure(cfg LoggerConfig, appName string) error {
	configLock.Lock()
	defer configLock.Unlock()

	cfg.AppName = appName

	if cfg.OutputHandle == nil {
		handle, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}

		cfg.OutputHandle = handle
	}

	config = cfg

	slog.SetLogLoggerLevel(parseLogLevel(cfg.Level, LevelInfo))

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

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

// GetLogLogger adapts a Logger for code that wants a *log.Logger, such as http.Server.ErrorLog.
func GetLogLogger(logger Logger, level Level) *log.Logger {
	return slog.NewLogLogger(logger.With("stdlog", true).Handler(), level)
}

// GetLogger returns a logger named after the calling component.
func GetLogger(name string) Logger {
	cfg := snapshot()

	if cfg.OutputHandle == nil || cfg.OutputHandle == io.Discard {
		return NewNopLogger()
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLogLevel(cfg.Level, LevelInfo))

	var handler Handler

	if cfg.JSON {
		//nolint:exhaustruct
		handler = slog.NewJSONHandler(cfg.OutputHandle, &slog.HandlerOptions{
			AddSource: true,
			Level:     levelVar,
		})
	} else {
		//nolint:exhaustruct
		handler = &ConsoleHandler{
			Output:    cfg.OutputHandle,
			Level:     levelVar,
			PkgLevels: cfg.pkgLevels(),
			NoColor:   cfg.NoColor,
			mu:        &sync.Mutex{},
		}
	}

	logger := slog.New(NewContextHandler(handler))

	if cfg.AppName != "" {
		logger = logger.With("app", cfg.AppName)
	}

	return logger.With(loggerNameKey, name)
}

func (cfg LoggerConfig) pkgLevels() map[string]Level {
	levels := make(map[string]Level)

	for _, entry := range strings.Split(cfg.Filter, ",") {
		name, level, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}

		levels[name] = parseLogLevel(level, LevelDebug)
	}

	return levels
}

func snapshot() LoggerConfig {
	configLock.Lock()
	defer configLock.Unlock()

	return config
}

func parseLogLevel(levelStr string, fallback Level) Level {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(levelStr))]
	if !ok {
		return fallback
	}

	return level
}
