// Package logging wires log/slog for the API: console output, weekly rotating
// JSON files, and an HTTP request logging middleware.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/cogitto/cogitto-api/config"
)

// Options controls logger construction.
type Options struct {
	Dir            string // empty disables file logging
	Env            config.Environment
	Level          string
	Verbose        bool // only meaningful in the test environment
	RetentionWeeks int
	MaxFileSize    int64
}

type LoggingService struct {
	Logger *slog.Logger
	closer io.Closer
}

var (
	DefaultLoggingService *LoggingService
	mu                    sync.RWMutex
)

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// GetConsoleLogLevel picks the console level for an environment.
// Tests stay quiet unless verbose; an explicit level wins elsewhere.
func GetConsoleLogLevel(env config.Environment, level string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}
	if level != "" {
		return parseLogLevel(level)
	}
	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger from opts. The returned closer is nil when file
// logging is disabled or could not be set up.
func NewLogger(opts Options) (*slog.Logger, io.Closer) {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})
	if opts.Dir == "" {
		return slog.New(consoleHandler), nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory, logging to console only", "error", err)
		return logger, nil
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}
	rotating := NewRotatingLogger(opts.Dir, retention, opts.MaxFileSize)
	rotating.startCleanup()

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: parseLogLevel(opts.Level),
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), rotating
}

// InitLogger installs the global logger and makes it the slog default.
func InitLogger(opts Options) {
	logger, closer := NewLogger(opts)

	mu.Lock()
	DefaultLoggingService = &LoggingService{Logger: logger, closer: closer}
	mu.Unlock()

	slog.SetDefault(logger)
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.RLock()
	svc := DefaultLoggingService
	mu.RUnlock()
	if svc == nil || svc.closer == nil {
		return nil
	}
	return svc.closer.Close()
}

// Logger returns the global logger, falling back to slog's default.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.Default()
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
