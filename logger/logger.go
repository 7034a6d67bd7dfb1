package logger

import (
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
)

var defaultLogger *slog.Logger

// LogLevel represents log levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration
type Config struct {
	Level  LogLevel `toml:"level" validate:"required,oneof=debug info warn error"`
	Format string   `toml:"format" validate:"required,oneof=text json"` // "text" or "json"
}

// Validate validates the logger configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// Init initializes the global logger with the given configuration.
// Logging goes to stderr; stdout belongs to the transcript.
func Init(config Config) {
	if err := config.Validate(); err != nil {
		slog.Error("Invalid logger configuration", "error", err)
	}
	var level slog.Level
	switch config.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelInfo:
		level = slog.LevelInfo
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch config.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// Fatal logs an error and exits the program
func Fatal(msg string, args ...any) {
	get().Error(msg, args...)
	os.Exit(1)
}

// With returns a logger with additional context
func With(args ...any) *slog.Logger {
	return get().With(args...)
}

// Network creates a logger with network context
func Network(name string) *slog.Logger {
	return get().With("network", name)
}

// Channel creates a logger with channel context
func Channel(network, channel string) *slog.Logger {
	return get().With("network", network, "channel", channel)
}

func get() *slog.Logger {
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}
