package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Rotation defaults. Every search request emits one JSON line, so a
// modest per-file cap keeps ~/.fascase/logs bounded across restarts.
const (
	defaultMaxSizeMB = 10
	defaultMaxFiles  = 5
)

// Config controls where and how the server log is written.
type Config struct {
	// Level is the minimum level recorded (debug, info, warn, error).
	Level string
	// FilePath is the log file location. Empty disables file logging.
	FilePath string
	// MaxSizeMB caps a single log file before it is rotated.
	MaxSizeMB int
	// MaxFiles caps how many rotated files are kept.
	MaxFiles int
	// WriteToStderr mirrors log lines to stderr alongside the file.
	WriteToStderr bool
}

// DefaultConfig logs at info to the default server log and stderr.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     defaultMaxSizeMB,
		MaxFiles:      defaultMaxFiles,
		WriteToStderr: true,
	}
}

// DebugConfig is DefaultConfig at debug level, used by the --debug flag.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup opens the rotating log file and returns a JSON logger plus a
// cleanup that flushes and closes it.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	if err := EnsureLogDir(); err != nil {
		return nil, nil, err
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = writer
	if cfg.WriteToStderr {
		out = io.MultiWriter(writer, os.Stderr)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return slog.New(handler), cleanup, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString exposes level parsing to the log viewer.
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
