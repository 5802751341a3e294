package logging

import (
	"log/slog"
)

// SetupMCPMode configures file-only logging at debug level and installs
// it as the default logger. In MCP mode stdout carries JSON-RPC frames
// exclusively, so nothing may reach stdout or stderr.
func SetupMCPMode() (func(), error) {
	cleanup, err := SetupMCPModeWithLevel("debug")
	if err != nil {
		return nil, err
	}

	slog.Info("MCP mode logging initialized",
		slog.String("log_file", DefaultLogPath()),
		slog.Bool("stderr_disabled", true))
	return cleanup, nil
}

// SetupMCPModeWithLevel is SetupMCPMode at a caller-chosen level.
func SetupMCPModeWithLevel(level string) (func(), error) {
	logger, cleanup, err := Setup(Config{
		Level:         level,
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     defaultMaxSizeMB,
		MaxFiles:      defaultMaxFiles,
		WriteToStderr: false,
	})
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return cleanup, nil
}
