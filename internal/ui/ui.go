// Package ui renders embed-builder progress: a bubbletea TUI on an
// interactive terminal, plain line output for CI and pipes.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// ProgressEvent is one builder progress update.
type ProgressEvent struct {
	// Table is the vector table being built ("document",
	// "FAS_arguments", ...).
	Table string
	Done  int
	Total int
}

// TableSummary is the final outcome of one built table.
type TableSummary struct {
	Table    string
	Rows     int
	Embedded int
	Cached   int
}

// CompletionStats summarizes a finished embed run.
type CompletionStats struct {
	Tables   []TableSummary
	Duration time.Duration
	Model    string
}

// Renderer displays builder progress.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates the display. Safe for concurrent use.
	UpdateProgress(event ProgressEvent)

	// Complete shows the final summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// NewRenderer picks the TUI on an interactive terminal and falls back to
// plain output for pipes, CI and NO_COLOR environments.
func NewRenderer(cfg Config) Renderer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.ForcePlain || DetectNoColor() || !IsTTY(cfg.Output) {
		return NewPlainRenderer(cfg)
	}
	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// DetectNoColor reports whether the environment asks for plain output.
func DetectNoColor() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != ""
}
