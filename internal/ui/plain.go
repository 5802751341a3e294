package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// plainStep controls how often the plain renderer prints: every
// plainStep texts and always at completion, so logs stay readable on
// large corpora.
const plainStep = 50

// timeRound is the duration granularity shown in summaries.
const timeRound = 10 * time.Millisecond

// PlainRenderer prints one line per progress step (for CI/pipes).
type PlainRenderer struct {
	mu   sync.Mutex
	out  io.Writer
	last map[string]int
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output, last: map[string]int{}}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.last[event.Table]
	if event.Done < event.Total && event.Done-prev < plainStep {
		return
	}
	r.last[event.Table] = event.Done
	_, _ = fmt.Fprintf(r.out, "[EMBED] %s %d/%d\n", event.Table, event.Done, event.Total)
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range stats.Tables {
		_, _ = fmt.Fprintf(r.out, "[DONE] %s: %d rows (%d embedded, %d cached)\n",
			t.Table, t.Rows, t.Embedded, t.Cached)
	}
	_, _ = fmt.Fprintf(r.out, "[DONE] model %s, total %s\n", stats.Model, stats.Duration.Round(timeRound))
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}
