package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last relevant
// file event before rebuilding. Dataset rewrites touch several files in
// quick succession; one rebuild should cover all of them.
const DefaultDebounce = 2 * time.Second

// Watcher rebuilds the index when dataset files change and swaps the new
// snapshot into the provider. A failed rebuild keeps the previous
// snapshot.
type Watcher struct {
	loader   *Loader
	provider *Provider
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher. A non-positive debounce uses the default.
func NewWatcher(loader *Loader, provider *Provider, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		loader:   loader,
		provider: provider,
		logger:   logger,
		debounce: debounce,
	}
}

// datasetFile reports whether a path names one of the files a rebuild
// reads. Editor temp files and the builder's own .tmp writes are ignored.
func datasetFile(path string) bool {
	name := filepath.Base(path)
	if name == CasesFile || name == PrimaryTableFile {
		return true
	}
	for _, file := range FieldTableFiles {
		if name == file {
			return true
		}
	}
	return false
}

// Run watches the data directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.loader.DataDir()); err != nil {
		return err
	}
	w.logger.Info("watching data directory", "dir", w.loader.DataDir(), "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !datasetFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("dataset change detected", "file", ev.Name, "op", ev.Op.String())
			w.scheduleReload(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// scheduleReload arms (or re-arms) the debounce timer.
func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.Reload(ctx)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Reload rebuilds the index once and swaps it in on success.
func (w *Watcher) Reload(ctx context.Context) {
	start := time.Now()
	ix, report, err := w.loader.Load(ctx)
	if err != nil {
		w.logger.Error("index rebuild failed, keeping previous snapshot", "error", err)
		return
	}
	w.provider.Set(ix)
	w.logger.Info("index reloaded",
		"cases", report.Cases,
		"generation", report.Generation,
		"duration_ms", time.Since(start).Milliseconds())
}
