package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fascase/fascase/internal/config"
	"github.com/fascase/fascase/internal/embed"
	"github.com/fascase/fascase/internal/index"
	"github.com/fascase/fascase/internal/output"
	"github.com/fascase/fascase/internal/ui"
)

// embedOptions holds CLI flags for embed.
type embedOptions struct {
	dataDir   string
	offline   bool
	noCache   bool
	plain     bool
	workers   int
	batchSize int
}

func newEmbedCmd() *cobra.Command {
	var opts embedOptions

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Build the vector tables from the case corpus",
		Long: `Build the vector table files from cases.json.

Embeds the composed document text plus the per-field rerank texts
(FAS_arguments, violation_summary, ad_description) and writes one
table file per field into the data directory.

Per-text vectors are cached in SQLite, so re-runs only embed texts
that changed since the last build.`,
		Example: `  # Build with the configured provider (gemini needs GEMINI_API_KEY)
  fascase embed

  # Deterministic offline embeddings, no API key needed
  fascase embed --offline

  # Re-embed everything, ignoring the cache
  fascase embed --no-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEmbed(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data", "", "Data directory (overrides config)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use static embeddings (skip the API)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Ignore the embedding cache, re-embed everything")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Plain line output instead of the progress TUI")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent embedding batches (default 4)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Texts per batch request (default 100)")

	return cmd
}

func runEmbed(cmd *cobra.Command, opts embedOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.Data.Dir = opts.dataDir
	}
	if opts.offline {
		cfg.Embeddings.Provider = "static"
	}
	if embed.ParseProvider(cfg.Embeddings.Provider) == embed.ProviderNone {
		return fmt.Errorf("embeddings.provider is %q; set it to gemini or static (or pass --offline)", cfg.Embeddings.Provider)
	}

	embedder, err := embed.NewEmbedder(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	var cache *index.EmbedCache
	if !opts.noCache {
		cachePath := filepath.Join(cfg.Data.Dir, index.EmbedCacheFile)
		cache, err = index.OpenEmbedCache(cachePath)
		if err != nil {
			out.Warningf("Embedding cache unavailable: %v", err)
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	renderer := ui.NewRenderer(ui.Config{
		Output:     cmd.OutOrStdout(),
		ForcePlain: opts.plain,
	})
	if err := renderer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start progress display: %w", err)
	}

	progress := func(table string, done, total int) {
		renderer.UpdateProgress(ui.ProgressEvent{Table: table, Done: done, Total: total})
	}

	builder := index.NewBuilder(cfg.Data.Dir, embedder, cache, index.BuilderConfig{
		Workers:   opts.workers,
		BatchSize: opts.batchSize,
	}, nil, progress)

	start := time.Now()
	results, err := builder.Run(ctx)
	if err != nil {
		_ = renderer.Stop()
		if ctx.Err() == context.Canceled {
			out.Warning("Embedding interrupted")
			return err
		}
		return fmt.Errorf("embedding failed: %w", err)
	}

	tables := make([]ui.TableSummary, len(results))
	for i, r := range results {
		tables[i] = ui.TableSummary{
			Table:    r.Field,
			Rows:     r.Rows,
			Embedded: r.Embedded,
			Cached:   r.Cached,
		}
	}
	renderer.Complete(ui.CompletionStats{
		Tables:   tables,
		Duration: time.Since(start),
		Model:    embedder.ModelName(),
	})
	return renderer.Stop()
}
