package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fascase/fascase/internal/config"
	"github.com/fascase/fascase/internal/embed"
	"github.com/fascase/fascase/internal/httpapi"
	"github.com/fascase/fascase/internal/index"
	"github.com/fascase/fascase/internal/logging"
	mcpserver "github.com/fascase/fascase/internal/mcp"
	"github.com/fascase/fascase/internal/search"
	"github.com/fascase/fascase/internal/telemetry"
	"github.com/fascase/fascase/pkg/version"
)

// serveOptions holds CLI flag overrides for serve.
type serveOptions struct {
	transport string
	host      string
	port      int
	dataDir   string
	watch     bool
	pprof     bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the search service",
		Long: `Start the fascase search service.

Transports:
  http   REST API (POST /api/search, GET /api/filters, GET /api/health)
  mcp    Model Context Protocol over stdio, for AI assistants

With --transport mcp, stdout carries JSON-RPC exclusively; all logging
goes to the log file. Use 'fascase-logs' to inspect it.`,
		Example: `  # REST API on the configured port (default :8000)
  fascase serve

  # MCP over stdio
  fascase serve --transport mcp

  # Reload the index when files under the data dir change
  fascase serve --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.transport, "transport", "t", "", "Transport: http or mcp (overrides config)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Listen port (overrides config)")
	cmd.Flags().StringVar(&opts.dataDir, "data", "", "Data directory (overrides config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the index when dataset files change")
	cmd.Flags().BoolVar(&opts.pprof, "pprof", false, "Mount net/http/pprof under /debug/pprof (http only)")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyServeOverrides(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The MCP transport owns stdout for JSON-RPC, so its logs go only
	// to the file.
	var logger *slog.Logger
	var cleanup func()
	if cfg.Server.Transport == "mcp" {
		cleanup, err = logging.SetupMCPModeWithLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}
		logger = slog.Default()
	} else {
		logCfg := logging.Config{
			Level:         cfg.Logging.Level,
			FilePath:      cfg.Logging.FilePath,
			MaxSizeMB:     cfg.Logging.MaxSizeMB,
			MaxFiles:      cfg.Logging.MaxFiles,
			WriteToStderr: cfg.Logging.Stderr,
		}
		if logCfg.FilePath == "" {
			logCfg.FilePath = logging.DefaultLogPath()
		}
		logger, cleanup, err = logging.Setup(logCfg)
		if err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}
		slog.SetDefault(logger)
	}
	defer cleanup()

	logger.Info("fascase starting",
		slog.String("version", version.Version),
		slog.String("transport", cfg.Server.Transport),
		slog.String("data_dir", cfg.Data.Dir))

	embedder, err := embed.NewEmbedder(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	loader := index.NewLoader(cfg.Data.Dir, logger)
	provider := index.NewProvider()

	// A failed initial load is not fatal: the service starts degraded
	// and answers with index-not-ready until data appears.
	if ix, _, loadErr := loader.Load(ctx); loadErr != nil {
		logger.Warn("index not loaded, serving degraded",
			slog.String("error", loadErr.Error()))
	} else {
		provider.Set(ix)
	}

	if cfg.Data.Watch {
		debounce := 2 * time.Second
		if d, parseErr := time.ParseDuration(cfg.Data.WatchDebounce); parseErr == nil && d > 0 {
			debounce = d
		}
		watcher := index.NewWatcher(loader, provider, debounce, logger)
		go func() {
			if watchErr := watcher.Run(ctx); watchErr != nil {
				logger.Error("index watcher stopped",
					slog.String("error", watchErr.Error()))
			}
		}()
	}

	engineOpts := []search.EngineOption{search.WithLogger(logger)}

	var collector *telemetry.Collector
	if cfg.Telemetry.Enabled {
		dbPath := cfg.Telemetry.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(cfg.Data.Dir, telemetry.DefaultDBFile)
		}
		metricsStore, storeErr := telemetry.OpenSQLiteStore(dbPath)
		if storeErr != nil {
			logger.Warn("telemetry store unavailable, metrics stay in memory",
				slog.String("error", storeErr.Error()))
			collector = telemetry.NewCollector(nil, telemetry.DefaultConfig())
		} else {
			collector = telemetry.NewCollector(metricsStore, telemetry.DefaultConfig())
		}
		defer func() { _ = collector.Close() }()
		engineOpts = append(engineOpts, search.WithMetrics(collector))
	}

	engine, err := search.NewEngine(provider, embedder, engineConfig(cfg), engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	switch cfg.Server.Transport {
	case "mcp":
		srv, srvErr := mcpserver.NewServer(engine, version.Version, logger)
		if srvErr != nil {
			return fmt.Errorf("failed to create MCP server: %w", srvErr)
		}
		return srv.Run(ctx)
	default:
		srv := httpapi.NewServer(engine, httpServerConfig(cfg, opts.pprof), logger)
		return srv.Run(ctx)
	}
}

// applyServeOverrides applies CLI flags on top of the loaded config.
func applyServeOverrides(cfg *config.Config, opts serveOptions) {
	if opts.transport != "" {
		cfg.Server.Transport = opts.transport
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if opts.dataDir != "" {
		cfg.Data.Dir = opts.dataDir
	}
	if opts.watch {
		cfg.Data.Watch = true
	}
}

// engineConfig maps the file configuration onto engine tuning.
func engineConfig(cfg *config.Config) search.Config {
	return search.Config{
		SemanticWeight: cfg.Search.SemanticWeight,
		KeywordWeight:  cfg.Search.KeywordWeight,
		CandidatePool:  cfg.Search.CandidatePool,
		KeywordPool:    cfg.Search.KeywordPool,
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		MaxQueryLength: cfg.Search.MaxQueryLength,
		CacheSize:      cfg.Search.CacheSize,
		Rerank: search.RerankConfig{
			PrimaryField: cfg.Rerank.PrimaryField,
			Fields:       cfg.Rerank.Fields,
		},
	}
}

func httpServerConfig(cfg *config.Config, pprof bool) httpapi.Config {
	shutdown := 10 * time.Second
	if d, err := time.ParseDuration(cfg.Server.ShutdownTimeout); err == nil && d > 0 {
		shutdown = d
	}
	return httpapi.Config{
		Addr:            fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		CORSOrigins:     cfg.Server.CORSOrigins,
		ShutdownTimeout: shutdown,
		EnablePprof:     pprof,
		Version:         version.Version,
	}
}

// engineForLocalQuery wires a one-shot engine for the search command:
// same construction as serve, no watcher or telemetry.
func engineForLocalQuery(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*search.Engine, embed.Embedder, error) {
	embedder, err := embed.NewEmbedder(cfg.Embeddings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	loader := index.NewLoader(cfg.Data.Dir, logger)
	provider := index.NewProvider()
	ix, _, err := loader.Load(ctx)
	if err != nil {
		_ = embedder.Close()
		return nil, nil, err
	}
	provider.Set(ix)

	engine, err := search.NewEngine(provider, embedder, engineConfig(cfg), search.WithLogger(logger))
	if err != nil {
		_ = embedder.Close()
		return nil, nil, fmt.Errorf("failed to create search engine: %w", err)
	}
	return engine, embedder, nil
}
