package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/panjf2000/ants/v2"

	"github.com/fascase/fascase/internal/embed"
	fcerrors "github.com/fascase/fascase/internal/errors"
	"github.com/fascase/fascase/internal/store"
)

// lockFile guards the data directory against concurrent builder runs.
const lockFile = ".fascase.lock"

// Progress receives builder progress: texts embedded so far out of total
// for the named table. Called from worker goroutines.
type Progress func(table string, done, total int)

// BuilderConfig tunes the embedding builder.
type BuilderConfig struct {
	// Workers bounds concurrent embedding batches.
	Workers int
	// BatchSize is texts per EmbedBatch call, capped by the provider.
	BatchSize int
}

// TableResult summarizes one built table.
type TableResult struct {
	Field    string
	File     string
	Rows     int
	Embedded int
	Cached   int
}

// Builder generates the vector table files from cases.json. Per-text
// results are cached in SQLite so re-runs only embed changed texts.
type Builder struct {
	dataDir  string
	embedder embed.Embedder
	cache    *EmbedCache
	cfg      BuilderConfig
	logger   *slog.Logger
	progress Progress
}

// NewBuilder creates a builder. cache may be nil (every text embeds).
func NewBuilder(dataDir string, embedder embed.Embedder, cache *EmbedCache, cfg BuilderConfig, logger *slog.Logger, progress Progress) *Builder {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > embed.MaxBatchSize {
		cfg.BatchSize = embed.DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		dataDir:  dataDir,
		embedder: embedder,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		progress: progress,
	}
}

// tablePlan names one output table and how its per-case text is derived.
type tablePlan struct {
	field string
	file  string
	text  func(*store.Case) string
}

func buildPlans() []tablePlan {
	plans := []tablePlan{
		{field: "document", file: PrimaryTableFile, text: ComposeDocumentText},
	}
	for _, field := range []string{store.FieldFASArguments, store.FieldViolationSummary, store.FieldAdDescription} {
		f := field
		plans = append(plans, tablePlan{
			field: f,
			file:  FieldTableFiles[f],
			text:  func(c *store.Case) string { return FieldText(c, f) },
		})
	}
	return plans
}

// Run builds every table. It holds an exclusive lock on the data dir for
// the duration; a second concurrent run fails fast.
func (b *Builder) Run(ctx context.Context) ([]TableResult, error) {
	lock := flock.New(filepath.Join(b.dataDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fcerrors.New(fcerrors.ErrCodeFilePermission, "acquiring data directory lock", err)
	}
	if !locked {
		return nil, fcerrors.New(fcerrors.ErrCodeInvalidInput,
			"data directory is locked by another fascase embed run", nil)
	}
	defer func() { _ = lock.Unlock() }()

	cases, err := ReadCases(b.dataDir)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(b.cfg.Workers)
	if err != nil {
		return nil, fcerrors.New(fcerrors.ErrCodeInternal, "creating worker pool", err)
	}
	defer pool.Release()

	var results []TableResult
	for _, plan := range buildPlans() {
		res, err := b.buildTable(ctx, pool, cases, plan)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// buildTable embeds every case text of one plan and writes its JSON file.
func (b *Builder) buildTable(ctx context.Context, pool *ants.Pool, cases []store.Case, plan tablePlan) (TableResult, error) {
	res := TableResult{Field: plan.field, File: plan.file, Rows: len(cases)}

	texts := make([]string, len(cases))
	for i := range cases {
		texts[i] = plan.text(&cases[i])
	}

	vectors := make([][]float32, len(texts))
	var missing []int
	for i, text := range texts {
		if b.cache == nil {
			missing = append(missing, i)
			continue
		}
		vec, err := b.cache.Get(CacheKey(b.embedder.ModelName(), text))
		if err != nil {
			return res, err
		}
		if vec != nil {
			vectors[i] = vec
			res.Cached++
			continue
		}
		missing = append(missing, i)
	}
	b.report(plan.field, len(texts)-len(missing), len(texts))

	if err := b.embedMissing(ctx, pool, plan.field, texts, vectors, missing); err != nil {
		return res, err
	}
	res.Embedded = len(missing)

	if err := b.writeTable(plan, vectors); err != nil {
		return res, err
	}
	b.logger.Info("vector table built",
		"field", plan.field,
		"rows", res.Rows,
		"embedded", res.Embedded,
		"cached", res.Cached)
	return res, nil
}

// embedMissing runs the uncached texts through the embedder in batches on
// the worker pool, writing results into vectors and the cache.
func (b *Builder) embedMissing(ctx context.Context, pool *ants.Pool, field string, texts []string, vectors [][]float32, missing []int) error {
	if len(missing) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		done     = len(texts) - len(missing)
	)

	for start := 0; start < len(missing); start += b.cfg.BatchSize {
		end := start + b.cfg.BatchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed || ctx.Err() != nil {
				return
			}

			batchTexts := make([]string, len(batch))
			for j, idx := range batch {
				batchTexts[j] = texts[idx]
			}

			vecs, err := b.embedder.EmbedBatch(ctx, batchTexts)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			for j, idx := range batch {
				vectors[idx] = vecs[j]
				if b.cache != nil {
					if err := b.cache.Put(CacheKey(b.embedder.ModelName(), texts[idx]), vecs[j]); err != nil && firstErr == nil {
						firstErr = err
					}
				}
			}
			done += len(batch)
			progress := done
			mu.Unlock()

			b.report(field, progress, len(texts))
		})
		if submitErr != nil {
			wg.Done()
			return fcerrors.New(fcerrors.ErrCodeInternal, "submitting embedding batch", submitErr)
		}
	}

	wg.Wait()
	if firstErr != nil {
		return fcerrors.Wrap(fcerrors.ErrCodeEmbeddingFailed, firstErr)
	}
	return ctx.Err()
}

// writeTable writes the table JSON atomically (tmp file + rename).
func (b *Builder) writeTable(plan tablePlan, vectors [][]float32) error {
	payload := struct {
		Field      string      `json:"field"`
		Model      string      `json:"model"`
		Dimension  int         `json:"dimension"`
		Normalized bool        `json:"normalized"`
		Vectors    [][]float32 `json:"vectors"`
	}{
		Field:      plan.field,
		Model:      b.embedder.ModelName(),
		Dimension:  b.embedder.Dimensions(),
		Normalized: true,
		Vectors:    vectors,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fcerrors.New(fcerrors.ErrCodeInternal, "encoding vector table", err)
	}

	path := filepath.Join(b.dataDir, plan.file)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fcerrors.New(fcerrors.ErrCodeFilePermission,
			fmt.Sprintf("writing vector table %s", tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fcerrors.New(fcerrors.ErrCodeFilePermission,
			fmt.Sprintf("replacing vector table %s", path), err)
	}
	return nil
}

func (b *Builder) report(table string, done, total int) {
	if b.progress != nil {
		b.progress(table, done, total)
	}
}
