package search

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	fcerrors "github.com/fascase/fascase/internal/errors"
	"github.com/fascase/fascase/internal/store"
)

// IndexProvider hands out the current index snapshot. The watcher swaps
// snapshots atomically, so a request works against one consistent index
// for its whole lifetime.
type IndexProvider interface {
	Snapshot() *store.Index
}

// QueryEmbedder is the slice of the embedding client the engine uses.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

// Event describes one completed search for telemetry.
type Event struct {
	Query       string
	State       SignalState
	ResultCount int
	Latency     time.Duration
	CacheHit    bool
}

// Metrics receives search events. Implementations must not block.
type Metrics interface {
	RecordSearch(Event)
}

// Config tunes the engine. Zero values are replaced with defaults.
type Config struct {
	// SemanticWeight and KeywordWeight combine the two signal scores
	// during fusion.
	SemanticWeight float64
	KeywordWeight  float64

	// CandidatePool is how many fused candidates survive into filtering
	// and reranking. KeywordPool bounds the keyword pass on its own.
	CandidatePool int
	KeywordPool   int

	// DefaultLimit applies when a request leaves Limit unset; MaxLimit
	// caps explicit requests.
	DefaultLimit int
	MaxLimit     int

	// MaxQueryLength bounds the query in runes.
	MaxQueryLength int

	// CacheSize is the response cache capacity. Zero disables caching.
	CacheSize int

	Rerank RerankConfig
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		SemanticWeight: 0.7,
		KeywordWeight:  0.3,
		CandidatePool:  100,
		KeywordPool:    50,
		DefaultLimit:   20,
		MaxLimit:       50,
		MaxQueryLength: 5000,
		CacheSize:      256,
		Rerank:         DefaultRerankConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SemanticWeight <= 0 && c.KeywordWeight <= 0 {
		c.SemanticWeight = def.SemanticWeight
		c.KeywordWeight = def.KeywordWeight
	}
	if c.CandidatePool <= 0 {
		c.CandidatePool = def.CandidatePool
	}
	if c.KeywordPool <= 0 {
		c.KeywordPool = def.KeywordPool
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = def.DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = def.MaxLimit
	}
	if c.MaxQueryLength <= 0 {
		c.MaxQueryLength = def.MaxQueryLength
	}
	if c.Rerank.PrimaryField == "" {
		c.Rerank = DefaultRerankConfig()
	}
	return c
}

// Engine orchestrates one search request end to end: embedding, the two
// retrieval passes, fusion, filtering and reranking.
type Engine struct {
	provider IndexProvider
	embedder QueryEmbedder
	cfg      Config
	logger   *slog.Logger
	metrics  Metrics
	breaker  *fcerrors.CircuitBreaker
	cache    *responseCache

	facetMu  sync.Mutex
	facetGen uint64
	facets   *FilterOptions
}

// EngineOption configures optional engine behavior.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a telemetry sink.
func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a search engine.
func NewEngine(provider IndexProvider, embedder QueryEmbedder, cfg Config, opts ...EngineOption) (*Engine, error) {
	if provider == nil || embedder == nil {
		return nil, ErrNilDependency
	}

	e := &Engine{
		provider: provider,
		embedder: embedder,
		cfg:      cfg.withDefaults(),
		logger:   slog.Default(),
		breaker: fcerrors.NewCircuitBreaker("embedding",
			fcerrors.WithMaxFailures(5),
			fcerrors.WithResetTimeout(30*time.Second)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = newResponseCache(e.cfg.CacheSize)
	return e, nil
}

// Search runs one query and returns ranked results.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fcerrors.New(fcerrors.ErrCodeQueryEmpty, "search query is empty", nil)
	}
	if utf8.RuneCountInString(query) > e.cfg.MaxQueryLength {
		return nil, fcerrors.New(fcerrors.ErrCodeQueryTooLong, "search query exceeds maximum length", nil)
	}

	ix := e.provider.Snapshot()
	if ix == nil {
		return nil, fcerrors.New(fcerrors.ErrCodeIndexNotReady, "case index not loaded", ErrIndexNotReady)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}
	opts.Limit = limit

	if resp, ok := e.cache.get(ix.Generation(), query, opts); ok {
		e.record(Event{Query: query, State: resp.State, ResultCount: len(resp.Results), Latency: time.Since(start), CacheHit: true})
		return resp, nil
	}

	queryVec, keyword, embedErr := e.gatherSignals(ctx, ix, query)

	state := determineState(queryVec, len(keyword))

	var fused []store.Scored
	switch state {
	case StateSemantic:
		semantic := semanticSearch(ix, queryVec, e.cfg.CandidatePool)
		fused = fuse(semantic, keyword, e.cfg.SemanticWeight, e.cfg.KeywordWeight, e.cfg.CandidatePool)
	case StateLexicalOnly:
		fused = keyword
	case StateNoSignal:
		fused = nil
	}

	filtered := applyFilters(ix, fused, opts.Filters)
	results := rerank(ix, filtered, queryVec, state, e.cfg.Rerank)

	if len(results) > limit {
		results = results[:limit]
	}
	corpus := ix.Corpus()
	for i := range results {
		results[i].Case = corpus.Case(results[i].Index)
		results[i].Score = round4(results[i].Score)
		for f, s := range results[i].FieldScores {
			results[i].FieldScores[f] = round4(s)
		}
	}

	resp := &Response{
		Query:      query,
		TotalCases: ix.Len(),
		Results:    results,
		Filters:    opts.Filters,
		State:      state,
	}
	if embedErr != nil {
		resp.Message = "semantic ranking unavailable; results ranked by keyword match only"
		e.logger.Warn("query embedding failed",
			"error", embedErr,
			"code", fcerrors.GetCode(embedErr),
			"state", string(state))
	}

	// A degraded response reflects a transient embedder failure; caching
	// it would keep serving lexical-only answers after the backend recovers.
	if embedErr == nil {
		e.cache.put(ix.Generation(), query, opts, resp)
	}
	e.record(Event{Query: query, State: state, ResultCount: len(results), Latency: time.Since(start)})
	e.logger.Debug("search completed",
		"state", string(state),
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

// gatherSignals runs the embedding call and the keyword pass in
// parallel. Embedding failures degrade the request instead of failing
// it, so the only returned values are the signals themselves.
func (e *Engine) gatherSignals(ctx context.Context, ix *store.Index, query string) ([]float32, []store.Scored, error) {
	var (
		queryVec []float32
		keyword  []store.Scored
		embedErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !e.breaker.Allow() {
			embedErr = fcerrors.New(fcerrors.ErrCodeNetworkUnavailable,
				"embedding backend circuit open", nil)
			return nil
		}
		vec, err := e.embedder.EmbedQuery(gctx, query)
		if err != nil {
			if fcerrors.IsRetryable(err) {
				e.breaker.RecordFailure()
			}
			embedErr = err
			return nil
		}
		e.breaker.RecordSuccess()
		queryVec = vec
		return nil
	})
	g.Go(func() error {
		keyword = keywordSearch(ix, query, e.cfg.KeywordPool)
		return nil
	})
	_ = g.Wait()

	return queryVec, keyword, embedErr
}

// FilterOptions returns the facet values and hierarchies of the current
// corpus. The result is cached per index generation.
func (e *Engine) FilterOptions() (*FilterOptions, error) {
	ix := e.provider.Snapshot()
	if ix == nil {
		return nil, fcerrors.New(fcerrors.ErrCodeIndexNotReady, "case index not loaded", ErrIndexNotReady)
	}

	e.facetMu.Lock()
	defer e.facetMu.Unlock()
	if e.facets != nil && e.facetGen == ix.Generation() {
		return e.facets, nil
	}

	opts := BuildFilterOptions(ix)
	e.facets = &opts
	e.facetGen = ix.Generation()
	return e.facets, nil
}

// Health describes the engine's readiness.
type Health struct {
	IndexReady     bool      `json:"index_ready"`
	Cases          int       `json:"cases"`
	Generation     uint64    `json:"generation"`
	LoadedAt       time.Time `json:"loaded_at,omitzero"`
	Dimension      int       `json:"dimension"`
	EmbeddingModel string    `json:"embedding_model"`
	EmbedderReady  bool      `json:"embedder_ready"`
}

// Status reports index and embedder readiness. Embedder readiness is a
// cheap local check: a backend is configured and the circuit is not
// open. No network probe happens here.
func (e *Engine) Status() Health {
	h := Health{
		EmbeddingModel: e.embedder.ModelName(),
		EmbedderReady:  e.embedder.ModelName() != "none" && e.breaker.Allow(),
	}
	if ix := e.provider.Snapshot(); ix != nil {
		h.IndexReady = true
		h.Cases = ix.Len()
		h.Generation = ix.Generation()
		h.LoadedAt = ix.LoadedAt()
		h.Dimension = ix.Dimension()
	}
	return h
}

func (e *Engine) record(ev Event) {
	if e.metrics != nil {
		e.metrics.RecordSearch(ev)
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
