// Package telemetry aggregates local search usage metrics: signal-state
// counts, frequent query terms, zero-result queries and a latency
// histogram. All data stays on the host; nothing is reported anywhere.
package telemetry

import (
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fascase/fascase/internal/search"
)

// LatencyBucket is one histogram bucket of end-to-end search latency.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyBucketOrder lists the buckets from fastest to slowest, for
// stable display.
var LatencyBucketOrder = []LatencyBucket{BucketP10, BucketP50, BucketP100, BucketP500, BucketP1000}

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// ringBuffer is a fixed-capacity FIFO buffer.
type ringBuffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &ringBuffer[T]{items: make([]T, capacity), capacity: capacity}
}

func (b *ringBuffer[T]) add(item T) {
	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// snapshot returns the items oldest first.
func (b *ringBuffer[T]) snapshot() []T {
	out := make([]T, b.size)
	if b.size < b.capacity {
		copy(out, b.items[:b.size])
		return out
	}
	copy(out, b.items[b.head:])
	copy(out[b.capacity-b.head:], b.items[:b.head])
	return out
}

// minTermLen filters noise words; Russian legal vocabulary rarely
// carries signal below four letters.
const minTermLen = 4

// ExtractTerms returns the lowercased query terms worth counting.
func ExtractTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var terms []string
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTermLen {
			terms = append(terms, f)
		}
	}
	return terms
}

// TermCount pairs a query term with its frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is an immutable view of the collected metrics.
type Snapshot struct {
	StateCounts         map[search.SignalState]int64 `json:"state_counts"`
	TopTerms            []TermCount                  `json:"top_terms"`
	ZeroResultQueries   []string                     `json:"zero_result_queries"`
	LatencyDistribution map[LatencyBucket]int64      `json:"latency_distribution"`
	TotalSearches       int64                        `json:"total_searches"`
	ZeroResultCount     int64                        `json:"zero_result_count"`
	CacheHitCount       int64                        `json:"cache_hit_count"`
	Since               time.Time                    `json:"since"`
}

// ZeroResultPercentage returns the share of searches with no results.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalSearches == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalSearches) * 100
}

// CacheHitRate returns the share of searches served from the cache.
func (s *Snapshot) CacheHitRate() float64 {
	if s.TotalSearches == 0 {
		return 0
	}
	return float64(s.CacheHitCount) / float64(s.TotalSearches)
}

// MetricsStore persists aggregated metrics between runs.
type MetricsStore interface {
	SaveStateCounts(date string, counts map[search.SignalState]int64) error
	GetStateCounts(from, to string) (map[search.SignalState]int64, error)
	UpsertTermCounts(terms map[string]int64) error
	GetTopTerms(limit int) ([]TermCount, error)
	AddZeroResultQuery(query string, timestamp time.Time) error
	GetZeroResultQueries(limit int) ([]string, error)
	SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error
	GetLatencyCounts(from, to string) (map[LatencyBucket]int64, error)
	Close() error
}

// Config tunes the collector's in-memory capacities.
type Config struct {
	TopTermsCapacity    int
	ZeroResultsCapacity int
	// FlushInterval is how often aggregates are written to the store.
	// Zero disables the background flush.
	FlushInterval time.Duration
}

// DefaultConfig returns the collector defaults.
func DefaultConfig() Config {
	return Config{
		TopTermsCapacity:    100,
		ZeroResultsCapacity: 100,
		FlushInterval:       60 * time.Second,
	}
}

// Collector accumulates search events in memory and periodically flushes
// daily aggregates to its store. Safe for concurrent use; Record never
// blocks on I/O.
type Collector struct {
	mu sync.RWMutex

	states          map[search.SignalState]int64
	topTerms        *lru.Cache[string, int64]
	zeroResults     *ringBuffer[string]
	latencies       map[LatencyBucket]int64
	totalSearches   int64
	zeroResultCount int64
	cacheHitCount   int64
	startTime       time.Time

	// Already-persisted portions of the cumulative counters, so each
	// flush writes only the delta since the previous one.
	flushedStates    map[search.SignalState]int64
	flushedTerms     map[string]int64
	flushedLatencies map[LatencyBucket]int64
	pendingZero      []zeroQuery

	store       MetricsStore
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closed      bool
}

// NewCollector creates a collector. A nil store keeps metrics in memory
// only.
func NewCollector(store MetricsStore, cfg Config) *Collector {
	if cfg.TopTermsCapacity <= 0 {
		cfg.TopTermsCapacity = 100
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = 100
	}

	topTerms, _ := lru.New[string, int64](cfg.TopTermsCapacity)
	c := &Collector{
		states:           make(map[search.SignalState]int64),
		topTerms:         topTerms,
		zeroResults:      newRingBuffer[string](cfg.ZeroResultsCapacity),
		latencies:        make(map[LatencyBucket]int64),
		startTime:        time.Now(),
		flushedStates:    make(map[search.SignalState]int64),
		flushedTerms:     make(map[string]int64),
		flushedLatencies: make(map[LatencyBucket]int64),
		store:            store,
		stopCh:           make(chan struct{}),
	}

	if cfg.FlushInterval > 0 && store != nil {
		c.flushTicker = time.NewTicker(cfg.FlushInterval)
		go c.flushLoop()
	}
	return c
}

func (c *Collector) flushLoop() {
	for {
		select {
		case <-c.flushTicker.C:
			_ = c.Flush()
		case <-c.stopCh:
			return
		}
	}
}

// RecordSearch captures one completed search.
func (c *Collector) RecordSearch(ev search.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.states[ev.State]++
	c.totalSearches++
	c.latencies[LatencyToBucket(ev.Latency)]++

	if ev.CacheHit {
		c.cacheHitCount++
		// Cached responses repeat an already-counted query; terms and
		// zero-result tracking would double-count.
		return
	}

	for _, term := range ExtractTerms(ev.Query) {
		count, _ := c.topTerms.Get(term)
		c.topTerms.Add(term, count+1)
	}

	if ev.ResultCount == 0 {
		c.zeroResults.add(ev.Query)
		c.zeroResultCount++
		c.pendingZero = append(c.pendingZero, zeroQuery{query: ev.Query, at: time.Now()})
	}
}

type zeroQuery struct {
	query string
	at    time.Time
}

// Snapshot returns the current metrics.
func (c *Collector) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	states := make(map[search.SignalState]int64, len(c.states))
	for k, v := range c.states {
		states[k] = v
	}

	terms := make([]TermCount, 0, c.topTerms.Len())
	for _, key := range c.topTerms.Keys() {
		if count, ok := c.topTerms.Peek(key); ok {
			terms = append(terms, TermCount{Term: key, Count: count})
		}
	}
	sortTermCounts(terms)

	latencies := make(map[LatencyBucket]int64, len(c.latencies))
	for k, v := range c.latencies {
		latencies[k] = v
	}

	return &Snapshot{
		StateCounts:         states,
		TopTerms:            terms,
		ZeroResultQueries:   c.zeroResults.snapshot(),
		LatencyDistribution: latencies,
		TotalSearches:       c.totalSearches,
		ZeroResultCount:     c.zeroResultCount,
		CacheHitCount:       c.cacheHitCount,
		Since:               c.startTime,
	}
}

// Flush persists the aggregates accumulated since the previous flush.
// Safe without a store.
func (c *Collector) Flush() error {
	if c.store == nil {
		return nil
	}

	c.mu.Lock()
	stateDelta := make(map[search.SignalState]int64)
	for k, v := range c.states {
		if d := v - c.flushedStates[k]; d > 0 {
			stateDelta[k] = d
			c.flushedStates[k] = v
		}
	}

	termDelta := make(map[string]int64)
	for _, key := range c.topTerms.Keys() {
		if count, ok := c.topTerms.Peek(key); ok {
			if d := count - c.flushedTerms[key]; d > 0 {
				termDelta[key] = d
				c.flushedTerms[key] = count
			}
		}
	}

	latencyDelta := make(map[LatencyBucket]int64)
	for k, v := range c.latencies {
		if d := v - c.flushedLatencies[k]; d > 0 {
			latencyDelta[k] = d
			c.flushedLatencies[k] = v
		}
	}

	pending := c.pendingZero
	c.pendingZero = nil
	c.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	if err := c.store.SaveStateCounts(today, stateDelta); err != nil {
		return err
	}
	if err := c.store.UpsertTermCounts(termDelta); err != nil {
		return err
	}
	if err := c.store.SaveLatencyCounts(today, latencyDelta); err != nil {
		return err
	}
	for _, zq := range pending {
		if err := c.store.AddZeroResultQuery(zq.query, zq.at); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and stops the background loop.
func (c *Collector) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.flushTicker != nil {
		c.flushTicker.Stop()
		close(c.stopCh)
	}
	return c.Flush()
}

func sortTermCounts(terms []TermCount) {
	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			if terms[j].Count > terms[i].Count {
				terms[i], terms[j] = terms[j], terms[i]
			}
		}
	}
}
