package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

// StaticDimensions is the vector size of the deterministic embedder.
const StaticDimensions = 256

// Feature weights for vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// StaticEmbedder generates deterministic hash-based embeddings with no
// network dependency. Retrieval quality is far below the real model; it
// exists for tests and offline development.
type StaticEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

// NewStaticEmbedder creates a static embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Embed generates the embedding for a single text.
func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, StaticDimensions), nil
	}

	return normalizeVector(e.generateVector(trimmed)), nil
}

// EmbedQuery is identical to Embed: hashing has no task-type weighting.
func (e *StaticEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// generateVector hashes word tokens and character trigrams into a fixed
// number of buckets.
func (e *StaticEmbedder) generateVector(text string) []float32 {
	vector := make([]float32, StaticDimensions)

	for _, token := range staticTokens(text) {
		vector[hashToIndex(token)] += tokenWeight
	}

	normalized := normalizeForNgrams(text)
	for _, ngram := range extractNgrams(normalized, ngramSize) {
		vector[hashToIndex(ngram)] += ngramWeight
	}

	return vector
}

// staticTokens lowercases and splits on non-letter/digit runes. The
// corpus is mostly Russian, so splitting must be Unicode-aware.
func staticTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalizeForNgrams collapses runs of separators to single spaces.
func normalizeForNgrams(text string) string {
	return strings.Join(staticTokens(text), " ")
}

// extractNgrams returns the rune n-grams of text.
func extractNgrams(text string, n int) []string {
	runes := []rune(text)
	if len(runes) < n {
		return nil
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

// hashToIndex maps a feature string to a vector bucket.
func hashToIndex(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(StaticDimensions))
}

// Dimensions returns the embedding dimension.
func (e *StaticEmbedder) Dimensions() int {
	return StaticDimensions
}

// ModelName returns the model identifier.
func (e *StaticEmbedder) ModelName() string {
	return "static-fnv-256"
}

// Available always reports true: the static embedder has no backend.
func (e *StaticEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close marks the embedder closed.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
