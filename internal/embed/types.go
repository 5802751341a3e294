// Package embed provides the embedding providers fascase consumes: the
// Gemini REST backend, a deterministic offline hash embedder, and a
// disabled provider for keyword-only deployments.
package embed

import (
	"context"
	"math"
	"time"
)

// Task types distinguish query embeddings from document embeddings; the
// model weights them differently.
const (
	TaskQuery    = "RETRIEVAL_QUERY"
	TaskDocument = "RETRIEVAL_DOCUMENT"
)

const (
	// MaxBatchSize is the Gemini batchEmbedContents request limit.
	MaxBatchSize = 100

	// DefaultBatchSize is the default texts per batch call.
	DefaultBatchSize = 100

	// DefaultTimeout bounds a single embedding call.
	DefaultTimeout = 60 * time.Second

	// DefaultDimensions is the output dimensionality requested from the
	// model and the dimension of the stored vector tables.
	DefaultDimensions = 768

	// DefaultQueryCacheSize is the default LRU capacity for query
	// embeddings.
	DefaultQueryCacheSize = 512
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates a document embedding for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery generates a query embedding for one text. Query and
	// document task types differ in the model's internal weighting.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates document embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks whether the backend can serve requests.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector scales v to unit length. Zero vectors pass through
// unchanged.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
