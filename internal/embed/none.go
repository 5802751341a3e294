package embed

import (
	"context"
	"errors"
)

// ErrEmbeddingDisabled is returned by the none provider's embed calls.
var ErrEmbeddingDisabled = errors.New("embedding provider disabled")

// NoneEmbedder is the disabled provider: every request runs keyword-only.
// It exists so the engine can treat "no embedding configured" as an
// ordinary unavailable backend rather than a special case.
type NoneEmbedder struct{}

// NewNoneEmbedder creates the disabled provider.
func NewNoneEmbedder() *NoneEmbedder {
	return &NoneEmbedder{}
}

func (*NoneEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrEmbeddingDisabled
}

func (*NoneEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, ErrEmbeddingDisabled
}

func (*NoneEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrEmbeddingDisabled
}

func (*NoneEmbedder) Dimensions() int { return 0 }

func (*NoneEmbedder) ModelName() string { return "none" }

func (*NoneEmbedder) Available(context.Context) bool { return false }

func (*NoneEmbedder) Close() error { return nil }
