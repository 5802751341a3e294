package embed

import (
	"fmt"
	"strings"
	"time"

	"github.com/fascase/fascase/internal/config"
)

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	// ProviderGemini is the Gemini REST backend.
	ProviderGemini ProviderType = "gemini"
	// ProviderStatic is the deterministic offline embedder.
	ProviderStatic ProviderType = "static"
	// ProviderNone disables embedding; requests run keyword-only.
	ProviderNone ProviderType = "none"
)

// ParseProvider normalizes a provider string.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini":
		return ProviderGemini
	case "static":
		return ProviderStatic
	default:
		return ProviderNone
	}
}

// NewEmbedder builds the configured provider, wrapping it in the query
// LRU cache. The gemini provider needs GEMINI_API_KEY in the environment.
func NewEmbedder(cfg config.EmbeddingsConfig) (Embedder, error) {
	var (
		inner Embedder
		err   error
	)
	switch ParseProvider(cfg.Provider) {
	case ProviderGemini:
		timeout := DefaultTimeout
		if d, parseErr := time.ParseDuration(cfg.Timeout); parseErr == nil && d > 0 {
			timeout = d
		}
		inner, err = NewGeminiEmbedder(config.APIKey(), cfg.Model, cfg.Dimensions,
			WithTimeout(timeout), WithBatchSize(cfg.BatchSize))
		if err != nil {
			return nil, fmt.Errorf("gemini embedder: %w", err)
		}
	case ProviderStatic:
		inner = NewStaticEmbedder()
	default:
		return NewNoneEmbedder(), nil
	}

	return NewCachedEmbedder(inner, cfg.QueryCacheSize), nil
}
