package preflight

import (
	"context"
	"fmt"

	"github.com/fascase/fascase/internal/config"
)

// CheckAPIKey verifies credentials exist for the configured provider.
// Only the gemini provider needs a key.
func (c *Checker) CheckAPIKey() CheckResult {
	result := CheckResult{Name: "api_key", Required: false}

	if c.cfg.Embeddings.Provider != "gemini" {
		result.Status = StatusPass
		result.Message = fmt.Sprintf("provider %q needs no API key", c.cfg.Embeddings.Provider)
		return result
	}

	if config.APIKey() == "" {
		result.Status = StatusFail
		result.Required = true
		result.Message = "GEMINI_API_KEY is not set"
		result.Details = "export GEMINI_API_KEY or put it in .env; see `fascase config path`"
		return result
	}

	result.Status = StatusPass
	result.Message = "GEMINI_API_KEY is set"
	return result
}

// CheckEmbedderReachable probes the embedding backend with a one-token
// request. Skipped offline or when no embedder was supplied.
func (c *Checker) CheckEmbedderReachable(ctx context.Context) CheckResult {
	result := CheckResult{Name: "embedder", Required: false}

	if c.offline {
		result.Status = StatusWarn
		result.Message = "skipped (offline mode)"
		return result
	}
	if c.embedder == nil {
		result.Status = StatusWarn
		result.Message = "no embedding backend configured; searches run keyword-only"
		return result
	}

	if !c.embedder.Available(ctx) {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("embedding backend %s is unreachable", c.embedder.ModelName())
		result.Details = "searches degrade to keyword-only until it recovers"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("embedding backend %s responded", c.embedder.ModelName())
	return result
}
