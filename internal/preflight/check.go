// Package preflight validates the environment before fascase serves or
// embeds: dataset files, embedding credentials and backend reachability,
// disk space and log-directory permissions. `fascase doctor` runs every
// check and reports the results.
package preflight

import (
	"context"

	"github.com/fascase/fascase/internal/config"
	"github.com/fascase/fascase/internal/embed"
)

// CheckStatus is the outcome of one check.
type CheckStatus int

const (
	// StatusPass indicates the check passed.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical problem.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// CheckResult holds the result of a single check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical reports whether a required check failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker runs the preflight checks.
type Checker struct {
	cfg      *config.Config
	embedder embed.Embedder
	offline  bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithOffline skips checks that need network access.
func WithOffline(offline bool) Option {
	return func(c *Checker) {
		c.offline = offline
	}
}

// WithEmbedder supplies the embedder to probe. Without one the
// reachability check is skipped.
func WithEmbedder(e embed.Embedder) Option {
	return func(c *Checker) {
		c.embedder = e
	}
}

// New creates a Checker for the given configuration.
func New(cfg *config.Config, opts ...Option) *Checker {
	c := &Checker{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check in order.
func (c *Checker) RunAll(ctx context.Context) []CheckResult {
	results := []CheckResult{
		c.CheckCorpus(),
	}
	results = append(results, c.CheckVectorTables()...)
	results = append(results,
		c.CheckAPIKey(),
		c.CheckEmbedderReachable(ctx),
		c.CheckDiskSpace(c.cfg.Data.Dir),
		c.CheckLogDirWritable(),
	)
	return results
}

// HasCriticalFailures reports whether any required check failed.
func HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}
