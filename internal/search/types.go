// Package search implements the retrieval core: keyword and semantic
// matching over the case corpus, score fusion, facet filtering, per-field
// reranking and facet-hierarchy assembly.
package search

import (
	"errors"

	"github.com/fascase/fascase/internal/store"
)

// ErrIndexNotReady is returned when no index snapshot has been loaded yet.
var ErrIndexNotReady = errors.New("case index not loaded")

// ErrNilDependency is returned when a required engine dependency is nil.
var ErrNilDependency = errors.New("nil dependency")

// SignalState names the scoring signals available to one request. It is
// selected once after the embedding call and threaded through fusion and
// reranking instead of being re-detected piecemeal.
type SignalState string

const (
	// StateSemantic means a usable query vector exists.
	StateSemantic SignalState = "semantic"
	// StateLexicalOnly means no query vector but at least one keyword hit.
	StateLexicalOnly SignalState = "lexical-only"
	// StateNoSignal means neither a query vector nor keyword hits.
	StateNoSignal SignalState = "no-signal"
)

// Filters is the typed set of optional facet constraints. Empty slices
// mean the category is inactive. Within a category the values are OR'd;
// active categories are AND'd.
type Filters struct {
	Years      []int    `json:"year,omitempty"`
	Regions    []string `json:"region,omitempty"`
	Industries []string `json:"industry,omitempty"`
	Statutes   []string `json:"article,omitempty"`
}

// Empty reports whether no constraint category is active.
func (f Filters) Empty() bool {
	return len(f.Years) == 0 && len(f.Regions) == 0 && len(f.Industries) == 0 && len(f.Statutes) == 0
}

// Options controls one search request.
type Options struct {
	// Limit is the number of results to return. 0 means the configured
	// default.
	Limit   int
	Filters Filters
}

// Result is one ranked case in a search response.
type Result struct {
	Index       int                `json:"index"`
	Score       float64            `json:"score"`
	FieldScores map[string]float64 `json:"field_scores"`
	Case        *store.Case        `json:"-"`
}

// Response is the full outcome of one search request.
type Response struct {
	Query      string      `json:"query"`
	TotalCases int         `json:"total_cases"`
	Results    []Result    `json:"results"`
	Filters    Filters     `json:"filters"`
	State      SignalState `json:"state"`

	// Message surfaces degradations (embedding backend unavailable) to
	// the caller without failing the request.
	Message string `json:"message,omitempty"`
}
