package search

import (
	"math"
	"sort"

	"github.com/fascase/fascase/internal/store"
)

// RerankConfig names the per-field weights for the rerank pass. Every
// configured weight enters the normalization denominator whether or not
// the field has a loaded vector table. PrimaryField falls back to the
// fused score when its table is missing.
type RerankConfig struct {
	PrimaryField string
	Fields       map[string]float64
}

// DefaultRerankConfig returns the built-in field weights. The agency's
// own reasoning carries the most signal; raw ad text the least.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		PrimaryField: "FAS_arguments",
		Fields: map[string]float64{
			"FAS_arguments":     1.0,
			"violation_summary": 0.8,
			"ad_content_cited":  0.7,
			"ad_description":    0.6,
			"legal_provisions":  0.5,
		},
	}
}

// rerank recomputes a finer-grained score for the filtered candidates.
// The scoring path follows the request's signal state:
//
//   - semantic: weighted per-field cosine similarities, each mapped into
//     [0,1], summed and rescaled by the total configured weight;
//   - lexical-only: the fused keyword score normalized by the candidate
//     set's maximum, reported as the single "keyword" component;
//   - no-signal: zero scores, candidate order preserved.
//
// Output sorts by score descending; ties keep the incoming fused order.
func rerank(ix *store.Index, candidates []store.Scored, queryVec []float32, state SignalState, cfg RerankConfig) []Result {
	switch state {
	case StateLexicalOnly:
		return rerankKeywordOnly(candidates)
	case StateSemantic:
		return rerankByFields(ix, candidates, queryVec, cfg)
	default:
		return rerankNoSignal(candidates)
	}
}

// rerankKeywordOnly normalizes fused keyword scores into [0,1] by the
// maximum score in the candidate set.
func rerankKeywordOnly(candidates []store.Scored) []Result {
	maxScore := 0.0
	for _, c := range candidates {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	if maxScore <= 0 {
		maxScore = 1
	}

	out := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		score := c.Score / maxScore
		out = append(out, Result{
			Index:       c.Index,
			Score:       score,
			FieldScores: map[string]float64{"keyword": score},
		})
	}
	sortResults(out)
	return out
}

// rerankNoSignal zeroes every score and keeps the fused order.
func rerankNoSignal(candidates []store.Scored) []Result {
	out := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Result{
			Index:       c.Index,
			Score:       0,
			FieldScores: map[string]float64{},
		})
	}
	return out
}

// rerankByFields computes the weighted per-field cosine score. Fields
// without a table contribute zero (the primary field falls back to the
// rescaled fused score) but their weights still count toward the
// denominator, so missing tables depress rather than inflate scores.
func rerankByFields(ix *store.Index, candidates []store.Scored, queryVec []float32, cfg RerankConfig) []Result {
	unit := make([]float32, len(queryVec))
	copy(unit, queryVec)
	if degenerate := store.Normalize(unit); degenerate {
		return rerankNoSignal(candidates)
	}

	fields := make([]string, 0, len(cfg.Fields))
	totalWeight := 0.0
	for f, w := range cfg.Fields {
		fields = append(fields, f)
		totalWeight += w
	}
	sort.Strings(fields)

	out := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		fieldScores := make(map[string]float64, len(fields))
		weighted := 0.0
		for _, field := range fields {
			table := ix.Table(field)
			var fs float64
			switch {
			case table != nil && !table.IsZero(cand.Index):
				fs = normalizeScore(table.Similarity(cand.Index, unit))
			case table != nil:
				// No vector data for this case and field.
				fs = 0
			case field == cfg.PrimaryField:
				// Table missing entirely; the primary field keeps a
				// usable signal from the fused score.
				fs = normalizeScore(cand.Score)
			default:
				continue
			}
			fieldScores[field] = fs
			weighted += cfg.Fields[field] * fs
		}

		score := 0.0
		if totalWeight > 0 {
			score = clamp01(weighted / totalWeight)
		}
		out = append(out, Result{
			Index:       cand.Index,
			Score:       score,
			FieldScores: fieldScores,
		})
	}
	sortResults(out)
	return out
}

// sortResults orders by score descending; the stable sort keeps the
// original fused order for ties.
func sortResults(results []Result) {
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
}

// normalizeScore maps a raw cosine similarity from [-1,1] into [0,1] by
// clamped linear rescaling. Non-finite inputs resolve to zero.
func normalizeScore(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	return clamp01((raw + 1) / 2)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
