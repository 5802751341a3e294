package search

import (
	"github.com/fascase/fascase/internal/store"
)

// semanticSearch scores every case by cosine similarity between the query
// vector and the primary field table. An absent table or a degenerate
// query vector yields an empty result, which is a normal state rather
// than an error. The query is defensively re-normalized; stored rows are
// unit length since load.
func semanticSearch(ix *store.Index, queryVec []float32, topK int) []store.Scored {
	table := ix.Primary()
	if table == nil || len(queryVec) == 0 || store.IsZeroVector(queryVec) {
		return nil
	}

	unit := make([]float32, len(queryVec))
	copy(unit, queryVec)
	if degenerate := store.Normalize(unit); degenerate {
		return nil
	}

	return table.TopK(unit, topK)
}
