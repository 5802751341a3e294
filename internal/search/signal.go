package search

import (
	"github.com/fascase/fascase/internal/store"
)

// determineState selects the request's scoring path once, after the
// embedding call and keyword scan have both completed.
func determineState(queryVec []float32, keywordHits int) SignalState {
	if len(queryVec) > 0 && !store.IsZeroVector(queryVec) {
		return StateSemantic
	}
	if keywordHits > 0 {
		return StateLexicalOnly
	}
	return StateNoSignal
}
