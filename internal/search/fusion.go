package search

import (
	"sort"

	"github.com/fascase/fascase/internal/store"
)

// fuse merges the semantic and keyword candidate lists into one ranked
// pool by weighted sum: a case appearing in either list accumulates
// wSemantic×semanticScore + wKeyword×keywordScore, with the absent side
// contributing zero. The output sorts by fused score descending with
// ascending case index breaking ties, truncated to pool entries.
func fuse(semantic, keyword []store.Scored, wSemantic, wKeyword float64, pool int) []store.Scored {
	if pool <= 0 || (len(semantic) == 0 && len(keyword) == 0) {
		return nil
	}

	scores := make(map[int]float64, len(semantic)+len(keyword))
	for _, s := range semantic {
		scores[s.Index] += wSemantic * s.Score
	}
	for _, k := range keyword {
		scores[k.Index] += wKeyword * k.Score
	}

	fused := make([]store.Scored, 0, len(scores))
	for idx, score := range scores {
		fused = append(fused, store.Scored{Index: idx, Score: score})
	}
	sort.Slice(fused, func(a, b int) bool {
		if fused[a].Score != fused[b].Score {
			return fused[a].Score > fused[b].Score
		}
		return fused[a].Index < fused[b].Index
	})

	if pool < len(fused) {
		fused = fused[:pool]
	}
	return fused
}
