package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fascase/fascase/internal/store"
)

// phrasePoints is awarded per field containing the whole query phrase;
// tokenPoints per distinct long token per field.
const (
	phrasePoints = 10
	tokenPoints  = 1
	minTokenLen  = 4
)

// keywordSearch scores every case against the lowercased query by
// substring matching over the searchable fields: a field containing the
// full phrase earns phrasePoints, and each distinct query token of at
// least minTokenLen runes adds tokenPoints per field it appears in.
// Zero-scoring cases are dropped. Results order by score descending with
// ascending case index breaking ties, truncated to topK.
func keywordSearch(ix *store.Index, query string, topK int) []store.Scored {
	phrase := strings.ToLower(strings.TrimSpace(query))
	if phrase == "" || topK <= 0 {
		return nil
	}
	tokens := queryTokens(phrase)

	corpus := ix.Corpus()
	var hits []store.Scored
	for i := 0; i < corpus.Len(); i++ {
		score := 0
		for _, field := range store.SearchFields() {
			text := corpus.SearchText(field)[i]
			if text == "" {
				continue
			}
			if strings.Contains(text, phrase) {
				score += phrasePoints
			}
			for _, tok := range tokens {
				if strings.Contains(text, tok) {
					score += tokenPoints
				}
			}
		}
		if score > 0 {
			hits = append(hits, store.Scored{Index: i, Score: float64(score)})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].Index < hits[b].Index
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}

// queryTokens splits a lowercased query into deduplicated tokens of at
// least minTokenLen runes. A token is a maximal run of letters, digits
// and underscores.
func queryTokens(phrase string) []string {
	fields := strings.FieldsFunc(phrase, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLen {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}
