package search

import (
	"strings"

	"github.com/fascase/fascase/internal/citation"
	"github.com/fascase/fascase/internal/store"
)

// applyFilters drops candidates failing any active constraint category.
// Within a category the requested values are OR'd. Cases with a missing
// or malformed field fail only the category that reads that field.
func applyFilters(ix *store.Index, candidates []store.Scored, f Filters) []store.Scored {
	if f.Empty() {
		return candidates
	}

	corpus := ix.Corpus()

	years := intSet(f.Years)
	regions := stringSet(f.Regions)
	industries := expandIndustries(corpus, f.Industries)
	statutes := parseFilterCitations(f.Statutes)

	out := make([]store.Scored, 0, len(candidates))
	for _, cand := range candidates {
		c := corpus.Case(cand.Index)

		if len(years) > 0 {
			y := corpus.Year(cand.Index)
			if y == 0 {
				continue
			}
			if _, ok := years[y]; !ok {
				continue
			}
		}

		if len(regions) > 0 {
			if c.FASDivision == nil {
				continue
			}
			if _, ok := regions[*c.FASDivision]; !ok {
				continue
			}
		}

		if len(f.Industries) > 0 {
			if c.DefendantIndustry == nil {
				continue
			}
			if _, ok := industries[*c.DefendantIndustry]; !ok {
				continue
			}
		}

		if len(f.Statutes) > 0 {
			if !anyCitationMatches(statutes, corpus.Citations(cand.Index)) {
				continue
			}
		}

		out = append(out, cand)
	}
	return out
}

// expandIndustries resolves requested industry display categories to the
// set of raw stored values they cover: the category itself plus every
// stored path that descends from it.
func expandIndustries(corpus *store.Corpus, requested []string) map[string]struct{} {
	expanded := make(map[string]struct{}, len(requested))
	if len(requested) == 0 {
		return expanded
	}

	for _, r := range requested {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		expanded[r] = struct{}{}
		prefix := r + "/"
		for _, c := range corpus.Cases() {
			if c.DefendantIndustry == nil {
				continue
			}
			if strings.HasPrefix(*c.DefendantIndustry, prefix) {
				expanded[*c.DefendantIndustry] = struct{}{}
			}
		}
	}
	return expanded
}

// parseFilterCitations parses the requested statute filter values.
// Values that are not citations are dropped: they can never match a
// stored citation under the typed rule.
func parseFilterCitations(values []string) []citation.Citation {
	out := make([]citation.Citation, 0, len(values))
	for _, v := range values {
		c, err := citation.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// anyCitationMatches reports whether any filter citation matches any
// stored citation under the specificity rule.
func anyCitationMatches(filters []citation.Citation, stored []citation.Citation) bool {
	for _, f := range filters {
		for _, s := range stored {
			if f.Matches(s) {
				return true
			}
		}
	}
	return false
}

func intSet(vals []int) map[int]struct{} {
	m := make(map[int]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

func stringSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
