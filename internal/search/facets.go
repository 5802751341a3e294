package search

import (
	"sort"

	"github.com/fascase/fascase/internal/citation"
	"github.com/fascase/fascase/internal/facet"
	"github.com/fascase/fascase/internal/store"
)

// FilterOptions is everything the facet-discovery endpoint returns: flat
// distinct value lists for each category plus the three count-annotated
// hierarchies.
type FilterOptions struct {
	Years             []int        `json:"years"`
	Regions           []string     `json:"regions"`
	RegionHierarchy   []facet.Node `json:"regions_hierarchy"`
	Industries        []string     `json:"industries"`
	IndustryHierarchy []facet.Node `json:"industries_hierarchy"`
	Articles          []string     `json:"articles"`
	ArticleHierarchy  []facet.Node `json:"articles_hierarchy"`
}

// BuildFilterOptions assembles the facet values and hierarchies from the
// full corpus. It is query-independent and rebuilds identically for an
// unchanged index.
func BuildFilterOptions(ix *store.Index) FilterOptions {
	corpus := ix.Corpus()

	yearSet := map[int]struct{}{}
	regionSet := map[string]struct{}{}
	industrySet := map[string]struct{}{}
	articleSet := map[string]struct{}{}

	var divisions, industries, articleRefs []string

	for i := 0; i < corpus.Len(); i++ {
		c := corpus.Case(i)

		if y := corpus.Year(i); y > 0 {
			yearSet[y] = struct{}{}
		}
		if c.FASDivision != nil && *c.FASDivision != "" {
			regionSet[*c.FASDivision] = struct{}{}
			divisions = append(divisions, *c.FASDivision)
		}
		if c.DefendantIndustry != nil && *c.DefendantIndustry != "" {
			industrySet[*c.DefendantIndustry] = struct{}{}
			industries = append(industries, *c.DefendantIndustry)
		}
		if c.LegalProvisions != nil {
			refs := citation.ExtractRefs(*c.LegalProvisions)
			articleRefs = append(articleRefs, refs...)
			for _, r := range refs {
				articleSet[r] = struct{}{}
			}
		}
	}

	return FilterOptions{
		Years:             sortedYearsDesc(yearSet),
		Regions:           sortedKeys(regionSet),
		RegionHierarchy:   facet.BuildRegionTree(divisions),
		Industries:        sortedKeys(industrySet),
		IndustryHierarchy: facet.BuildIndustryTree(industries),
		Articles:          sortedKeys(articleSet),
		ArticleHierarchy:  facet.BuildStatuteTree(articleRefs),
	}
}

func sortedYearsDesc(set map[int]struct{}) []int {
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
