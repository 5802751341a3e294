package store

import (
	"strconv"
	"strings"

	"github.com/fascase/fascase/internal/citation"
)

// Corpus is the loaded case collection plus the derived lookup data the
// matchers need on every request: lowercased field texts, parsed decision
// years, and parsed statute citations. All of it is computed once at load.
type Corpus struct {
	cases      []Case
	searchText map[string][]string
	years      []int
	citations  [][]citation.Citation
}

// NewCorpus builds a corpus from decoded case records.
func NewCorpus(cases []Case) *Corpus {
	c := &Corpus{
		cases:      cases,
		searchText: make(map[string][]string, len(SearchFields())),
		years:      make([]int, len(cases)),
		citations:  make([][]citation.Citation, len(cases)),
	}

	for _, field := range SearchFields() {
		texts := make([]string, len(cases))
		for i := range cases {
			texts[i] = strings.ToLower(cases[i].Text(field))
		}
		c.searchText[field] = texts
	}

	for i := range cases {
		c.years[i] = parseYear(cases[i].DocumentDate)
		if lp := cases[i].LegalProvisions; lp != nil {
			c.citations[i] = citation.ParseAll(*lp)
		}
	}

	return c
}

// Len returns the number of cases.
func (c *Corpus) Len() int {
	return len(c.cases)
}

// Case returns the record at index i. The returned pointer aliases the
// corpus; callers must treat it as read-only.
func (c *Corpus) Case(i int) *Case {
	return &c.cases[i]
}

// Cases returns the full case slice, read-only.
func (c *Corpus) Cases() []Case {
	return c.cases
}

// SearchText returns the precomputed lowercased texts for a search field,
// index-aligned with the corpus. Nil for unknown fields.
func (c *Corpus) SearchText(field string) []string {
	return c.searchText[field]
}

// Year returns the decision year of case i, or 0 when the date is missing
// or unparsable.
func (c *Corpus) Year(i int) int {
	return c.years[i]
}

// Citations returns the statute citations parsed from case i's
// legal_provisions field. Nil when the case cites nothing.
func (c *Corpus) Citations(i int) []citation.Citation {
	return c.citations[i]
}

// parseYear extracts the year from the leading "YYYY" of a date string.
func parseYear(date *string) int {
	if date == nil || len(*date) < 4 {
		return 0
	}
	y, err := strconv.Atoi((*date)[:4])
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
