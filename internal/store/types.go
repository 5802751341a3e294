// Package store holds the immutable in-memory corpus of FAS decisions and
// the per-field vector tables that the ranking layers read. A loaded Index
// is never mutated; reloads build a fresh one and swap the pointer.
package store

// Field names of the decision record that participate in retrieval.
const (
	FieldFASArguments     = "FAS_arguments"
	FieldViolationSummary = "violation_summary"
	FieldAdDescription    = "ad_description"
	FieldAdContentCited   = "ad_content_cited"
	FieldLegalProvisions  = "legal_provisions"
)

// SearchFields returns the fixed field order used by keyword scoring.
func SearchFields() []string {
	return []string{
		FieldFASArguments,
		FieldViolationSummary,
		FieldAdDescription,
		FieldAdContentCited,
		FieldLegalProvisions,
	}
}

// Scored pairs a case index with a relevance score.
type Scored struct {
	Index int
	Score float64
}
