package store

import (
	"time"
)

// Index is one immutable snapshot of everything a request reads: the corpus
// and whichever vector tables loaded cleanly. Requests share it without
// locking; a reload builds a new Index and swaps the pointer, so in-flight
// requests keep the snapshot they started with.
type Index struct {
	corpus     *Corpus
	primary    *VectorTable
	tables     map[string]*VectorTable
	generation uint64
	loadedAt   time.Time
}

// NewIndex assembles an index snapshot. primary may be nil (semantic
// retrieval degrades to keyword-only); tables holds the per-field rerank
// tables that passed validation, keyed by field name.
func NewIndex(corpus *Corpus, primary *VectorTable, tables map[string]*VectorTable, generation uint64) *Index {
	if tables == nil {
		tables = map[string]*VectorTable{}
	}
	return &Index{
		corpus:     corpus,
		primary:    primary,
		tables:     tables,
		generation: generation,
		loadedAt:   time.Now(),
	}
}

// Corpus returns the case collection.
func (ix *Index) Corpus() *Corpus {
	return ix.corpus
}

// Len returns the number of cases.
func (ix *Index) Len() int {
	return ix.corpus.Len()
}

// Primary returns the primary retrieval table, or nil when it did not load.
func (ix *Index) Primary() *VectorTable {
	return ix.primary
}

// Table returns the rerank table for a field, or nil when absent.
func (ix *Index) Table(field string) *VectorTable {
	return ix.tables[field]
}

// TableFields returns the field names with a loaded rerank table.
func (ix *Index) TableFields() []string {
	fields := make([]string, 0, len(ix.tables))
	for f := range ix.tables {
		fields = append(fields, f)
	}
	return fields
}

// Generation is the monotonically increasing load counter. Cached search
// responses are scoped to it so a reload invalidates them wholesale.
func (ix *Index) Generation() uint64 {
	return ix.generation
}

// EmbeddingModel returns the model that produced the primary table, or ""
// when no table is loaded.
func (ix *Index) EmbeddingModel() string {
	if ix.primary == nil {
		return ""
	}
	return ix.primary.Model
}

// Dimension returns the primary table's vector dimension, or 0.
func (ix *Index) Dimension() int {
	if ix.primary == nil {
		return 0
	}
	return ix.primary.Dimension
}

// LoadedAt returns when this snapshot was built.
func (ix *Index) LoadedAt() time.Time {
	return ix.loadedAt
}
