package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// VectorTable is a dense per-field embedding table, index-aligned with the
// corpus. Rows are unit length after load; degenerate rows (zero magnitude
// or non-finite components) are zeroed so they never win a comparison.
type VectorTable struct {
	Field     string
	Model     string
	Dimension int

	vectors [][]float32
	zero    []bool
}

// vectorTableFile is the on-disk JSON layout written by `fascase embed`.
type vectorTableFile struct {
	Field      string      `json:"field"`
	Model      string      `json:"model"`
	Dimension  int         `json:"dimension"`
	Normalized bool        `json:"normalized"`
	Vectors    [][]float32 `json:"vectors"`
}

// ReadVectorTableFile loads and validates a vector table from path.
func ReadVectorTableFile(path string) (*VectorTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseVectorTable(data)
}

// ParseVectorTable decodes a vector table from its JSON form. Every row
// must have exactly the declared dimension or the whole table is rejected.
func ParseVectorTable(data []byte) (*VectorTable, error) {
	var f vectorTableFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode vector table: %w", err)
	}
	if f.Dimension <= 0 {
		return nil, fmt.Errorf("vector table %q: invalid dimension %d", f.Field, f.Dimension)
	}

	t := &VectorTable{
		Field:     f.Field,
		Model:     f.Model,
		Dimension: f.Dimension,
		vectors:   f.Vectors,
		zero:      make([]bool, len(f.Vectors)),
	}
	for i, v := range f.Vectors {
		if len(v) != f.Dimension {
			return nil, fmt.Errorf("vector table %q: row %d has %d components, want %d", f.Field, i, len(v), f.Dimension)
		}
		t.zero[i] = Normalize(v)
	}
	return t, nil
}

// NewVectorTable builds a table from raw rows. Rows are normalized the
// same way as rows read from disk.
func NewVectorTable(field, model string, dimension int, vectors [][]float32) (*VectorTable, error) {
	t := &VectorTable{
		Field:     field,
		Model:     model,
		Dimension: dimension,
		vectors:   vectors,
		zero:      make([]bool, len(vectors)),
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector table %q: row %d has %d components, want %d", field, i, len(v), dimension)
		}
		t.zero[i] = Normalize(v)
	}
	return t, nil
}

// Validate checks that the table is index-aligned with a corpus of n cases.
func (t *VectorTable) Validate(n int) error {
	if len(t.vectors) != n {
		return fmt.Errorf("vector table %q: %d vectors for %d cases", t.Field, len(t.vectors), n)
	}
	return nil
}

// Len returns the number of rows.
func (t *VectorTable) Len() int {
	return len(t.vectors)
}

// IsZero reports whether row i is the zero vector.
func (t *VectorTable) IsZero(i int) bool {
	return t.zero[i]
}

// Similarity returns the cosine similarity between the unit query vector
// and row i. Zero rows yield 0.
func (t *VectorTable) Similarity(i int, query []float32) float64 {
	return dot(t.vectors[i], query)
}

// TopK scans the whole table and returns the k rows most similar to the
// unit query vector, ordered by similarity descending with ascending row
// index breaking ties.
func (t *VectorTable) TopK(query []float32, k int) []Scored {
	if k <= 0 || len(t.vectors) == 0 {
		return nil
	}

	scored := make([]Scored, len(t.vectors))
	for i, v := range t.vectors {
		scored[i] = Scored{Index: i, Score: dot(v, query)}
	}
	sort.Slice(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].Index < scored[b].Index
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// dot computes the float64 dot product of two float32 vectors.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Normalize scales v to unit length in place. It returns true when v is
// degenerate (zero magnitude or non-finite components); such vectors are
// zeroed instead.
func Normalize(v []float32) bool {
	var sum float64
	finite := true
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			finite = false
			break
		}
		sum += f * f
	}
	if !finite || sum == 0 {
		for i := range v {
			v[i] = 0
		}
		return true
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1) > 1e-6 {
		for i := range v {
			v[i] = float32(float64(v[i]) / norm)
		}
	}
	return false
}

// IsZeroVector reports whether v has no usable magnitude. Vectors with
// non-finite components count as unusable.
func IsZeroVector(v []float32) bool {
	nonzero := false
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
		if x != 0 {
			nonzero = true
		}
	}
	return !nonzero
}
