package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRendererFallsBackToPlain(t *testing.T) {
	// A bytes.Buffer is never a TTY.
	r := NewRenderer(Config{Output: &bytes.Buffer{}})
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestNewRendererForcePlain(t *testing.T) {
	r := NewRenderer(Config{Output: &bytes.Buffer{}, ForcePlain: true})
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestNewTUIRendererRejectsNonTTY(t *testing.T) {
	_, err := NewTUIRenderer(Config{Output: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestIsTTYBuffer(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CI", "")
	assert.False(t, DetectNoColor())

	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestPlainRendererThrottles(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(Config{Output: buf})
	require.NoError(t, r.Start(context.Background()))

	for i := 1; i <= 120; i++ {
		r.UpdateProgress(ProgressEvent{Table: "document", Done: i, Total: 500})
	}

	out := buf.String()
	assert.Contains(t, out, "[EMBED] document 50/500")
	assert.Contains(t, out, "[EMBED] document 100/500")
	assert.NotContains(t, out, "document 1/500")
}

func TestPlainRendererFinalStepAlwaysPrints(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(Config{Output: buf})

	r.UpdateProgress(ProgressEvent{Table: "violation_summary", Done: 3, Total: 3})
	assert.Contains(t, buf.String(), "[EMBED] violation_summary 3/3")
}

func TestPlainRendererComplete(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(Config{Output: buf})

	r.Complete(CompletionStats{
		Tables: []TableSummary{
			{Table: "document", Rows: 100, Embedded: 40, Cached: 60},
		},
		Duration: 1500 * time.Millisecond,
		Model:    "gemini-embedding-001",
	})

	out := buf.String()
	assert.Contains(t, out, "[DONE] document: 100 rows (40 embedded, 60 cached)")
	assert.Contains(t, out, "gemini-embedding-001")
	assert.NoError(t, r.Stop())
}

func TestEmbedModelView(t *testing.T) {
	m := newEmbedModel()
	m.styles = NoColorStyles()

	updated, _ := m.Update(progressMsg{Table: "document", Done: 2, Total: 4})
	m = updated.(*embedModel)

	view := m.View()
	assert.Contains(t, view, "fascase embed")
	assert.Contains(t, view, "document")
	assert.Contains(t, view, "2/4")
}

func TestEmbedModelComplete(t *testing.T) {
	m := newEmbedModel()
	m.styles = NoColorStyles()

	updated, cmd := m.Update(completeMsg{
		Tables: []TableSummary{{Table: "document", Rows: 4, Embedded: 4}},
		Model:  "static-fnv",
	})
	m = updated.(*embedModel)

	assert.NotNil(t, cmd, "completion quits the program")
	assert.Contains(t, m.View(), "document: 4 rows")
}
