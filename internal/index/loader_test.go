package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fcerrors "github.com/fascase/fascase/internal/errors"
	"github.com/fascase/fascase/internal/store"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testCaseRecords() []map[string]any {
	return []map[string]any{
		{"index": 0, "FAS_arguments": "Реклама лекарств без предупреждения", "document_date": "2022-01-10"},
		{"index": 1, "FAS_arguments": "Реклама кредита без условий", "document_date": "2023-04-02"},
	}
}

func tableJSON(field string, vectors [][]float32) map[string]any {
	return map[string]any{
		"field":      field,
		"model":      "test-model",
		"dimension":  3,
		"normalized": true,
		"vectors":    vectors,
	}
}

func writeDataset(t *testing.T, dir string) {
	t.Helper()
	writeJSON(t, filepath.Join(dir, CasesFile), testCaseRecords())
	writeJSON(t, filepath.Join(dir, PrimaryTableFile),
		tableJSON("document", [][]float32{{1, 0, 0}, {0, 1, 0}}))
	writeJSON(t, filepath.Join(dir, FieldTableFiles[store.FieldFASArguments]),
		tableJSON(store.FieldFASArguments, [][]float32{{0, 0, 1}, {0, 1, 0}}))
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)

	ix, report, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, ix.Len())
	assert.NotNil(t, ix.Primary())
	assert.NotNil(t, ix.Table(store.FieldFASArguments))
	assert.Nil(t, ix.Table(store.FieldViolationSummary))
	assert.Equal(t, uint64(1), ix.Generation())
	assert.Equal(t, 2, report.Cases)
}

func TestLoaderGenerationIncrements(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	loader := NewLoader(dir, nil)

	first, _, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, _, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Greater(t, second.Generation(), first.Generation())
}

func TestLoaderMissingCorpus(t *testing.T) {
	_, _, err := NewLoader(t.TempDir(), nil).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, fcerrors.ErrCodeFileNotFound, fcerrors.GetCode(err))
}

func TestLoaderCorruptCorpus(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CasesFile), []byte("{not json"), 0o644))

	_, _, err := NewLoader(dir, nil).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, fcerrors.ErrCodeCorpusCorrupt, fcerrors.GetCode(err))
}

func TestLoaderRejectsMisnumberedCases(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, CasesFile), []map[string]any{
		{"index": 0}, {"index": 5},
	})

	_, _, err := NewLoader(dir, nil).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, fcerrors.ErrCodeCorpusCorrupt, fcerrors.GetCode(err))
}

func TestLoaderMisalignedTableDegrades(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, CasesFile), testCaseRecords())
	// One row short of the corpus.
	writeJSON(t, filepath.Join(dir, PrimaryTableFile),
		tableJSON("document", [][]float32{{1, 0, 0}}))

	ix, report, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Nil(t, ix.Primary())
	require.NotEmpty(t, report.Tables)
	assert.False(t, report.Tables[0].Loaded)
	assert.Error(t, report.Tables[0].Err)
}

func TestLoaderMissingTablesDegrade(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, CasesFile), testCaseRecords())

	ix, _, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ix.Primary())
	assert.Equal(t, 2, ix.Len())
}

func TestProviderSwap(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	loader := NewLoader(dir, nil)
	provider := NewProvider()

	assert.Nil(t, provider.Snapshot())

	ix, _, err := loader.Load(context.Background())
	require.NoError(t, err)
	provider.Set(ix)
	assert.Same(t, ix, provider.Snapshot())
}

func TestWatcherReloadSwapsOnSuccess(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	loader := NewLoader(dir, nil)
	provider := NewProvider()
	w := NewWatcher(loader, provider, 0, nil)

	w.Reload(context.Background())
	first := provider.Snapshot()
	require.NotNil(t, first)

	w.Reload(context.Background())
	second := provider.Snapshot()
	assert.Greater(t, second.Generation(), first.Generation())
}

func TestWatcherReloadKeepsSnapshotOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	loader := NewLoader(dir, nil)
	provider := NewProvider()
	w := NewWatcher(loader, provider, 0, nil)

	w.Reload(context.Background())
	good := provider.Snapshot()
	require.NotNil(t, good)

	require.NoError(t, os.WriteFile(filepath.Join(dir, CasesFile), []byte("broken"), 0o644))
	w.Reload(context.Background())
	assert.Same(t, good, provider.Snapshot())
}

func TestDatasetFile(t *testing.T) {
	assert.True(t, datasetFile("/data/cases.json"))
	assert.True(t, datasetFile("/data/embeddings.json"))
	assert.True(t, datasetFile("/data/embeddings_FAS_arguments.json"))
	assert.False(t, datasetFile("/data/embeddings.json.tmp"))
	assert.False(t, datasetFile("/data/fascase.db"))
	assert.False(t, datasetFile("/data/notes.txt"))
}
