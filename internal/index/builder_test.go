package index

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fascase/fascase/internal/embed"
)

func builderDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, CasesFile), testCaseRecords())
	return dir
}

func TestBuilderRunWritesLoadableTables(t *testing.T) {
	dir := builderDataDir(t)
	b := NewBuilder(dir, embed.NewStaticEmbedder(), nil, BuilderConfig{}, nil, nil)

	results, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, res := range results {
		assert.Equal(t, 2, res.Rows, res.Field)
		assert.Equal(t, 2, res.Embedded, res.Field)
		assert.Equal(t, 0, res.Cached, res.Field)
	}

	ix, report, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ix.Primary())
	assert.Equal(t, embed.StaticDimensions, ix.Primary().Dimension)
	for _, tr := range report.Tables {
		assert.True(t, tr.Loaded, tr.Field)
	}
}

func TestBuilderSecondRunServesFromCache(t *testing.T) {
	dir := builderDataDir(t)
	cache := openTestCache(t)

	b := NewBuilder(dir, embed.NewStaticEmbedder(), cache, BuilderConfig{}, nil, nil)
	_, err := b.Run(context.Background())
	require.NoError(t, err)

	results, err := b.Run(context.Background())
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, 0, res.Embedded, res.Field)
		assert.Equal(t, 2, res.Cached, res.Field)
	}
}

func TestBuilderReportsProgress(t *testing.T) {
	dir := builderDataDir(t)

	var mu sync.Mutex
	seen := map[string]int{}
	progress := func(table string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 2, total)
		if done > seen[table] {
			seen[table] = done
		}
	}

	b := NewBuilder(dir, embed.NewStaticEmbedder(), nil, BuilderConfig{Workers: 1, BatchSize: 1}, nil, progress)
	_, err := b.Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 4)
	for table, done := range seen {
		assert.Equal(t, 2, done, table)
	}
}

func TestBuilderFailsWhenDirLocked(t *testing.T) {
	dir := builderDataDir(t)
	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer lock.Unlock()

	b := NewBuilder(dir, embed.NewStaticEmbedder(), nil, BuilderConfig{}, nil, nil)
	_, err = b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestBuilderMissingCorpus(t *testing.T) {
	b := NewBuilder(t.TempDir(), embed.NewStaticEmbedder(), nil, BuilderConfig{}, nil, nil)
	_, err := b.Run(context.Background())
	require.Error(t, err)
}
