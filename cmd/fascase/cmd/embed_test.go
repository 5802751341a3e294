package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedCmd_BuildsAllTables(t *testing.T) {
	// Given: a workspace with a two-case corpus and the static provider
	dataDir := setupWorkspace(t)

	// When: running embed with plain output
	cmd := newEmbedCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--plain"})

	err := cmd.Execute()

	// Then: every table file exists
	require.NoError(t, err)
	for _, file := range []string{
		"embeddings.json",
		"embeddings_FAS_arguments.json",
		"embeddings_violation_summary.json",
		"embeddings_ad_description.json",
	} {
		_, statErr := os.Stat(filepath.Join(dataDir, file))
		assert.NoError(t, statErr, "expected %s", file)
	}
	assert.Contains(t, buf.String(), "[DONE]")
}

func TestEmbedCmd_SecondRunUsesCache(t *testing.T) {
	setupWorkspace(t)

	first := newEmbedCmd()
	first.SetOut(&bytes.Buffer{})
	first.SetArgs([]string{"--plain"})
	require.NoError(t, first.Execute())

	// When: embedding again with an unchanged corpus
	second := newEmbedCmd()
	buf := &bytes.Buffer{}
	second.SetOut(buf)
	second.SetArgs([]string{"--plain"})
	require.NoError(t, second.Execute())

	// Then: the run reports cached rows, not fresh embeds
	assert.Contains(t, buf.String(), "2 cached")
	assert.Contains(t, buf.String(), "0 embedded")
}

func TestEmbedCmd_MissingCorpus(t *testing.T) {
	dataDir := setupWorkspace(t)
	require.NoError(t, os.Remove(filepath.Join(dataDir, "cases.json")))

	cmd := newEmbedCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--plain"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestEmbedCmd_RejectsNoneProvider(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fascase.yaml"),
		[]byte("embeddings:\n  provider: none\n"), 0o644))

	cmd := newEmbedCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--plain"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}
