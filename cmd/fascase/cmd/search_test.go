package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIndex runs the embed command so search has tables to load.
func buildIndex(t *testing.T) {
	t.Helper()
	cmd := newEmbedCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--plain"})
	require.NoError(t, cmd.Execute())
}

func TestSearchCmd_TextOutput(t *testing.T) {
	// Given: a built index over the two-case corpus
	setupWorkspace(t)
	buildIndex(t)

	// When: querying for the supplement case
	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"реклама БАД предупреждение"})

	err := cmd.Execute()

	// Then: both cases rank, the supplement case first
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Found")
	assert.Contains(t, output, "Case #")
	assert.Contains(t, output, "БАД")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	setupWorkspace(t)
	buildIndex(t)

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"реклама кредита", "--format", "json"})

	err := cmd.Execute()

	require.NoError(t, err)
	var payload struct {
		Query      string `json:"query"`
		TotalCases int    `json:"total_cases"`
		State      string `json:"state"`
		Results    []struct {
			Index int     `json:"index"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "реклама кредита", payload.Query)
	assert.Equal(t, 2, payload.TotalCases)
	assert.Equal(t, "semantic", payload.State)
	assert.NotEmpty(t, payload.Results)
}

func TestSearchCmd_YearFilter(t *testing.T) {
	setupWorkspace(t)
	buildIndex(t)

	// When: filtering to 2023
	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"реклама", "--year", "2023", "--format", "json"})

	err := cmd.Execute()

	// Then: only the 2023 case survives
	require.NoError(t, err)
	var payload struct {
		Results []struct {
			Index int `json:"index"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	require.Len(t, payload.Results, 1)
	assert.Equal(t, 1, payload.Results[0].Index)
}

func TestSearchCmd_NoIndex(t *testing.T) {
	// Given: a corpus but no data directory at all
	isolateConfig(t)
	dir := t.TempDir()
	t.Chdir(dir)

	cmd := newSearchCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"реклама"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fascase embed")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	cmd := newSearchCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
}
