package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fascase/fascase/internal/search"
	"github.com/fascase/fascase/internal/telemetry"
)

func TestStatsQueriesCmd_NoDatabase(t *testing.T) {
	// Given: a workspace that has never served a query
	setupWorkspace(t)

	cmd := newStatsQueriesCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no telemetry database")
}

func TestStatsQueriesCmd_ReportsRecordedQueries(t *testing.T) {
	// Given: a telemetry database with recorded aggregates
	dataDir := setupWorkspace(t)
	seedTelemetry(t, filepath.Join(dataDir, telemetry.DefaultDBFile))

	// When: reading stats as JSON
	cmd := newStatsQueriesCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	err := cmd.Execute()

	// Then: totals and distributions come back
	require.NoError(t, err)
	var stats StatsQueriesOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stats))
	assert.Equal(t, int64(5), stats.Summary.TotalQueries)
	assert.Equal(t, int64(4), stats.StateCounts["semantic"])
	assert.Equal(t, int64(1), stats.StateCounts["lexical-only"])
	assert.NotEmpty(t, stats.TopTerms)
	assert.Contains(t, stats.ZeroResultQueries, "реклама квадрокоптеров")
}

func TestStatsQueriesCmd_TextOutput(t *testing.T) {
	dataDir := setupWorkspace(t)
	seedTelemetry(t, filepath.Join(dataDir, telemetry.DefaultDBFile))

	cmd := newStatsQueriesCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	output := buf.String()
	assert.Contains(t, output, "Total queries: 5")
	assert.Contains(t, output, "semantic")
	assert.Contains(t, output, "реклама квадрокоптеров")
}

func seedTelemetry(t *testing.T, dbPath string) {
	t.Helper()

	metricsStore, err := telemetry.OpenSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, metricsStore.Close()) }()

	today := time.Now().Format("2006-01-02")
	require.NoError(t, metricsStore.SaveStateCounts(today, map[search.SignalState]int64{
		search.StateSemantic:    4,
		search.StateLexicalOnly: 1,
	}))
	require.NoError(t, metricsStore.UpsertTermCounts(map[string]int64{
		"реклама": 4,
		"кредит":  2,
	}))
	require.NoError(t, metricsStore.AddZeroResultQuery("реклама квадрокоптеров", time.Now()))
	require.NoError(t, metricsStore.SaveLatencyCounts(today, map[telemetry.LatencyBucket]int64{
		telemetry.BucketP10: 3,
		telemetry.BucketP50: 2,
	}))
}
