package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fascase/fascase/internal/config"
	"github.com/fascase/fascase/internal/output"
	"github.com/fascase/fascase/internal/search"
	"github.com/fascase/fascase/internal/telemetry"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics and telemetry",
		Long:  `Display statistics about query patterns, performance, and usage.`,
	}

	cmd.AddCommand(newStatsQueriesCmd())
	return cmd
}

func newStatsQueriesCmd() *cobra.Command {
	var (
		jsonOutput bool
		days       int
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Show query pattern statistics",
		Long: `Display query pattern telemetry including:
  - Signal state distribution (semantic/lexical-only/no-signal)
  - Top query terms
  - Zero-result queries
  - Latency distribution`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatsQueries(cmd, jsonOutput, days, dataDir)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to include")
	cmd.Flags().StringVar(&dataDir, "data", "", "Data directory (overrides config)")

	return cmd
}

// StatsQueriesOutput is the JSON output format for query stats.
type StatsQueriesOutput struct {
	Summary             StatsQueriesSummary   `json:"summary"`
	StateCounts         map[string]int64      `json:"state_counts"`
	TopTerms            []telemetry.TermCount `json:"top_terms"`
	ZeroResultQueries   []string              `json:"zero_result_queries"`
	LatencyDistribution map[string]int64      `json:"latency_distribution"`
}

// StatsQueriesSummary provides overview statistics.
type StatsQueriesSummary struct {
	TotalQueries  int64   `json:"total_queries"`
	ZeroResultPct float64 `json:"zero_result_pct"`
	Days          int     `json:"days"`
}

func runStatsQueries(cmd *cobra.Command, jsonOutput bool, days int, dataDir string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}

	dbPath := cfg.Telemetry.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Data.Dir, telemetry.DefaultDBFile)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no telemetry database at %s\nRun 'fascase serve' with telemetry enabled first", dbPath)
	}

	metricsStore, err := telemetry.OpenSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open telemetry store: %w", err)
	}
	defer func() { _ = metricsStore.Close() }()

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	fromDate := from.Format("2006-01-02")
	toDate := to.Format("2006-01-02")

	stateCounts, err := metricsStore.GetStateCounts(fromDate, toDate)
	if err != nil {
		return fmt.Errorf("failed to read state counts: %w", err)
	}
	topTerms, err := metricsStore.GetTopTerms(10)
	if err != nil {
		return fmt.Errorf("failed to read top terms: %w", err)
	}
	zeroQueries, err := metricsStore.GetZeroResultQueries(10)
	if err != nil {
		return fmt.Errorf("failed to read zero-result queries: %w", err)
	}
	latencies, err := metricsStore.GetLatencyCounts(fromDate, toDate)
	if err != nil {
		return fmt.Errorf("failed to read latency counts: %w", err)
	}

	stats := buildStatsOutput(stateCounts, topTerms, zeroQueries, latencies, days)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	printStats(cmd, stats)
	return nil
}

func buildStatsOutput(states map[search.SignalState]int64, terms []telemetry.TermCount,
	zeroQueries []string, latencies map[telemetry.LatencyBucket]int64, days int) StatsQueriesOutput {

	stateCounts := make(map[string]int64, len(states))
	var total int64
	for state, n := range states {
		stateCounts[string(state)] = n
		total += n
	}

	latencyCounts := make(map[string]int64, len(latencies))
	for bucket, n := range latencies {
		latencyCounts[string(bucket)] = n
	}

	zeroPct := 0.0
	if total > 0 {
		zeroPct = float64(len(zeroQueries)) / float64(total) * 100
	}

	return StatsQueriesOutput{
		Summary: StatsQueriesSummary{
			TotalQueries:  total,
			ZeroResultPct: zeroPct,
			Days:          days,
		},
		StateCounts:         stateCounts,
		TopTerms:            terms,
		ZeroResultQueries:   zeroQueries,
		LatencyDistribution: latencyCounts,
	}
}

func printStats(cmd *cobra.Command, stats StatsQueriesOutput) {
	out := output.New(cmd.OutOrStdout())

	out.Statusf("📊", "Query statistics (last %d days)", stats.Summary.Days)
	out.Newline()

	out.Statusf("", "Total queries: %d", stats.Summary.TotalQueries)
	if stats.Summary.TotalQueries == 0 {
		out.Status("💡", "No queries recorded yet")
		return
	}

	out.Newline()
	out.Status("", "By signal state:")
	for _, state := range []string{"semantic", "lexical-only", "no-signal"} {
		if n, ok := stats.StateCounts[state]; ok {
			out.Statusf("", "  %-13s %d", state, n)
		}
	}

	if len(stats.TopTerms) > 0 {
		out.Newline()
		out.Status("", "Top query terms:")
		for _, tc := range stats.TopTerms {
			out.Statusf("", "  %-20s %d", tc.Term, tc.Count)
		}
	}

	if len(stats.ZeroResultQueries) > 0 {
		out.Newline()
		out.Status("", "Recent zero-result queries:")
		for _, q := range stats.ZeroResultQueries {
			out.Statusf("", "  %s", q)
		}
	}

	if len(stats.LatencyDistribution) > 0 {
		out.Newline()
		out.Status("", "Latency distribution:")
		for _, bucket := range telemetry.LatencyBucketOrder {
			if n, ok := stats.LatencyDistribution[string(bucket)]; ok {
				out.Statusf("", "  %-8s %d", string(bucket), n)
			}
		}
	}
}
