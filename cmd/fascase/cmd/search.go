package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/fascase/fascase/internal/config"
	"github.com/fascase/fascase/internal/output"
	"github.com/fascase/fascase/internal/search"
	"github.com/fascase/fascase/internal/store"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit      int
	years      []int
	regions    []string
	industries []string
	articles   []string
	format     string // "text", "json"
	dataDir    string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-shot query against the local index",
		Long: `Run a hybrid search query directly against the local index,
without starting the server.

Combines keyword and semantic retrieval with weighted score fusion,
then reranks by the per-field vector tables. Facet filters narrow the
candidate set before ranking.`,
		Example: `  fascase search "реклама БАДов без предупреждения"
  fascase search "скрытая реклама" --year 2023 --limit 5
  fascase search "кредит без процентов" --article "ст. 28" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runLocalQuery(cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().IntSliceVar(&opts.years, "year", nil, "Filter by decision year (repeatable)")
	cmd.Flags().StringSliceVar(&opts.regions, "region", nil, "Filter by FAS division (repeatable)")
	cmd.Flags().StringSliceVar(&opts.industries, "industry", nil, "Filter by defendant industry (repeatable)")
	cmd.Flags().StringSliceVar(&opts.articles, "article", nil, "Filter by cited statute, e.g. 'ст. 28' (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.dataDir, "data", "", "Data directory (overrides config)")

	return cmd
}

func runLocalQuery(cmd *cobra.Command, query string, opts searchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.Data.Dir = opts.dataDir
	}

	engine, embedder, err := engineForLocalQuery(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("no index in %s: %w\nRun 'fascase embed' first", cfg.Data.Dir, err)
	}
	defer func() { _ = embedder.Close() }()

	resp, err := engine.Search(ctx, query, search.Options{
		Limit: opts.limit,
		Filters: search.Filters{
			Years:      opts.years,
			Regions:    opts.regions,
			Industries: opts.industries,
			Statutes:   opts.articles,
		},
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		return printResultsJSON(cmd, resp)
	}
	printResultsText(out, resp)
	return nil
}

// jsonResult flattens a ranked case for machine-readable output. The
// embedded record supplies the document fields; the outer Index wins.
type jsonResult struct {
	Index       int                `json:"index"`
	Score       float64            `json:"score"`
	FieldScores map[string]float64 `json:"field_scores"`
	*store.Case
}

func printResultsJSON(cmd *cobra.Command, resp *search.Response) error {
	results := make([]jsonResult, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = jsonResult{
			Index:       r.Index,
			Score:       r.Score,
			FieldScores: r.FieldScores,
			Case:        r.Case,
		}
	}
	payload := struct {
		Query      string       `json:"query"`
		TotalCases int          `json:"total_cases"`
		State      string       `json:"state"`
		Message    string       `json:"message,omitempty"`
		Results    []jsonResult `json:"results"`
	}{
		Query:      resp.Query,
		TotalCases: resp.TotalCases,
		State:      string(resp.State),
		Message:    resp.Message,
		Results:    results,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func printResultsText(out *output.Writer, resp *search.Response) {
	if resp.Message != "" {
		out.Warning(resp.Message)
	}
	if len(resp.Results) == 0 {
		out.Status("🔍", "No cases found")
		return
	}

	out.Statusf("🔍", "Found %d of %d cases", len(resp.Results), resp.TotalCases)
	out.Newline()

	for i, r := range resp.Results {
		out.Statusf("", "%d. Case #%d  (score %.4f)", i+1, r.Index, r.Score)
		if meta := caseMeta(r.Case); meta != "" {
			out.Detail(meta)
		}
		if summary := caseSummary(r.Case); summary != "" {
			out.Detail(summary)
		}
		out.Newline()
	}
}

// caseMeta joins the headline facets of a record.
func caseMeta(c *store.Case) string {
	if c == nil {
		return ""
	}
	var parts []string
	for _, p := range []*string{c.DocumentDate, c.FASDivision, c.DefendantIndustry, c.LegalProvisions} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, " · ")
}

// caseSummary returns a short violation description for text output.
func caseSummary(c *store.Case) string {
	if c == nil {
		return ""
	}
	text := ""
	if c.ViolationSummary != nil && *c.ViolationSummary != "" {
		text = *c.ViolationSummary
	} else if c.FASArguments != nil {
		text = *c.FASArguments
	}
	return truncateRunes(text, 200)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
