// Package mcp exposes the search engine over the Model Context Protocol
// (stdio) so AI-assistant clients can query the case corpus directly.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fascase/fascase/internal/search"
)

// Server bridges MCP clients with the hybrid search engine.
type Server struct {
	mcp     *mcp.Server
	engine  *search.Engine
	logger  *slog.Logger
	version string
}

// NewServer creates an MCP server over one search engine.
func NewServer(engine *search.Engine, version string, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine:  engine,
		logger:  logger,
		version: version,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "fascase",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp server stopped", "error", err)
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "search_cases",
		Description: "Search Russian FAS advertising-violation decisions by meaning and keywords. " +
			"Queries in Russian legal language work best. Supports year, region, industry and " +
			"statute-citation filters (e.g. 'ч. 2 ст. 28').",
	}, s.handleSearchCases)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "filter_options",
		Description: "List every filterable value in the corpus: years, FAS regions, defendant " +
			"industries and cited statute articles, each with count-annotated hierarchies. " +
			"Use this to discover valid filter values before calling search_cases.",
	}, s.handleFilterOptions)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "service_status",
		Description: "Report whether the case index is loaded and the embedding backend is " +
			"reachable. Call this if search_cases returns degraded results.",
	}, s.handleServiceStatus)

	s.logger.Debug("mcp tools registered", "count", 3)
}

// SearchCasesInput is the search_cases tool schema.
type SearchCasesInput struct {
	Query    string   `json:"query" jsonschema:"the search query; Russian legal language works best"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of results, default 20, max 50"`
	Year     []int    `json:"year,omitempty" jsonschema:"restrict to decision years"`
	Region   []string `json:"region,omitempty" jsonschema:"restrict to FAS division names"`
	Industry []string `json:"industry,omitempty" jsonschema:"restrict to defendant industries; a parent path matches its sub-industries"`
	Statute  []string `json:"statute,omitempty" jsonschema:"restrict to cited statutes, e.g. 'ст. 5' or 'ч. 2 ст. 28'"`
}

// CaseResult is one ranked case in the search_cases output.
type CaseResult struct {
	Index       int                `json:"index"`
	Score       float64            `json:"score"`
	FieldScores map[string]float64 `json:"field_scores"`
	Date        string             `json:"date,omitempty"`
	Region      string             `json:"region,omitempty"`
	Industry    string             `json:"industry,omitempty"`
	Violation   string             `json:"violation,omitempty"`
	Arguments   string             `json:"arguments,omitempty"`
	Provisions  string             `json:"provisions,omitempty"`
}

// SearchCasesOutput is the structured search_cases result.
type SearchCasesOutput struct {
	TotalCases int          `json:"total_cases"`
	State      string       `json:"state"`
	Message    string       `json:"message,omitempty"`
	Results    []CaseResult `json:"results"`
}

func (s *Server) handleSearchCases(ctx context.Context, req *mcp.CallToolRequest, input SearchCasesInput) (
	*mcp.CallToolResult,
	SearchCasesOutput,
	error,
) {
	start := time.Now()
	requestID := generateRequestID()

	if input.Query == "" {
		return nil, SearchCasesOutput{}, NewInvalidParamsError("query parameter is required")
	}

	opts := search.Options{
		Limit: input.Limit,
		Filters: search.Filters{
			Years:      input.Year,
			Regions:    input.Region,
			Industries: input.Industry,
			Statutes:   input.Statute,
		},
	}

	s.logger.Info("search_cases started",
		"request_id", requestID,
		"query", input.Query,
		"limit", input.Limit)

	resp, err := s.engine.Search(ctx, input.Query, opts)
	if err != nil {
		s.logger.Error("search_cases failed",
			"request_id", requestID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, SearchCasesOutput{}, MapError(err)
	}

	out := SearchCasesOutput{
		TotalCases: resp.TotalCases,
		State:      string(resp.State),
		Message:    resp.Message,
		Results:    make([]CaseResult, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		out.Results = append(out.Results, toCaseResult(r))
	}

	s.logger.Info("search_cases completed",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
		"results", len(out.Results),
		"state", out.State)

	return textResult(FormatSearchResults(input.Query, resp)), out, nil
}

// FilterOptionsInput is the filter_options tool schema (no parameters).
type FilterOptionsInput struct{}

func (s *Server) handleFilterOptions(ctx context.Context, req *mcp.CallToolRequest, input FilterOptionsInput) (
	*mcp.CallToolResult,
	search.FilterOptions,
	error,
) {
	requestID := generateRequestID()

	opts, err := s.engine.FilterOptions()
	if err != nil {
		s.logger.Error("filter_options failed", "request_id", requestID, "error", err)
		return nil, search.FilterOptions{}, MapError(err)
	}

	s.logger.Info("filter_options completed",
		"request_id", requestID,
		"years", len(opts.Years),
		"regions", len(opts.Regions),
		"industries", len(opts.Industries),
		"articles", len(opts.Articles))

	return textResult(FormatFilterOptions(opts)), *opts, nil
}

// ServiceStatusInput is the service_status tool schema (no parameters).
type ServiceStatusInput struct{}

// ServiceStatusOutput mirrors the HTTP health payload.
type ServiceStatusOutput struct {
	Status             string `json:"status"`
	ModelLoaded        bool   `json:"model_loaded"`
	DataLoaded         bool   `json:"data_loaded"`
	TotalCases         int    `json:"total_cases"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	EmbeddingModel     string `json:"embedding_model"`
	Version            string `json:"version"`
}

func (s *Server) handleServiceStatus(ctx context.Context, req *mcp.CallToolRequest, input ServiceStatusInput) (
	*mcp.CallToolResult,
	ServiceStatusOutput,
	error,
) {
	h := s.engine.Status()

	out := ServiceStatusOutput{
		Status:             "ok",
		ModelLoaded:        h.EmbedderReady,
		DataLoaded:         h.IndexReady,
		TotalCases:         h.Cases,
		EmbeddingDimension: h.Dimension,
		EmbeddingModel:     h.EmbeddingModel,
		Version:            s.version,
	}
	if !h.IndexReady || !h.EmbedderReady {
		out.Status = "degraded"
	}
	return textResult(FormatStatus(out)), out, nil
}

func toCaseResult(r search.Result) CaseResult {
	out := CaseResult{
		Index:       r.Index,
		Score:       r.Score,
		FieldScores: r.FieldScores,
	}
	if c := r.Case; c != nil {
		out.Date = deref(c.DocumentDate)
		out.Region = deref(c.FASDivision)
		out.Industry = deref(c.DefendantIndustry)
		out.Violation = deref(c.ViolationSummary)
		out.Arguments = deref(c.FASArguments)
		out.Provisions = deref(c.LegalProvisions)
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func textResult(markdown string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: markdown}},
	}
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
