package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	fcerrors "github.com/fascase/fascase/internal/errors"
	"github.com/fascase/fascase/internal/search"
	"github.com/fascase/fascase/internal/store"
)

// searchRequest is the POST /api/search body. Unknown fields are
// rejected so client typos fail loudly instead of silently widening the
// result set.
type searchRequest struct {
	Query    string   `json:"query"`
	TopK     int      `json:"top_k"`
	Year     []int    `json:"year"`
	Region   []string `json:"region"`
	Industry []string `json:"industry"`
	Article  []string `json:"article"`
}

// searchResult flattens the case record into the result object. The
// outer Index shadows the embedded case's index field.
type searchResult struct {
	Index       int                `json:"index"`
	Score       float64            `json:"score"`
	FieldScores map[string]float64 `json:"field_scores"`
	*store.Case
}

type searchResponse struct {
	Query          string          `json:"query"`
	TotalCases     int             `json:"total_cases"`
	Results        []searchResult  `json:"results"`
	FiltersApplied *search.Filters `json:"filters_applied"`
	Message        *string         `json:"message"`
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeErrorStatus(c, http.StatusBadRequest, fcerrors.ErrCodeInvalidInput, "invalid request body: "+err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeErrorStatus(c, http.StatusBadRequest, fcerrors.ErrCodeInvalidInput, "request body must be a single JSON object")
		return
	}
	if req.TopK < 0 {
		writeErrorStatus(c, http.StatusBadRequest, fcerrors.ErrCodeInvalidInput, "top_k must be positive")
		return
	}

	opts := search.Options{
		Limit: req.TopK,
		Filters: search.Filters{
			Years:      req.Year,
			Regions:    req.Region,
			Industries: req.Industry,
			Statutes:   req.Article,
		},
	}

	resp, err := s.engine.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	out := searchResponse{
		Query:      resp.Query,
		TotalCases: resp.TotalCases,
		Results:    make([]searchResult, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		out.Results = append(out.Results, searchResult{
			Index:       r.Index,
			Score:       r.Score,
			FieldScores: r.FieldScores,
			Case:        r.Case,
		})
	}
	if !resp.Filters.Empty() {
		out.FiltersApplied = &resp.Filters
	}
	if resp.Message != "" {
		out.Message = &resp.Message
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleFilters(c *gin.Context) {
	opts, err := s.engine.FilterOptions()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// healthResponse is the GET /api/health payload. It always returns 200:
// degradation is data, not an HTTP error.
type healthResponse struct {
	Status             string `json:"status"`
	ModelLoaded        bool   `json:"model_loaded"`
	DataLoaded         bool   `json:"data_loaded"`
	TotalCases         int    `json:"total_cases"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	EmbeddingModel     string `json:"embedding_model"`
	Version            string `json:"version"`
}

func (s *Server) handleHealth(c *gin.Context) {
	h := s.engine.Status()

	status := "ok"
	if !h.IndexReady || !h.EmbedderReady {
		status = "degraded"
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:             status,
		ModelLoaded:        h.EmbedderReady,
		DataLoaded:         h.IndexReady,
		TotalCases:         h.Cases,
		EmbeddingDimension: h.Dimension,
		EmbeddingModel:     h.EmbeddingModel,
		Version:            s.cfg.Version,
	})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "fascase",
		"version":     s.cfg.Version,
		"description": "Hybrid search over FAS advertising-violation decisions",
		"endpoints": gin.H{
			"search":  "POST /api/search",
			"filters": "GET /api/filters",
			"health":  "GET /api/health",
		},
	})
}
