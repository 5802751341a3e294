package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fcerrors "github.com/fascase/fascase/internal/errors"
)

// DefaultGeminiBaseURL is the embedContent API root.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiRetryConfig keeps backoff short: a request-scoped embedding call
// cannot afford the multi-second defaults.
var geminiRetryConfig = fcerrors.RetryConfig{
	MaxRetries:   2,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
	Jitter:       true,
}

// GeminiEmbedder generates embeddings through the Gemini REST API.
// Returned vectors are L2-normalized, which the API requires client-side
// for output dimensionalities below the model's native size.
type GeminiEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	batchSize  int
	timeout    time.Duration
	baseURL    string
	client     *http.Client
}

// GeminiOption configures the Gemini embedder.
type GeminiOption func(*GeminiEmbedder)

// WithBaseURL overrides the API root (tests point it at a local server).
func WithBaseURL(url string) GeminiOption {
	return func(g *GeminiEmbedder) {
		g.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiEmbedder) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithBatchSize sets texts per batch call, capped at the API limit.
func WithBatchSize(n int) GeminiOption {
	return func(g *GeminiEmbedder) {
		if n > 0 && n <= MaxBatchSize {
			g.batchSize = n
		}
	}
}

// NewGeminiEmbedder creates a Gemini embedder. The key is required; model
// and dimensions fall back to the defaults when zero-valued.
func NewGeminiEmbedder(apiKey, model string, dimensions int, opts ...GeminiOption) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fcerrors.New(fcerrors.ErrCodeConfigInvalid, "GEMINI_API_KEY is not set", nil).
			WithSuggestion("export GEMINI_API_KEY or add it to .env")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	g := &GeminiEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		batchSize:  DefaultBatchSize,
		timeout:    DefaultTimeout,
		baseURL:    DefaultGeminiBaseURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.client = &http.Client{Timeout: g.timeout}
	return g, nil
}

// Wire types for embedContent / batchEmbedContents.

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	TaskType             string        `json:"task_type,omitempty"`
	OutputDimensionality int           `json:"output_dimensionality,omitempty"`
}

type geminiValues struct {
	Values []float32 `json:"values"`
}

type geminiEmbedResponse struct {
	Embedding geminiValues `json:"embedding"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiBatchResponse struct {
	Embeddings []geminiValues `json:"embeddings"`
}

// Embed generates a document embedding for one text.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, TaskDocument)
}

// EmbedQuery generates a query embedding for one text.
func (g *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, TaskQuery)
}

func (g *GeminiEmbedder) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	// Blank text embeds to a zero vector without a network call.
	if strings.TrimSpace(text) == "" {
		return make([]float32, g.dimensions), nil
	}

	reqBody := g.newRequest(text, taskType)
	url := fmt.Sprintf("%s/models/%s:embedContent", g.baseURL, g.model)

	vec, err := fcerrors.RetryWithResult(ctx, geminiRetryConfig, func() ([]float32, error) {
		var resp geminiEmbedResponse
		if err := g.post(ctx, url, reqBody, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embedding.Values) == 0 {
			return nil, fcerrors.New(fcerrors.ErrCodeEmbeddingFailed, "empty embedding in response", nil)
		}
		return resp.Embedding.Values, nil
	})
	if err != nil {
		return nil, err
	}
	return normalizeVector(vec), nil
}

// EmbedBatch generates document embeddings for texts, batchSize per call.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := g.embedBatchOnce(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d..%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (g *GeminiEmbedder) embedBatchOnce(ctx context.Context, texts []string) ([][]float32, error) {
	requests := make([]geminiEmbedRequest, len(texts))
	for i, t := range texts {
		requests[i] = g.newRequest(t, TaskDocument)
	}
	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", g.baseURL, g.model)

	resp, err := fcerrors.RetryWithResult(ctx, geminiRetryConfig, func() (*geminiBatchResponse, error) {
		var r geminiBatchResponse
		if err := g.post(ctx, url, geminiBatchRequest{Requests: requests}, &r); err != nil {
			return nil, err
		}
		if len(r.Embeddings) != len(texts) {
			return nil, fcerrors.New(fcerrors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("got %d embeddings for %d texts", len(r.Embeddings), len(texts)), nil)
		}
		return &r, nil
	})
	if err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		// Blank inputs legitimately come back empty; keep them zero.
		if len(e.Values) == 0 && strings.TrimSpace(texts[i]) != "" {
			return nil, fcerrors.New(fcerrors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("text %d has empty embedding", i), nil)
		}
		if len(e.Values) == 0 {
			vecs[i] = make([]float32, g.dimensions)
			continue
		}
		vecs[i] = normalizeVector(e.Values)
	}
	return vecs, nil
}

func (g *GeminiEmbedder) newRequest(text, taskType string) geminiEmbedRequest {
	return geminiEmbedRequest{
		Model:                "models/" + g.model,
		Content:              geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType:             taskType,
		OutputDimensionality: g.dimensions,
	}
}

// post sends one JSON request and decodes the response, classifying HTTP
// failures into the structured error taxonomy so the retry helper knows
// what is worth retrying.
func (g *GeminiEmbedder) post(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fcerrors.InternalError("marshal embedding request", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fcerrors.InternalError("create embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return fcerrors.New(fcerrors.ErrCodeNetworkTimeout, "embedding call timed out", err)
		}
		return fcerrors.New(fcerrors.ErrCodeNetworkUnavailable, "embedding backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fcerrors.New(fcerrors.ErrCodeEmbeddingFailed, "decode embedding response", err)
	}
	return nil
}

// classifyAPIError maps non-200 API responses to error codes. Quota
// exhaustion and server errors are retryable; key and region rejections
// are not.
func classifyAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fcerrors.New(fcerrors.ErrCodeEmbedQuota,
			fmt.Sprintf("embedding quota exhausted: %s", detail), nil).
			WithSuggestion("wait for the quota window to reset or lower the request rate")
	case resp.StatusCode >= 500:
		return fcerrors.New(fcerrors.ErrCodeNetworkUnavailable,
			fmt.Sprintf("embedding backend error %d: %s", resp.StatusCode, detail), nil)
	default:
		return fcerrors.New(fcerrors.ErrCodeEmbedRejected,
			fmt.Sprintf("embedding request rejected %d: %s", resp.StatusCode, detail), nil).
			WithSuggestion("check the API key and whether the Gemini API is available in your region")
	}
}

// Dimensions returns the embedding dimension.
func (g *GeminiEmbedder) Dimensions() int {
	return g.dimensions
}

// ModelName returns the model identifier.
func (g *GeminiEmbedder) ModelName() string {
	return g.model
}

// Available probes the backend with a minimal embed call.
func (g *GeminiEmbedder) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:embedContent", g.baseURL, g.model)
	var resp geminiEmbedResponse
	err := g.post(probeCtx, url, g.newRequest("ping", TaskQuery), &resp)
	return err == nil
}

// Close releases resources.
func (g *GeminiEmbedder) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
