package mcp

import (
	"context"
	"errors"
	"fmt"

	fcerrors "github.com/fascase/fascase/internal/errors"
)

// Custom MCP error codes for fascase.
const (
	// ErrCodeIndexNotReady indicates the case index is not loaded yet.
	ErrCodeIndexNotReady = -32001

	// ErrCodeEmbeddingFailed indicates the embedding backend failed.
	ErrCodeEmbeddingFailed = -32002

	// ErrCodeTimeout indicates the request timed out or was cancelled.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError is an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// MapError converts internal errors to MCP protocol errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was cancelled."}
	}

	var fe *fcerrors.FascaseError
	if errors.As(err, &fe) {
		return mapFascaseError(fe)
	}
	return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
}

func mapFascaseError(fe *fcerrors.FascaseError) *MCPError {
	switch fe.Code {
	case fcerrors.ErrCodeIndexNotReady:
		return &MCPError{
			Code:    ErrCodeIndexNotReady,
			Message: "Case index not loaded. Run 'fascase embed' or wait for the data directory to load.",
		}
	case fcerrors.ErrCodeNetworkTimeout, fcerrors.ErrCodeNetworkUnavailable,
		fcerrors.ErrCodeEmbedQuota, fcerrors.ErrCodeEmbeddingFailed:
		return &MCPError{
			Code:    ErrCodeEmbeddingFailed,
			Message: "Embedding backend unavailable. Results are keyword-only.",
		}
	}

	if fe.Category == fcerrors.CategoryValidation {
		return &MCPError{Code: ErrCodeInvalidParams, Message: fe.Message}
	}
	return &MCPError{Code: ErrCodeInternalError, Message: fe.Message}
}
