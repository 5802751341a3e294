package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, includes additional technical details.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	fe, ok := err.(*FascaseError)
	if !ok {
		// Standard error - just return message
		return err.Error()
	}

	var sb strings.Builder

	// Main error message
	sb.WriteString("Error: ")
	sb.WriteString(fe.Message)
	sb.WriteString("\n")

	// Suggestion if available
	if fe.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(fe.Suggestion)
		sb.WriteString("\n")
	}

	// Error code for reference
	sb.WriteString(fmt.Sprintf("\n[%s]", fe.Code))

	if debug && fe.Cause != nil {
		sb.WriteString(fmt.Sprintf("\nCause: %v", fe.Cause))
	}

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	fe, ok := err.(*FascaseError)
	if !ok {
		// Wrap standard error
		fe = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	// Error message with code
	sb.WriteString(fmt.Sprintf("Error: %s\n", fe.Message))

	// Suggestion if available
	if fe.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", fe.Suggestion))
	}

	// Code reference
	sb.WriteString(fmt.Sprintf("  Code: %s\n", fe.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
// Suitable for machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	fe, ok := err.(*FascaseError)
	if !ok {
		// Wrap standard error
		fe = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       fe.Code,
		Message:    fe.Message,
		Category:   string(fe.Category),
		Severity:   string(fe.Severity),
		Details:    fe.Details,
		Suggestion: fe.Suggestion,
		Retryable:  fe.Retryable,
	}

	if fe.Cause != nil {
		je.Cause = fe.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	fe, ok := err.(*FascaseError)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": fe.Code,
		"message":    fe.Message,
		"category":   string(fe.Category),
		"severity":   string(fe.Severity),
		"retryable":  fe.Retryable,
	}

	if fe.Cause != nil {
		result["cause"] = fe.Cause.Error()
	}

	if fe.Suggestion != "" {
		result["suggestion"] = fe.Suggestion
	}

	for k, v := range fe.Details {
		result["detail_"+k] = v
	}

	return result
}
