package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_IncludesSuggestionAndCode(t *testing.T) {
	err := New(ErrCodeConfigNotFound, "config file not found", nil).
		WithSuggestion("run 'fascase config init' to create one")

	out := FormatForUser(err, false)

	assert.Contains(t, out, "Error: config file not found")
	assert.Contains(t, out, "Suggestion: run 'fascase config init'")
	assert.Contains(t, out, "[ERR_101_CONFIG_NOT_FOUND]")
}

func TestFormatForUser_DebugIncludesCause(t *testing.T) {
	cause := errors.New("open /data/cases.json: no such file")
	err := New(ErrCodeFileNotFound, "corpus file missing", cause)

	plain := FormatForUser(err, false)
	debug := FormatForUser(err, true)

	assert.NotContains(t, plain, "no such file")
	assert.Contains(t, debug, "no such file")
}

func TestFormatForUser_StandardErrorPassthrough(t *testing.T) {
	err := errors.New("just a plain error")
	assert.Equal(t, "just a plain error", FormatForUser(err, false))
}

func TestFormatForCLI_WrapsStandardErrors(t *testing.T) {
	out := FormatForCLI(errors.New("boom"))

	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, ErrCodeInternal)
}

func TestFormatForCLI_NilReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatForCLI(nil))
}

func TestFormatJSON_RoundTrips(t *testing.T) {
	err := New(ErrCodeEmbedQuota, "embedding quota exceeded", errors.New("429 from backend")).
		WithDetail("model", "gemini-embedding-001").
		WithSuggestion("wait for the quota window to reset")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, ErrCodeEmbedQuota, decoded["code"])
	assert.Equal(t, "NETWORK", decoded["category"])
	assert.Equal(t, true, decoded["retryable"])
	assert.Equal(t, "429 from backend", decoded["cause"])
}

func TestFormatForLog_FlattensDetails(t *testing.T) {
	err := New(ErrCodeTableMismatch, "vector table rejected", nil).
		WithDetail("table", "embeddings_ad_description.json")

	fields := FormatForLog(err)

	assert.Equal(t, ErrCodeTableMismatch, fields["error_code"])
	assert.Equal(t, "embeddings_ad_description.json", fields["detail_table"])
}

func TestFormatForLog_StandardError(t *testing.T) {
	fields := FormatForLog(errors.New("plain"))
	assert.Equal(t, "plain", fields["error"])
}

func TestFormatForLog_NilReturnsNil(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
}
