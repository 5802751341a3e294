package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fascase/fascase/internal/config"
)

func TestEngineConfig_MapsSearchSettings(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Search.SemanticWeight = 0.6
	cfg.Search.KeywordWeight = 0.4
	cfg.Search.DefaultLimit = 15
	cfg.Search.CacheSize = 64
	cfg.Rerank.PrimaryField = "violation_summary"

	ec := engineConfig(cfg)

	assert.Equal(t, 0.6, ec.SemanticWeight)
	assert.Equal(t, 0.4, ec.KeywordWeight)
	assert.Equal(t, 15, ec.DefaultLimit)
	assert.Equal(t, 64, ec.CacheSize)
	assert.Equal(t, "violation_summary", ec.Rerank.PrimaryField)
	assert.Equal(t, cfg.Rerank.Fields, ec.Rerank.Fields)
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := config.NewConfig()

	applyServeOverrides(cfg, serveOptions{
		transport: "mcp",
		host:      "127.0.0.1",
		port:      9200,
		dataDir:   "/tmp/cases",
		watch:     true,
	})

	assert.Equal(t, "mcp", cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "/tmp/cases", cfg.Data.Dir)
	assert.True(t, cfg.Data.Watch)
}

func TestApplyServeOverrides_ZeroValuesKeepConfig(t *testing.T) {
	cfg := config.NewConfig()

	applyServeOverrides(cfg, serveOptions{})

	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.False(t, cfg.Data.Watch)
}

func TestHTTPServerConfig_ParsesShutdownTimeout(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8123
	cfg.Server.ShutdownTimeout = "3s"

	hc := httpServerConfig(cfg, true)

	assert.Equal(t, "127.0.0.1:8123", hc.Addr)
	assert.Equal(t, 3*time.Second, hc.ShutdownTimeout)
	assert.True(t, hc.EnablePprof)
}

func TestHTTPServerConfig_BadTimeoutFallsBack(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Server.ShutdownTimeout = "not-a-duration"

	hc := httpServerConfig(cfg, false)

	assert.Equal(t, 10*time.Second, hc.ShutdownTimeout)
}

func TestServeCmd_HTTPStartsAndStops(t *testing.T) {
	// Given: a workspace with a built index
	setupWorkspace(t)
	buildIndex(t)

	// When: serving on an ephemeral port until the context expires
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	cmd := newServeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--host", "127.0.0.1", "--port", "18942"})

	err := cmd.ExecuteContext(ctx)

	// Then: shutdown is graceful
	require.NoError(t, err)
}

func TestServeCmd_RejectsBadTransport(t *testing.T) {
	setupWorkspace(t)

	cmd := newServeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--transport", "carrier-pigeon"})

	err := cmd.Execute()
	require.Error(t, err)
}
