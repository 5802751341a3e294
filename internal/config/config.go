// Package config loads and validates the fascase configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults (NewConfig)
//  2. User config (~/.config/fascase/config.yaml)
//  3. Working-directory config (fascase.yaml)
//  4. Environment variables (FASCASE_*)
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fascase/fascase/internal/store"
)

// Config is the complete fascase configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Data       DataConfig       `yaml:"data" json:"data"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Rerank     RerankConfig     `yaml:"rerank" json:"rerank"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" json:"telemetry"`
}

// ServerConfig configures the HTTP/MCP surface.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	// Transport selects the serving mode: "http" or "mcp" (stdio).
	Transport string `yaml:"transport" json:"transport"`

	// CORSOrigins are the allowed origins for browser clients.
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	// ShutdownTimeout bounds graceful shutdown ("10s").
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DataConfig locates the case corpus and vector tables.
type DataConfig struct {
	// Dir is the directory holding cases.json and the embeddings_*.json
	// tables.
	Dir string `yaml:"dir" json:"dir"`

	// Watch enables the fsnotify watcher that rebuilds the index when
	// files under Dir change.
	Watch bool `yaml:"watch" json:"watch"`

	// WatchDebounce coalesces bursts of file events ("2s").
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is "gemini", "static" (deterministic, offline) or "none".
	Provider string `yaml:"provider" json:"provider"`

	Model      string `yaml:"model" json:"model"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`

	// BatchSize is texts per batchEmbedContents call (API limit 100).
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// Timeout bounds a single embedding call ("60s").
	Timeout string `yaml:"timeout" json:"timeout"`

	// QueryCacheSize is the LRU capacity for query embeddings.
	QueryCacheSize int `yaml:"query_cache_size" json:"query_cache_size"`
}

// SearchConfig configures retrieval, fusion and response limits.
type SearchConfig struct {
	// SemanticWeight and KeywordWeight must sum to 1.0.
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`
	KeywordWeight  float64 `yaml:"keyword_weight" json:"keyword_weight"`

	// CandidatePool is how many fused candidates survive into
	// filtering and reranking.
	CandidatePool int `yaml:"candidate_pool" json:"candidate_pool"`

	// KeywordPool is how many keyword hits feed fusion.
	KeywordPool int `yaml:"keyword_pool" json:"keyword_pool"`

	DefaultLimit   int `yaml:"default_limit" json:"default_limit"`
	MaxLimit       int `yaml:"max_limit" json:"max_limit"`
	MaxQueryLength int `yaml:"max_query_length" json:"max_query_length"`

	// CacheSize is the LRU capacity for whole search responses.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// RerankConfig configures the per-field rerank pass.
type RerankConfig struct {
	// PrimaryField falls back to the fused score when its vector table
	// is missing.
	PrimaryField string `yaml:"primary_field" json:"primary_field"`

	// Fields maps rerank field names to their weights. All configured
	// weights enter the normalization denominator whether or not the
	// field has a vector table.
	Fields map[string]float64 `yaml:"fields" json:"fields"`
}

// LoggingConfig configures the slog JSON logger.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
	Stderr    bool   `yaml:"stderr" json:"stderr"`
}

// TelemetryConfig configures query metrics collection.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	DBPath  string `yaml:"db_path" json:"db_path"`
}

// NewConfig creates a Config with the default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8000,
			Transport: "http",
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:3001",
				"http://127.0.0.1:3001",
			},
			ShutdownTimeout: "10s",
			LogLevel:        "info",
		},
		Data: DataConfig{
			Dir:           "data",
			Watch:         false,
			WatchDebounce: "2s",
		},
		Embeddings: EmbeddingsConfig{
			Provider:       "gemini",
			Model:          "gemini-embedding-001",
			Dimensions:     768,
			BatchSize:      100,
			Timeout:        "60s",
			QueryCacheSize: 512,
		},
		Search: SearchConfig{
			SemanticWeight: 0.7,
			KeywordWeight:  0.3,
			CandidatePool:  100,
			KeywordPool:    50,
			DefaultLimit:   20,
			MaxLimit:       50,
			MaxQueryLength: 5000,
			CacheSize:      256,
		},
		Rerank: RerankConfig{
			PrimaryField: store.FieldFASArguments,
			Fields: map[string]float64{
				store.FieldFASArguments:     1.0,
				store.FieldViolationSummary: 0.8,
				store.FieldAdDescription:    0.6,
				store.FieldAdContentCited:   0.7,
				store.FieldLegalProvisions:  0.5,
			},
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
			Stderr:    false,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

// GetUserConfigPath returns the path of the user-level configuration file,
// following the XDG Base Directory convention.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fascase", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "fascase", "config.yaml")
	}
	return filepath.Join(home, ".config", "fascase", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	_, err := os.Stat(GetUserConfigPath())
	return err == nil
}

// Load builds the effective configuration for a working directory.
func Load(dir string) (*Config, error) {
	// A .env next to fascase.yaml supplies GEMINI_API_KEY and FASCASE_*
	// overrides without touching the shell environment. Existing
	// variables win; a missing file is fine.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("user config: %w", err)
		}
	}

	if err := cfg.loadFromDir(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromDir merges fascase.yaml (or .yml) from dir if present.
func (c *Config) loadFromDir(dir string) error {
	for _, name := range []string{"fascase.yaml", "fascase.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML merges one YAML file's non-zero values over c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Server.Host != "" {
		c.Server.Host = other.Server.Host
	}
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if len(other.Server.CORSOrigins) > 0 {
		c.Server.CORSOrigins = other.Server.CORSOrigins
	}
	if other.Server.ShutdownTimeout != "" {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Data.Dir != "" {
		c.Data.Dir = other.Data.Dir
	}
	if other.Data.Watch {
		c.Data.Watch = true
	}
	if other.Data.WatchDebounce != "" {
		c.Data.WatchDebounce = other.Data.WatchDebounce
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.Timeout != "" {
		c.Embeddings.Timeout = other.Embeddings.Timeout
	}
	if other.Embeddings.QueryCacheSize != 0 {
		c.Embeddings.QueryCacheSize = other.Embeddings.QueryCacheSize
	}

	// Weights merge as a pair so a file can retune the split without
	// tripping the sum check against a stale default.
	if other.Search.SemanticWeight != 0 || other.Search.KeywordWeight != 0 {
		c.Search.SemanticWeight = other.Search.SemanticWeight
		c.Search.KeywordWeight = other.Search.KeywordWeight
	}
	if other.Search.CandidatePool != 0 {
		c.Search.CandidatePool = other.Search.CandidatePool
	}
	if other.Search.KeywordPool != 0 {
		c.Search.KeywordPool = other.Search.KeywordPool
	}
	if other.Search.DefaultLimit != 0 {
		c.Search.DefaultLimit = other.Search.DefaultLimit
	}
	if other.Search.MaxLimit != 0 {
		c.Search.MaxLimit = other.Search.MaxLimit
	}
	if other.Search.MaxQueryLength != 0 {
		c.Search.MaxQueryLength = other.Search.MaxQueryLength
	}
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}

	if other.Rerank.PrimaryField != "" {
		c.Rerank.PrimaryField = other.Rerank.PrimaryField
	}
	if len(other.Rerank.Fields) > 0 {
		c.Rerank.Fields = other.Rerank.Fields
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
	if other.Logging.Stderr {
		c.Logging.Stderr = true
	}

	if other.Telemetry.DBPath != "" {
		c.Telemetry.DBPath = other.Telemetry.DBPath
	}
}

// applyEnvOverrides applies FASCASE_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FASCASE_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("FASCASE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("FASCASE_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("FASCASE_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("FASCASE_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
		c.Logging.Level = v
	}
	if v := os.Getenv("FASCASE_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("FASCASE_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("FASCASE_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("FASCASE_EMBEDDING_DIMENSION"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			c.Embeddings.Dimensions = d
		}
	}
	if v := os.Getenv("FASCASE_SEMANTIC_WEIGHT"); v != "" {
		if w, err := parseFloat(v); err == nil && w >= 0 && w <= 1 {
			c.Search.SemanticWeight = w
			c.Search.KeywordWeight = 1 - w
		}
	}
	if v := os.Getenv("FASCASE_DEFAULT_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.DefaultLimit = k
		}
	}
	if v := os.Getenv("FASCASE_CANDIDATE_POOL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.CandidatePool = n
		}
	}
}

// APIKey returns the Gemini API key from the environment. The key never
// lives in the YAML config.
func APIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// Validate checks the final configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	validTransports := map[string]bool{"http": true, "mcp": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'http' or 'mcp', got %s", c.Server.Transport)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	if c.Search.SemanticWeight < 0 || c.Search.SemanticWeight > 1 {
		return fmt.Errorf("search.semantic_weight must be between 0 and 1, got %f", c.Search.SemanticWeight)
	}
	if c.Search.KeywordWeight < 0 || c.Search.KeywordWeight > 1 {
		return fmt.Errorf("search.keyword_weight must be between 0 and 1, got %f", c.Search.KeywordWeight)
	}
	sum := c.Search.SemanticWeight + c.Search.KeywordWeight
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("search.semantic_weight + search.keyword_weight must equal 1.0, got %.2f", sum)
	}
	if c.Search.CandidatePool < 1 {
		return fmt.Errorf("search.candidate_pool must be positive, got %d", c.Search.CandidatePool)
	}
	if c.Search.KeywordPool < 1 {
		return fmt.Errorf("search.keyword_pool must be positive, got %d", c.Search.KeywordPool)
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit must be in 1..%d, got %d", c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Search.MaxQueryLength < 1 {
		return fmt.Errorf("search.max_query_length must be positive, got %d", c.Search.MaxQueryLength)
	}

	validProviders := map[string]bool{"gemini": true, "static": true, "none": true}
	if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
		return fmt.Errorf("embeddings.provider must be 'gemini', 'static', or 'none', got %s", c.Embeddings.Provider)
	}
	if c.Embeddings.Dimensions < 1 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	if c.Embeddings.BatchSize < 1 || c.Embeddings.BatchSize > 100 {
		return fmt.Errorf("embeddings.batch_size must be in 1..100, got %d", c.Embeddings.BatchSize)
	}

	for field, w := range c.Rerank.Fields {
		if w < 0 {
			return fmt.Errorf("rerank.fields[%s] must be non-negative, got %f", field, w)
		}
	}
	if len(c.Rerank.Fields) == 0 {
		return fmt.Errorf("rerank.fields must name at least one field")
	}
	if _, ok := c.Rerank.Fields[c.Rerank.PrimaryField]; !ok {
		return fmt.Errorf("rerank.primary_field %q is not in rerank.fields", c.Rerank.PrimaryField)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
