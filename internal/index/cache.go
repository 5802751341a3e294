package index

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// EmbedCacheFile is the builder's cache database under the data dir.
const EmbedCacheFile = "fascase.db"

// EmbedCache persists document embeddings between builder runs so a
// re-run only embeds texts that changed. Keys cover model and text, so a
// model switch never reuses stale vectors.
type EmbedCache struct {
	db *sql.DB
}

// OpenEmbedCache opens (creating if needed) the cache database at path.
func OpenEmbedCache(path string) (*EmbedCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS embedding_cache (
			key TEXT PRIMARY KEY,
			dim INTEGER NOT NULL,
			vector BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create embedding cache schema: %w", err)
	}
	return &EmbedCache{db: db}, nil
}

// CacheKey derives the cache key for one (model, text) pair.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for key, or nil when absent.
func (c *EmbedCache) Get(key string) ([]float32, error) {
	var dim int
	var blob []byte
	err := c.db.QueryRow(`SELECT dim, vector FROM embedding_cache WHERE key = ?`, key).
		Scan(&dim, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read embedding cache: %w", err)
	}
	if len(blob) != dim*4 {
		// Corrupt row; treat as a miss so the builder re-embeds.
		return nil, nil
	}
	return decodeVector(blob, dim), nil
}

// Put stores a vector under key, replacing any existing entry.
func (c *EmbedCache) Put(key string, vec []float32) error {
	_, err := c.db.Exec(`
		INSERT INTO embedding_cache (key, dim, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET dim = excluded.dim, vector = excluded.vector
	`, key, len(vec), encodeVector(vec))
	if err != nil {
		return fmt.Errorf("write embedding cache: %w", err)
	}
	return nil
}

// Close closes the cache database.
func (c *EmbedCache) Close() error {
	return c.db.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}
