package search

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// responseCache memoizes whole search responses. The corpus is immutable
// per index generation, so a cached response never goes stale within one;
// keys embed the generation so a reload invalidates everything at once.
type responseCache struct {
	lru *lru.Cache[[32]byte, *Response]
}

// newResponseCache returns nil for size <= 0 (caching disabled); the
// nil receiver is safe to use.
func newResponseCache(size int) *responseCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[[32]byte, *Response](size)
	if err != nil {
		return nil
	}
	return &responseCache{lru: c}
}

// key builds the cache key from the canonical form of one request.
func (rc *responseCache) key(generation uint64, query string, opts Options) [32]byte {
	h := sha256.New()
	fmt.Fprintf(h, "g=%d\nq=%s\nk=%d\n", generation, strings.TrimSpace(query), opts.Limit)

	years := append([]int(nil), opts.Filters.Years...)
	sort.Ints(years)
	fmt.Fprintf(h, "y=%v\n", years)

	for _, cat := range []struct {
		tag  string
		vals []string
	}{
		{"r", opts.Filters.Regions},
		{"i", opts.Filters.Industries},
		{"a", opts.Filters.Statutes},
	} {
		sorted := append([]string(nil), cat.vals...)
		sort.Strings(sorted)
		fmt.Fprintf(h, "%s=%v\n", cat.tag, sorted)
	}

	var key [32]byte
	h.Sum(key[:0])
	return key
}

func (rc *responseCache) get(generation uint64, query string, opts Options) (*Response, bool) {
	if rc == nil {
		return nil, false
	}
	return rc.lru.Get(rc.key(generation, query, opts))
}

func (rc *responseCache) put(generation uint64, query string, opts Options, resp *Response) {
	if rc == nil {
		return
	}
	rc.lru.Add(rc.key(generation, query, opts), resp)
}
