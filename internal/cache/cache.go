// Package cache stores people-search results so repeated lookups for the
// same name and address skip the rate-limited site entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/docketscan/internal/model"
)

// Cache defines the byte-level store behind a CandidateCache
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// CacheKey generates a cache key from a lookup URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "lookup-v1-" + hex.EncodeToString(hash[:])
}

// CandidateCache stores phone candidates keyed by lookup URL
type CandidateCache struct {
	store Cache
	ttl   time.Duration
}

// NewCandidateCache wraps store; ttl of zero uses the store's default
func NewCandidateCache(store Cache, ttl time.Duration) *CandidateCache {
	return &CandidateCache{store: store, ttl: ttl}
}

// New builds the cache described by cfg: memory only, or memory over disk
// when a directory is configured. Returns nil when caching is disabled.
func New(cfg model.CacheConfig) *CandidateCache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewCandidateCache(NewMemoryCache(cfg.TTL, 10*time.Minute), cfg.TTL)
	}
	return NewCandidateCache(NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL), cfg.TTL)
}

// Get returns the cached candidates for url. An empty result is a valid hit.
func (c *CandidateCache) Get(url string) ([]model.PhoneCandidate, bool) {
	data, found := c.store.Get(CacheKey(url))
	if !found {
		return nil, false
	}

	var candidates []model.PhoneCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		_ = c.store.Delete(CacheKey(url))
		return nil, false
	}
	return candidates, true
}

// Set stores the candidates found for url
func (c *CandidateCache) Set(url string, candidates []model.PhoneCandidate) error {
	if candidates == nil {
		candidates = []model.PhoneCandidate{}
	}

	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	return c.store.Set(CacheKey(url), data, c.ttl)
}
