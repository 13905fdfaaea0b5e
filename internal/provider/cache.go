package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"docqa/internal/config"
)

// Cache memoizes provider bundles by configuration fingerprint so concurrent
// sessions with the same credentials share one underlying client instead of
// re-dialing the provider per session.
type Cache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Bundle]
}

// NewCache creates a bundle cache holding at most size distinct configs.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("provider: cache size must be greater than zero")
	}
	cache, err := lru.New[string, *Bundle](size)
	if err != nil {
		return nil, fmt.Errorf("provider: init cache: %w", err)
	}
	return &Cache{cache: cache}, nil
}

// Get returns the bundle for cfg, constructing it on first use. Construction
// runs under the cache lock so a config is only ever built once.
func (c *Cache) Get(ctx context.Context, cfg config.ProviderConfig) (*Bundle, error) {
	key := fingerprint(cfg)
	c.mu.Lock()
	defer c.mu.Unlock()
	if bundle, ok := c.cache.Get(key); ok {
		return bundle, nil
	}
	bundle, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, bundle)
	return bundle, nil
}

func fingerprint(cfg config.ProviderConfig) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		cfg.Type,
		cfg.APIKeyEnv,
		cfg.ChatModel,
		cfg.EmbeddingModel,
		cfg.BaseURL,
		strconv.Itoa(cfg.BatchSize),
		strconv.FormatFloat(cfg.Temperature, 'f', -1, 64),
	}, "|")))
	return hex.EncodeToString(sum[:16])
}
