package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// LeadCache é um cache em memória com TTL por entrada. Problema de cache
// nunca mascara o erro do loader: se o loader falhou, é o erro dele que sobe;
// se só o cache falhou, a leitura segue direto no loader.
type LeadCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	logger  *slog.Logger
}

type cacheEntry struct {
	lead      *entity.Lead
	expiresAt time.Time
}

func NewLeadCache(ttl time.Duration, logger *slog.Logger) *LeadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &LeadCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		logger:  logger,
	}
	go c.cleanup()
	return c
}

func (c *LeadCache) GetOrSet(ctx context.Context, key string, loader func(context.Context) (*entity.Lead, error)) (*entity.Lead, error) {
	if lead, ok := c.get(key); ok {
		c.logger.Debug("cache hit", "key", key)
		return lead, nil
	}

	c.logger.Debug("cache miss", "key", key)
	lead, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	c.set(key, lead)
	return lead, nil
}

func (c *LeadCache) Del(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *LeadCache) get(key string) (*entity.Lead, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.lead, true
}

func (c *LeadCache) set(key string, lead *entity.Lead) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{lead: lead, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *LeadCache) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
