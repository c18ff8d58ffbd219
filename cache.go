package portfolio

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eringen/portfolio/content"
)

// Cache serves the published items of a collection to anonymous readers.
// Admin reads always go to the store.
type Cache interface {
	Published(ctx context.Context, coll content.Collection) ([]content.Item, error)
	Invalidate(ctx context.Context, coll content.Collection)
}

type cacheEntry struct {
	items   []content.Item
	fetched time.Time
}

// MemoryCache is an in-process TTL cache of published items per collection.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[content.Collection]cacheEntry
	ttl     time.Duration
	store   Store
}

// NewMemoryCache creates a MemoryCache backed by the given Store.
func NewMemoryCache(s Store, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[content.Collection]cacheEntry),
		ttl:     ttl,
		store:   s,
	}
}

func (c *MemoryCache) valid(coll content.Collection) ([]content.Item, bool) {
	e, ok := c.entries[coll]
	if !ok || time.Since(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.items, true
}

// Invalidate drops the collection so the next read reloads it.
func (c *MemoryCache) Invalidate(_ context.Context, coll content.Collection) {
	c.mu.Lock()
	delete(c.entries, coll)
	c.mu.Unlock()
}

// Published returns cached published items, reloading after the TTL.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *MemoryCache) Published(ctx context.Context, coll content.Collection) ([]content.Item, error) {
	c.mu.RLock()
	if items, ok := c.valid(coll); ok {
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if items, ok := c.valid(coll); ok {
		return items, nil
	}
	items, err := c.store.List(ctx, coll, ListOptions{})
	if err != nil {
		return nil, err
	}
	c.entries[coll] = cacheEntry{items: items, fetched: time.Now()}
	return items, nil
}

// noCache reads straight through to the store.
type noCache struct {
	store Store
}

func (n noCache) Published(ctx context.Context, coll content.Collection) ([]content.Item, error) {
	return n.store.List(ctx, coll, ListOptions{})
}

func (noCache) Invalidate(context.Context, content.Collection) {}

// filterByTag returns items carrying tag. An empty tag returns items unchanged.
func filterByTag(items []content.Item, tag string) []content.Item {
	if tag == "" {
		return items
	}
	var filtered []content.Item
	for _, it := range items {
		if it.HasTag(tag) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// collectTags returns the sorted, lowercased set of tags across items.
func collectTags(items []content.Item) []string {
	set := make(map[string]struct{})
	for _, it := range items {
		for _, t := range it.Tags {
			if t = normalizeTag(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
