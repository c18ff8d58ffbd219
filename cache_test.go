package portfolio

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

// countingStore counts List calls and serves a fixed set of items.
type countingStore struct {
	Store
	mu    sync.Mutex
	calls int
	items []content.Item
}

func (s *countingStore) List(_ context.Context, _ content.Collection, _ ListOptions) ([]content.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.items, nil
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestMemoryCacheHitsAndInvalidate(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{items: []content.Item{{ID: "1", Title: "One"}}}
	c := NewMemoryCache(s, time.Minute)

	for i := 0; i < 3; i++ {
		items, err := c.Published(ctx, content.Blogs)
		if err != nil || len(items) != 1 {
			t.Fatalf("Published = %v, %v", items, err)
		}
	}
	if s.count() != 1 {
		t.Fatalf("expected 1 store call, got %d", s.count())
	}

	// Collections are cached independently.
	if _, err := c.Published(ctx, content.Games); err != nil {
		t.Fatal(err)
	}
	if s.count() != 2 {
		t.Fatalf("expected 2 store calls, got %d", s.count())
	}

	c.Invalidate(ctx, content.Blogs)
	if _, err := c.Published(ctx, content.Blogs); err != nil {
		t.Fatal(err)
	}
	if s.count() != 3 {
		t.Fatalf("invalidate should force a reload, got %d calls", s.count())
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{}
	c := NewMemoryCache(s, 10*time.Millisecond)

	if _, err := c.Published(ctx, content.Projects); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Published(ctx, content.Projects); err != nil {
		t.Fatal(err)
	}
	if s.count() != 2 {
		t.Fatalf("expired entry should reload, got %d calls", s.count())
	}
}

func TestMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{items: []content.Item{{ID: "1"}}}
	c := NewMemoryCache(s, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Published(ctx, content.Blogs); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if s.count() != 1 {
		t.Errorf("concurrent readers should share one load, got %d calls", s.count())
	}
}

func TestFilterByTagAndCollectTags(t *testing.T) {
	items := []content.Item{
		{ID: "1", Tags: []string{"Go", " web "}},
		{ID: "2", Tags: []string{"rust"}},
		{ID: "3", Tags: []string{"go", ""}},
	}
	if got := filterByTag(items, ""); len(got) != 3 {
		t.Errorf("empty tag should keep all items, got %d", len(got))
	}
	got := filterByTag(items, "GO")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("filterByTag = %+v", got)
	}
	if tags := strings.Join(collectTags(items), ","); tags != "go,rust,web" {
		t.Errorf("collectTags = %q", tags)
	}
}

func TestRedisCacheFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	s := &countingStore{items: []content.Item{{ID: "1"}}}
	c := NewRedisCache(client, s, time.Minute, logger.Nop())

	items, err := c.Published(ctx, content.Blogs)
	if err != nil {
		t.Fatalf("Published should fall back to the store, got %v", err)
	}
	if len(items) != 1 || s.count() != 1 {
		t.Errorf("items = %+v, calls = %d", items, s.count())
	}
	c.Invalidate(ctx, content.Blogs)
}

// invalidatingStore runs onList after loading, standing in for a save that
// lands while the cache is being filled.
type invalidatingStore struct {
	countingStore
	onList func()
}

func (s *invalidatingStore) List(ctx context.Context, coll content.Collection, opts ListOptions) ([]content.Item, error) {
	items, err := s.countingStore.List(ctx, coll, opts)
	if fn := s.onList; fn != nil {
		s.onList = nil
		fn()
	}
	return items, err
}

// newTestRedis connects to PORTFOLIO_TEST_REDIS_ADDR or skips.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("PORTFOLIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTFOLIO_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis at %s: %v", addr, err)
	}
	if err := client.Del(ctx, publishedKey(content.Games), generationKey(content.Games)).Err(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisCacheSkipsWriteAfterConcurrentInvalidate(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	s := &invalidatingStore{countingStore: countingStore{items: []content.Item{{ID: "1"}}}}
	c := NewRedisCache(client, s, time.Minute, logger.Nop())
	s.onList = func() { c.Invalidate(ctx, content.Games) }

	items, err := c.Published(ctx, content.Games)
	if err != nil || len(items) != 1 {
		t.Fatalf("Published = %+v, %v", items, err)
	}
	if n := client.Exists(ctx, publishedKey(content.Games)).Val(); n != 0 {
		t.Fatal("a load overtaken by an invalidation must not be cached")
	}

	if _, err := c.Published(ctx, content.Games); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Published(ctx, content.Games); err != nil {
		t.Fatal(err)
	}
	if s.count() != 2 {
		t.Errorf("expected the second load to be cached, store calls = %d", s.count())
	}
}

func TestConnectRedisGivesUp(t *testing.T) {
	_, err := ConnectRedis(context.Background(), RedisOptions{
		Addr:           "127.0.0.1:1",
		ConnectTimeout: 100 * time.Millisecond,
		RetryInterval:  10 * time.Millisecond,
	}, logger.Nop())
	if err == nil {
		t.Fatal("expected error connecting to a closed port")
	}
}

func TestPublishedKey(t *testing.T) {
	if got := publishedKey(content.Games); got != "portfolio:published:games" {
		t.Errorf("publishedKey = %q", got)
	}
	if got := generationKey(content.Games); got != "portfolio:published:games:gen" {
		t.Errorf("generationKey = %q", got)
	}
}
