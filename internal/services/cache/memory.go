package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL applies when Set is called with a non-positive TTL.
const DefaultTTL = 30 * time.Minute

// MemoryCache is an in-process Cache bounded by entry count.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]*cacheItem
	maxEntries int

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type cacheItem struct {
	value  []byte
	expiry time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a cache holding at most maxEntries live items
// (0 = unbounded) and sweeping expired items every cleanupInterval.
func NewMemoryCache(maxEntries int, cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	mc := &MemoryCache{
		items:      make(map[string]*cacheItem),
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.cleanupExpired(cleanupInterval)

	return mc
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	if !exists {
		mc.misses.Add(1)
		return nil, false
	}

	if time.Now().After(item.expiry) {
		_ = mc.Delete(ctx, key)
		mc.misses.Add(1)
		return nil, false
	}

	mc.hits.Add(1)
	return item.value, true
}

// Set stores a value in the cache with a TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.items[key]; !exists && mc.maxEntries > 0 && len(mc.items) >= mc.maxEntries {
		mc.evictLocked()
	}

	mc.items[key] = &cacheItem{
		value:  value,
		expiry: time.Now().Add(ttl),
	}
	mc.sets.Add(1)
	return nil
}

// Delete removes a value from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	if _, exists := mc.items[key]; exists {
		delete(mc.items, key)
		mc.deletes.Add(1)
	}
	mc.mu.Unlock()
	return nil
}

// Clear removes all values from the cache
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	mc.items = make(map[string]*cacheItem)
	mc.mu.Unlock()
	return nil
}

// Has checks if a live key exists in the cache
func (mc *MemoryCache) Has(ctx context.Context, key string) bool {
	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	return exists && time.Now().Before(item.expiry)
}

// Stats returns cache statistics
func (mc *MemoryCache) Stats() CacheStats {
	mc.mu.RLock()
	entries := int64(len(mc.items))
	mc.mu.RUnlock()

	return CacheStats{
		Hits:       mc.hits.Load(),
		Misses:     mc.misses.Load(),
		Sets:       mc.sets.Load(),
		Deletes:    mc.deletes.Load(),
		Evictions:  mc.evictions.Load(),
		Entries:    entries,
		MaxEntries: int64(mc.maxEntries),
	}
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (mc *MemoryCache) Stop() {
	mc.stopOnce.Do(func() {
		close(mc.stopCh)
	})
	mc.wg.Wait()
}

func (mc *MemoryCache) cleanupExpired(interval time.Duration) {
	defer mc.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.removeExpired()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) removeExpired() {
	now := time.Now()
	mc.mu.Lock()
	for key, item := range mc.items {
		if now.After(item.expiry) {
			delete(mc.items, key)
			mc.evictions.Add(1)
		}
	}
	mc.mu.Unlock()
}

// evictLocked drops expired items, or the item closest to expiry when none
// have expired. Caller holds mc.mu.
func (mc *MemoryCache) evictLocked() {
	now := time.Now()
	var (
		victim     string
		soonest    time.Time
		anyExpired bool
	)
	for key, item := range mc.items {
		if now.After(item.expiry) {
			delete(mc.items, key)
			mc.evictions.Add(1)
			anyExpired = true
			continue
		}
		if victim == "" || item.expiry.Before(soonest) {
			victim, soonest = key, item.expiry
		}
	}
	if anyExpired || victim == "" {
		return
	}
	delete(mc.items, victim)
	mc.evictions.Add(1)
}
