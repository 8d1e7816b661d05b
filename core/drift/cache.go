package drift

import (
	"context"
	"sync"
	"time"

	"pms-sync/core/guesty"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Cache holds pre-built indices for fast targeted drift checks.
type Cache struct {
	// LocalIndex is the indexed map of local items by vendor id.
	LocalIndex map[string]LocalItem

	// RemoteIndex is the indexed map of vendor documents by id.
	RemoteIndex map[string]RemoteItem

	// Built is the timestamp when this cache was built.
	Built time.Time

	// TTL is the time-to-live for this cache.
	TTL time.Duration
}

// IsExpired returns true if this cache has expired based on its TTL.
func (c *Cache) IsExpired() bool {
	if c.TTL == 0 {
		return true // No caching
	}
	return time.Since(c.Built) > c.TTL
}

// cacheStore holds all drift caches keyed by spec cache key.
type cacheStore struct {
	mu     sync.RWMutex
	caches map[string]*Cache
	sf     singleflight.Group
}

var globalCacheStore = &cacheStore{
	caches: make(map[string]*Cache),
}

// BuildCache builds a new cache for the given spec by loading both indices
// concurrently. It does NOT store the cache; use GetOrBuildCache for that.
func BuildCache(ctx context.Context, spec *Spec, db *gorm.DB, client guesty.Client) (*Cache, error) {
	var (
		localIndex  map[string]LocalItem
		remoteIndex map[string]RemoteItem
		localErr    error
		remoteErr   error
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		localIndex, localErr = spec.Adapter.LoadLocalIndex(ctx, db)
	}()
	go func() {
		defer wg.Done()
		remoteIndex, remoteErr = spec.Adapter.LoadRemoteIndex(ctx, client)
	}()
	wg.Wait()

	if localErr != nil {
		return nil, localErr
	}
	if remoteErr != nil {
		return nil, remoteErr
	}

	return &Cache{
		LocalIndex:  localIndex,
		RemoteIndex: remoteIndex,
		Built:       time.Now(),
		TTL:         spec.CacheTTL,
	}, nil
}

// GetOrBuildCache retrieves a cache for the given spec from the store, or
// builds a new one if it doesn't exist or has expired. Uses singleflight
// to prevent cache stampedes.
func GetOrBuildCache(ctx context.Context, spec *Spec, db *gorm.DB, client guesty.Client) (*Cache, error) {
	cacheKey := spec.CacheKey()

	globalCacheStore.mu.RLock()
	cache, exists := globalCacheStore.caches[cacheKey]
	globalCacheStore.mu.RUnlock()

	if exists && !cache.IsExpired() {
		return cache, nil
	}

	result, err, _ := globalCacheStore.sf.Do(cacheKey, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		globalCacheStore.mu.RLock()
		cache, exists := globalCacheStore.caches[cacheKey]
		globalCacheStore.mu.RUnlock()

		if exists && !cache.IsExpired() {
			return cache, nil
		}

		newCache, err := BuildCache(ctx, spec, db, client)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.caches[cacheKey] = newCache
		globalCacheStore.mu.Unlock()

		return newCache, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Cache), nil
}

// InvalidateCache removes the cache for the given spec from the store.
func InvalidateCache(spec *Spec) {
	cacheKey := spec.CacheKey()
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.caches, cacheKey)
	globalCacheStore.mu.Unlock()
}
