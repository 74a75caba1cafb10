package data

import (
	"log"
	"sync"

	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// MemoryCache implements Cache with in-memory storage. Series are
// treated as immutable once loaded, so values are shared, not copied.
type MemoryCache struct {
	cache map[string]*types.PriceSeries
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]*types.PriceSeries),
	}
}

// Get retrieves a series from cache if available.
func (c *MemoryCache) Get(key string) (*types.PriceSeries, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	series, exists := c.cache[key]
	return series, exists
}

// Set stores a series in cache.
func (c *MemoryCache) Set(key string, series *types.PriceSeries) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = series
}

// Clear removes all cached series.
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]*types.PriceSeries)
}

// Size returns the number of cached entries.
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another Provider with caching, keyed by source.
type CachedProvider struct {
	provider Provider
	cache    Cache
}

// NewCachedProvider creates a caching wrapper around provider.
func NewCachedProvider(provider Provider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// GetName returns the name of the provider.
func (p *CachedProvider) GetName() string {
	return p.provider.GetName() + " (cached)"
}

// LoadSeries serves from cache when possible, loading on miss.
func (p *CachedProvider) LoadSeries(info types.SymbolInfo, source string) (*types.PriceSeries, error) {
	if series, ok := p.cache.Get(source); ok {
		return series, nil
	}

	series, err := p.provider.LoadSeries(info, source)
	if err != nil {
		return nil, err
	}

	p.cache.Set(source, series)
	log.Printf("📦 cached %s (%d bars)", info.Symbol, series.Len())
	return series, nil
}
