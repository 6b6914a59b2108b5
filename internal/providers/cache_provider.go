package providers

import (
	"sync"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/coocood/freecache"

	"flighttrack/internal/structures"
)

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
	// Version changes every time key is deleted.
	Version(key string) uint64
	// SetIfVersion stores value only if key was not deleted since Version returned version.
	SetIfVersion(key string, value []byte, version uint64) bool
}

// versionStripes bounds the version table. Keys sharing a stripe only cause
// extra skipped writes.
const versionStripes = 1024

type CacheProvider struct {
	cache *freecache.Cache
	ttl   int

	mu       sync.Mutex
	versions [versionStripes]uint64
}

func stripeOf(key string) int {
	return int(xxhash.Sum64String(key) % versionStripes)
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	ttl := max(int(conf.Cache.TTL.Seconds()), 1)

	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)
	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
		ttl:   ttl,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is only read.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

func (c *CacheProvider) Del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[stripeOf(key)]++
	c.cache.Del(unsafeStringToBytes(key))
}

func (c *CacheProvider) Version(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[stripeOf(key)]
}

func (c *CacheProvider) SetIfVersion(key string, value []byte, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[stripeOf(key)] != version {
		return false
	}
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
	return true
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)                    { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)                         {}
func (n *noopCache) Del(_ string)                                   {}
func (n *noopCache) Version(_ string) uint64                        { return 0 }
func (n *noopCache) SetIfVersion(_ string, _ []byte, _ uint64) bool { return false }
