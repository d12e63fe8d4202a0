package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUWithTTL потокобезопасный LRU-кэш с ограниченным временем жизни записей
type LRUWithTTL[K comparable, V any] struct {
	mu     sync.Mutex
	cache  *lru.Cache[K, ttlEntry[V]]
	ttl    time.Duration
	now    func() time.Time
	hits   uint64
	misses uint64
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Stats статистика обращений к кэшу
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// NewLRUWithTTL создает кэш на size записей; ttl == 0 - записи не устаревают
func NewLRUWithTTL[K comparable, V any](size int, ttl time.Duration) (*LRUWithTTL[K, V], error) {
	c, err := lru.New[K, ttlEntry[V]](size)
	if err != nil {
		return nil, err
	}
	return &LRUWithTTL[K, V]{
		cache: c,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Get возвращает значение, если оно есть и не устарело.
// Устаревшая запись удаляется при обращении.
func (c *LRUWithTTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if ok && c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		ok = false
	}
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	return entry.value, true
}

// Set сохраняет значение; при переполнении вытесняется давно не использованная запись
func (c *LRUWithTTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}
	c.cache.Add(key, ttlEntry[V]{value: value, expiresAt: expiresAt})
}

// Delete удаляет запись
func (c *LRUWithTTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(key)
}

// Len возвращает количество записей (включая еще не удаленные устаревшие)
func (c *LRUWithTTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}

// Clear удаляет все записи
func (c *LRUWithTTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
}

// CleanupExpired удаляет все устаревшие записи и возвращает их количество
func (c *LRUWithTTL[K, V]) CleanupExpired() int {
	if c.ttl == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, key := range c.cache.Keys() {
		if entry, ok := c.cache.Peek(key); ok && now.After(entry.expiresAt) {
			c.cache.Remove(key)
			removed++
		}
	}
	return removed
}

// Stats возвращает статистику обращений
func (c *LRUWithTTL[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRate := 0.0
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    c.cache.Len(),
		HitRate: hitRate,
	}
}
