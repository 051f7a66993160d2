// Package cache keeps rendered snapshots in memory so repeated requests for
// the same view skip layout and rendering.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EvictionStrategy picks the entry to drop when the cache is full.
type EvictionStrategy int

const (
	// LRU removes the least recently used entry.
	LRU EvictionStrategy = iota
	// LFU removes the least frequently used entry.
	LFU
	// FIFO removes the oldest entry.
	FIFO
)

func (s EvictionStrategy) String() string {
	switch s {
	case LFU:
		return "lfu"
	case FIFO:
		return "fifo"
	default:
		return "lru"
	}
}

// ParseStrategy parses lru, lfu or fifo; "" is LRU.
func ParseStrategy(s string) (EvictionStrategy, error) {
	switch strings.ToLower(s) {
	case "", "lru":
		return LRU, nil
	case "lfu":
		return LFU, nil
	case "fifo":
		return FIFO, nil
	}
	return LRU, fmt.Errorf("cache: unknown eviction strategy %q", s)
}

// Entry is one cached snapshot.
type Entry struct {
	Key         string
	Data        []byte
	ContentType string
	Created     time.Time
	LastAccess  time.Time
	AccessCount int
	// Dependencies are the source files the snapshot was built from.
	Dependencies []string
}

// Stats tracks cache performance.
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// Config holds cache limits. Zero limits mean unlimited.
type Config struct {
	MaxEntries int
	MaxSize    int64 // bytes
	MaxAge     time.Duration
	Strategy   EvictionStrategy
	// Now overrides time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		MaxEntries: 64,
		MaxSize:    32 << 20,
		MaxAge:     10 * time.Minute,
		Strategy:   LRU,
	}
}

// Cache is a bounded in-memory snapshot cache, safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*Entry
	stats   Stats
	now     func() time.Time
}

// New returns an empty cache.
func New(cfg Config) *Cache {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{cfg: cfg, entries: make(map[string]*Entry), now: now}
}

// Get returns a live entry and records the access.
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.expired(e) {
		c.remove(key)
		ok = false
	}
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	e.LastAccess = c.now()
	e.AccessCount++
	c.stats.Hits++
	return e, true
}

// Put stores data under key, replacing any previous entry, and evicts until
// the limits hold again. Data larger than MaxSize is not stored.
func (c *Cache) Put(key, contentType string, data []byte, deps ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(data))
	if c.cfg.MaxSize > 0 && size > c.cfg.MaxSize {
		return
	}
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for c.full(size) {
		if !c.evict() {
			break
		}
	}
	now := c.now()
	c.entries[key] = &Entry{
		Key:          key,
		Data:         data,
		ContentType:  contentType,
		Created:      now,
		LastAccess:   now,
		Dependencies: deps,
	}
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.entries)
}

// InvalidateByDependency removes every entry built from dep or from a path
// under the directory dep, and returns how many were removed.
func (c *Cache) InvalidateByDependency(dep string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, e := range c.entries {
		for _, d := range e.Dependencies {
			if within(d, dep) {
				c.remove(key)
				n++
				break
			}
		}
	}
	return n
}

// Clear empties the cache and resets its statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	c.stats = Stats{}
}

// Stats returns a copy of the statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key hashes its inputs into a cache key. Inputs are length-prefixed so
// ("ab","c") and ("a","bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, in := range inputs {
		fmt.Fprintf(h, "%d:%s", len(in), in)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// within reports whether path is dep or lies under the directory dep.
// "data/a.json" is within "data" but "data-old/a.json" is not.
func within(path, dep string) bool {
	path, dep = filepath.Clean(path), filepath.Clean(dep)
	if path == dep {
		return true
	}
	if !strings.HasSuffix(dep, string(filepath.Separator)) {
		dep += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dep)
}

func (c *Cache) expired(e *Entry) bool {
	return c.cfg.MaxAge > 0 && c.now().Sub(e.Created) > c.cfg.MaxAge
}

func (c *Cache) full(incoming int64) bool {
	if len(c.entries) == 0 {
		return false
	}
	if c.cfg.MaxEntries > 0 && len(c.entries) >= c.cfg.MaxEntries {
		return true
	}
	return c.cfg.MaxSize > 0 && c.stats.TotalSize+incoming > c.cfg.MaxSize
}

// evict drops one entry: expired entries first, then by strategy.
func (c *Cache) evict() bool {
	var victim *Entry
	for _, e := range c.entries {
		if c.expired(e) {
			victim = e
			break
		}
		if victim == nil || c.worse(e, victim) {
			victim = e
		}
	}
	if victim == nil {
		return false
	}
	c.remove(victim.Key)
	c.stats.Evictions++
	return true
}

// worse reports whether a should be evicted before b. Ties fall back to age
// and then key so eviction order is deterministic.
func (c *Cache) worse(a, b *Entry) bool {
	switch c.cfg.Strategy {
	case LFU:
		if a.AccessCount != b.AccessCount {
			return a.AccessCount < b.AccessCount
		}
	case LRU:
		if !a.LastAccess.Equal(b.LastAccess) {
			return a.LastAccess.Before(b.LastAccess)
		}
	}
	if !a.Created.Equal(b.Created) {
		return a.Created.Before(b.Created)
	}
	return a.Key < b.Key
}

func (c *Cache) remove(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.stats.TotalSize -= int64(len(e.Data))
	c.stats.EntryCount = len(c.entries)
}
