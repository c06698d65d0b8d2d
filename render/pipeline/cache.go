package pipeline

import (
	"github.com/gekko3d/drift/render/scene"
	"github.com/gekko3d/drift/render/strid"
)

// CacheKey identifies one visibility result. Camera is strid.None for
// frustum-less passes.
type CacheKey struct {
	Camera strid.ID
	Group  strid.ID
}

// RecordList is a visible-item list. Draw maps hold pointers to lists owned
// by the Cache; a list's address is stable for the life of the cache.
type RecordList struct {
	Records []*scene.RenderRecord
}

func (l *RecordList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Records)
}

type cacheEntry struct {
	list  RecordList
	frame uint64
}

// Cache keeps one RecordList per (camera, group) and remembers which were
// filled in the current frame. Lists keep their capacity across frames.
type Cache struct {
	entries map[CacheKey]*cacheEntry
	frame   uint64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]*cacheEntry)}
}

// BeginFrame empties every list and forgets which keys were generated.
func (c *Cache) BeginFrame() {
	c.frame++
	for _, e := range c.entries {
		clear(e.list.Records)
		e.list.Records = e.list.Records[:0]
	}
}

// Acquire returns the list for key. fresh is true the first time key is
// acquired in the current frame; the caller must then fill the list.
func (c *Cache) Acquire(key CacheKey) (list *RecordList, fresh bool) {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	if ok && e.frame == c.frame {
		return &e.list, false
	}
	e.frame = c.frame
	return &e.list, true
}

// Get returns the list for key if it was generated this frame.
func (c *Cache) Get(key CacheKey) (*RecordList, bool) {
	e, ok := c.entries[key]
	if !ok || e.frame != c.frame {
		return nil, false
	}
	return &e.list, true
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Reset drops every entry, for instance after the pass table changes.
func (c *Cache) Reset() {
	clear(c.entries)
}
