package cache

import "sync"

// RecordCache maps content keys (IDs or checksums) to database row IDs
type RecordCache struct {
	mu  sync.RWMutex
	ids map[string]uint
}

// NewRecordCache creates a new RecordCache
func NewRecordCache() *RecordCache {
	return &RecordCache{
		ids: make(map[string]uint),
	}
}

// Get retrieves a row ID by content ID
func (c *RecordCache) Get(id string) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rowID, ok := c.ids[id]
	return rowID, ok
}

// Set stores a row ID by content ID
func (c *RecordCache) Set(id string, rowID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = rowID
}

// Delete removes a content ID
func (c *RecordCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, id)
}

// Reset clears the cache
func (c *RecordCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[string]uint)
}
