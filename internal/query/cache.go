package query

import "herald/internal/models"

// Entry is the last successful info/players pair for one server.
// Both fields are always written together.
type Entry struct {
	Info    models.ServerInfo
	Players []models.PlayerSession
}

// Cache stores the most recent successful query result per server key.
// Entries are never evicted; staleness is the caller's responsibility to
// judge. The cache is not safe for concurrent mutation: goroutines may read
// it during the scatter phase of a cycle, but only the gather goroutine
// writes, after all readers have finished.
type Cache struct {
	entries map[string]Entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the cached entry for the given server key, or false on miss.
func (c *Cache) Get(key string) (Entry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Put overwrites the entry for the given server key with a complete pair.
func (c *Cache) Put(key string, info models.ServerInfo, players []models.PlayerSession) {
	c.entries[key] = Entry{Info: info, Players: players}
}
