package schema

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"explorer/internal/domain"
)

// DefaultCacheSize is the number of sources whose schema is kept.
const DefaultCacheSize = 32

// Cache holds the most recent inference result per data source.
type Cache struct {
	entries *lru.Cache[string, domain.Schema]
}

// NewCache creates a cache that keeps at most size sources.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	entries, err := lru.New[string, domain.Schema](size)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Infer rebuilds the schema for source from records and stores it,
// replacing whatever was cached before.
func (c *Cache) Infer(source string, records []*domain.Object) domain.Schema {
	s := Infer(records)
	c.entries.Add(source, s)
	return s
}

// Get returns the cached schema for source.
func (c *Cache) Get(source string) (domain.Schema, bool) {
	return c.entries.Get(source)
}

// Invalidate drops the entry for source.
func (c *Cache) Invalidate(source string) {
	c.entries.Remove(source)
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	return c.entries.Len()
}
