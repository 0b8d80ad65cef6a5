package catalog

import (
	"context"
	"sync"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// Cached fetches the columns of each table once and serves them from memory afterwards.
// Failed lookups are not cached.
type Cached struct {
	source cdc.ColumnSource
	mu     sync.RWMutex
	tables map[string][]cdc.Column
}

// NewCached wraps source
func NewCached(source cdc.ColumnSource) *Cached {
	return &Cached{source: source, tables: make(map[string][]cdc.Column)}
}

// Columns returns the columns of table, querying the wrapped source on first use
func (c *Cached) Columns(ctx context.Context, table string) ([]cdc.Column, error) {
	c.mu.RLock()
	columns, ok := c.tables[table]
	c.mu.RUnlock()
	if ok {
		return columns, nil
	}

	columns, err := c.source.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tables[table] = columns
	c.mu.Unlock()
	return columns, nil
}

// Invalidate drops the cached columns of table, e.g. after a schema change
func (c *Cached) Invalidate(table string) {
	c.mu.Lock()
	delete(c.tables, table)
	c.mu.Unlock()
}

// Close closes the wrapped source when it holds resources
func (c *Cached) Close() error {
	if closer, ok := c.source.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
