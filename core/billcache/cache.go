// Package billcache memoizes assembled BillViews so that repeated reads of
// an unchanged bill don't re-walk and re-decrypt its whole chain.
package billcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
)

// DefaultSize is the number of bills kept warm. A node with more concurrently
// active bills than this will simply reassemble on a cache miss.
const DefaultSize = 1024

// Cache is a bounded, concurrency-safe BillView cache keyed by bill id.
// Entries are invalidated explicitly by the writer that appended a new
// block; there is no TTL, since a BillView only changes when its chain does.
type Cache struct {
	lru *lru.Cache[chain.BillID, entry]
}

type entry struct {
	view        *billview.BillView
	blockHeight uint64
}

// New builds a Cache holding at most size entries.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[chain.BillID, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Get returns the cached view for id if present and still at blockHeight.
// A stale hit (the chain has grown since the view was cached) is treated as
// a miss so callers always reassemble after an append.
func (c *Cache) Get(id chain.BillID, blockHeight uint64) (*billview.BillView, bool) {
	e, ok := c.lru.Get(id)
	if !ok || e.blockHeight != blockHeight {
		return nil, false
	}
	return e.view, true
}

// Put stores v under id, recording the chain height it was assembled at.
func (c *Cache) Put(id chain.BillID, v *billview.BillView) {
	c.lru.Add(id, entry{view: v, blockHeight: v.BlockHeight})
}

// Invalidate drops id's cached entry, forcing the next Get to miss.
func (c *Cache) Invalidate(id chain.BillID) {
	c.lru.Remove(id)
}

// Len reports the number of bills currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}
