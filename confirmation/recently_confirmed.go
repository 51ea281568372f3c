// Package confirmation tracks which blocks have been confirmed: a bounded
// FIFO cache of recently-confirmed hashes (so late votes don't re-open
// elections for blocks already cemented) plus the per-account confirmation
// height watermark that makes is_block_confirmed O(1). Grounded on
// original_source/node/src/recently_confirmed.rs.
package confirmation

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/burst-network/burstnode/types"
)

// RecentlyConfirmed is a bounded set of recently confirmed block hashes.
// Used to short-circuit election creation for blocks that have already
// been confirmed and cemented. Without this cache the node would re-start
// elections for blocks it just confirmed whenever late votes arrive.
//
// Built on hashicorp/golang-lru's eviction ring. Since Insert never
// re-adds an already-present hash and lookups go through Peek (which does
// not touch recency), the ring's "least recently used" entry is always
// simply the oldest inserted one, giving the strict FIFO semantics
// required: eviction order is insertion order, never access order.
type RecentlyConfirmed struct {
	mu       sync.Mutex
	cache    *lru.Cache[types.Hash, struct{}]
	capacity int
}

// NewRecentlyConfirmed returns a cache bounded to capacity entries. A
// capacity of 0 disables the cache: Insert becomes a no-op and Contains
// always reports false.
func NewRecentlyConfirmed(capacity int) *RecentlyConfirmed {
	r := &RecentlyConfirmed{capacity: capacity}
	if capacity > 0 {
		c, _ := lru.New[types.Hash, struct{}](capacity)
		r.cache = c
	}
	return r
}

// Insert adds hash to the cache, evicting the oldest entry if at capacity.
// Inserting a hash already present is a no-op (it keeps its original
// position, it is not moved to the back).
func (r *RecentlyConfirmed) Insert(hash types.Hash) {
	if r.capacity == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache.Contains(hash) {
		return
	}
	r.cache.Add(hash, struct{}{})
}

// Contains reports whether hash is in the recently-confirmed set.
func (r *RecentlyConfirmed) Contains(hash types.Hash) bool {
	if r.capacity == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cache.Peek(hash)
	return ok
}

// Len returns the number of entries in the cache.
func (r *RecentlyConfirmed) Len() int {
	if r.capacity == 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

// Empty reports whether the cache holds no entries.
func (r *RecentlyConfirmed) Empty() bool {
	return r.Len() == 0
}
