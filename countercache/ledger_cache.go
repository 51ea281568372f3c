// Package countercache holds in-memory atomic counters for
// frequently-queried ledger statistics, avoiding repeated storage reads for
// values like block count, account count, and pending count that are
// requested on every node-info RPC call. Grounded on
// original_source/node/src/ledger_cache.rs.
package countercache

import "sync/atomic"

// LedgerCache is an atomic cache of ledger counters. Seeded from storage at
// node startup and kept in sync by incrementing/decrementing it during
// block processing. Values here are advisory: storage remains the
// authoritative source, this only saves a scan on the hot query path.
type LedgerCache struct {
	blockCount   atomic.Uint64
	accountCount atomic.Uint64
	pendingCount atomic.Uint64
}

// New creates a cache seeded with the given initial values.
func New(blockCount, accountCount, pendingCount uint64) *LedgerCache {
	c := &LedgerCache{}
	c.blockCount.Store(blockCount)
	c.accountCount.Store(accountCount)
	c.pendingCount.Store(pendingCount)
	return c
}

// BlockCount returns the current block count.
func (c *LedgerCache) BlockCount() uint64 { return c.blockCount.Load() }

// AccountCount returns the current account count.
func (c *LedgerCache) AccountCount() uint64 { return c.accountCount.Load() }

// PendingCount returns the current pending count.
func (c *LedgerCache) PendingCount() uint64 { return c.pendingCount.Load() }

// IncBlockCount increments the block count by 1 (called after a block is
// persisted).
func (c *LedgerCache) IncBlockCount() { c.blockCount.Add(1) }

// DecBlockCount decrements the block count by 1 (called on rollback).
func (c *LedgerCache) DecBlockCount() { c.blockCount.Add(^uint64(0)) }

// IncAccountCount increments the account count by 1 (new account opened).
func (c *LedgerCache) IncAccountCount() { c.accountCount.Add(1) }

// IncPendingCount increments the pending count by 1 (a Send created a
// pending entry).
func (c *LedgerCache) IncPendingCount() { c.pendingCount.Add(1) }

// DecPendingCount decrements the pending count by 1 (a Receive consumed a
// pending entry).
func (c *LedgerCache) DecPendingCount() { c.pendingCount.Add(^uint64(0)) }
