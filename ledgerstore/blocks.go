package ledgerstore

import (
	"github.com/cespare/xxhash/v2"

	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// PutBlockWithAccount stages a block write plus its height-index entries
// (both directions) on txn, so a single commit keeps the block, the
// per-account chain list, and the height index consistent. The block bytes'
// xxhash64 checksum is stored alongside them so the startup integrity scan
// can detect a silently corrupted entry without re-parsing RLP.
func (t *Txn) PutBlockWithAccount(hash types.Hash, blockBytes []byte, account types.Address, height uint64) {
	checksum := xxhash.Sum64(blockBytes)
	rec := blockRecord{Bytes: blockBytes, Account: account, Checksum: checksum}
	t.stagePut(TableBlocks, hash, rec, func() {
		t.store.blocks[hash] = blockBytes
		t.store.blockAccount[hash] = account
		t.store.blockChecksum[hash] = checksum
		t.store.accountChain[account] = append(t.store.accountChain[account], hash)
		if t.store.readCache != nil {
			t.store.readCache.Add(hash, blockBytes)
		}
	})
	hk := heightKey{Account: account, Height: height}
	t.stagePut(TableHashByHeight, hk, hash, func() {
		t.store.hashByHeight[hk] = hash
	})
	t.stagePut(TableHeightByHash, hash, height, func() {
		t.store.heightByHash[hash] = height
	})
}

// DeleteBlock stages removal of a block's bytes and account-chain index (for
// pruning). Height-index entries are left to the pruner's batch logic, which
// deletes them explicitly alongside other secondary-index entries (§4.7).
func (t *Txn) DeleteBlock(hash types.Hash) {
	t.stageDelete(TableBlocks, hash, func() {
		account := t.store.blockAccount[hash]
		delete(t.store.blocks, hash)
		delete(t.store.blockAccount, hash)
		delete(t.store.blockChecksum, hash)
		if t.store.readCache != nil {
			t.store.readCache.Remove(hash)
		}
		chain := t.store.accountChain[account]
		for i, h := range chain {
			if h == hash {
				t.store.accountChain[account] = append(chain[:i], chain[i+1:]...)
				break
			}
		}
	})
}

// GetBlock returns the serialized StateBlock bytes for hash, consulting the
// read-through cache first.
func (s *Store) GetBlock(hash types.Hash) ([]byte, error) {
	if s.readCache != nil {
		if v, ok := s.readCache.Get(hash); ok {
			return v, nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[hash]
	if !ok {
		return nil, ledgererr.New(ledgererr.KindNotFound, "block %s not found", hash)
	}
	if s.readCache != nil {
		s.readCache.Add(hash, b)
	}
	return b, nil
}

// BlockExists reports whether hash is a known block.
func (s *Store) BlockExists(hash types.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocks[hash]
	return ok
}

// GetAccountBlocks returns every block hash in account's chain, in append
// order.
func (s *Store) GetAccountBlocks(account types.Address) []types.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.accountChain[account]
	out := make([]types.Hash, len(chain))
	copy(out, chain)
	return out
}

// BlockCount returns the total number of blocks in the store.
func (s *Store) BlockCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.blocks))
}

// BlockAtHeight returns the hash at the given height in account's chain, if
// any.
func (s *Store) BlockAtHeight(account types.Address, height uint64) (types.Hash, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hashByHeight[heightKey{Account: account, Height: height}]
	return h, ok
}

// HeightOfBlock returns hash's height in its account's chain, if known. This
// is what makes is_block_confirmed O(1) (§4.5).
func (s *Store) HeightOfBlock(hash types.Hash) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.heightByHash[hash]
	return h, ok
}
