package ledgerstore

import (
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// PutFrontier stages the head-block update for account.
func (t *Txn) PutFrontier(account types.Address, head types.Hash) {
	t.stagePut(TableFrontiers, account, head, func() {
		t.store.frontiers[account] = head
	})
}

// DeleteFrontier stages removal of account's frontier entry (account
// pruned or reset).
func (t *Txn) DeleteFrontier(account types.Address) {
	t.stageDelete(TableFrontiers, account, func() {
		delete(t.store.frontiers, account)
	})
}

// GetFrontier returns account's current head-block hash.
func (s *Store) GetFrontier(account types.Address) (types.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.frontiers[account]
	if !ok {
		return types.Hash{}, ledgererr.New(ledgererr.KindNotFound, "frontier for %s not found", account)
	}
	return h, nil
}

// IterFrontiers returns every (account, head) pair, for scan-free frontier
// sync (§3).
func (s *Store) IterFrontiers() map[types.Address]types.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[types.Address]types.Hash, len(s.frontiers))
	for k, v := range s.frontiers {
		out[k] = v
	}
	return out
}

// FrontierCount returns the number of tracked frontiers.
func (s *Store) FrontierCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.frontiers))
}
