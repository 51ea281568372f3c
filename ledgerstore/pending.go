package ledgerstore

import (
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// PutPending stages a pending-receive entry keyed by (destination, source).
func (t *Txn) PutPending(destination types.Address, source types.Hash, info *PendingInfo) {
	key := pendingKey{Destination: destination, Source: source}
	cp := *info
	t.stagePut(TablePending, key, cp, func() {
		t.store.pending[key] = &cp
	})
}

// DeletePending stages removal of a pending entry (it has been pocketed by
// a matching Receive).
func (t *Txn) DeletePending(destination types.Address, source types.Hash) {
	key := pendingKey{Destination: destination, Source: source}
	t.stageDelete(TablePending, key, func() {
		delete(t.store.pending, key)
	})
}

// GetPending returns the pending entry for (destination, source).
func (s *Store) GetPending(destination types.Address, source types.Hash) (*PendingInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.pending[pendingKey{Destination: destination, Source: source}]
	if !ok {
		return nil, ledgererr.New(ledgererr.KindNotFound, "pending entry (%s,%s) not found", destination, source)
	}
	cp := *info
	return &cp, nil
}

// GetPendingForAccount returns every pending entry addressed to destination.
func (s *Store) GetPendingForAccount(destination types.Address) []*PendingInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*PendingInfo, 0)
	for k, v := range s.pending {
		if k.Destination == destination {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out
}

// PendingCount returns the total number of pending entries across every
// account.
func (s *Store) PendingCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.pending))
}
