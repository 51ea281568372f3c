package ledgerstore

import (
	"sort"

	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// PutAccount stages an AccountInfo write on txn.
func (t *Txn) PutAccount(info *types.AccountInfo) {
	cp := *info
	t.stagePut(TableAccounts, info.Address, cp, func() {
		t.store.accounts[info.Address] = &cp
	})
}

// GetAccount returns the AccountInfo for addr, or KindNotFound.
func (s *Store) GetAccount(addr types.Address) (*types.AccountInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.accounts[addr]
	if !ok {
		return nil, ledgererr.New(ledgererr.KindNotFound, "account %s not found", addr)
	}
	cp := *info
	return &cp, nil
}

// AccountExists reports whether addr has an AccountInfo.
func (s *Store) AccountExists(addr types.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[addr]
	return ok
}

// AccountCount returns the total number of accounts.
func (s *Store) AccountCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.accounts))
}

// IterAccounts returns every AccountInfo. Used by startup recovery and RPC
// collaborators; not on the block-processing hot path.
func (s *Store) IterAccounts() []*types.AccountInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.AccountInfo, 0, len(s.accounts))
	for _, info := range s.accounts {
		cp := *info
		out = append(out, &cp)
	}
	return out
}

// IterVerifiedAccounts returns every account whose WalletState is Verified.
func (s *Store) IterVerifiedAccounts() []*types.AccountInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.AccountInfo, 0)
	for _, info := range s.accounts {
		if info.State == types.WalletVerified {
			cp := *info
			out = append(out, &cp)
		}
	}
	return out
}

// IterAccountsPaged returns up to limit accounts following cursor
// (lexicographic on address), for scan-free pagination.
func (s *Store) IterAccountsPaged(cursor *types.Address, limit int) []*types.AccountInfo {
	all := s.IterAccounts()
	sort.Slice(all, func(i, j int) bool { return all[i].Address < all[j].Address })
	start := 0
	if cursor != nil {
		for i, a := range all {
			if a.Address == *cursor {
				start = i + 1
				break
			}
		}
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	if start >= end {
		return nil
	}
	return all[start:end]
}
