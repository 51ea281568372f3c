package ledgerstore

import (
	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// PutBrnState stages a wallet's BRN accrual state (verified_at, burned,
// staked, rate segments) — the durable counterpart to AccountInfo's
// denormalized TotalBurned/TotalStaked summary fields.
func (t *Txn) PutBrnState(account types.Address, state *brn.WalletState) {
	cp := *state
	t.stagePut(TableBrnState, account, cp, func() {
		t.store.brnState[account] = &cp
	})
}

// GetBrnState returns account's BRN accrual state, or KindNotFound if the
// wallet has never been verified.
func (s *Store) GetBrnState(account types.Address) (*brn.WalletState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.brnState[account]
	if !ok {
		return nil, ledgererr.New(ledgererr.KindNotFound, "brn state for %s not found", account)
	}
	cp := *state
	return &cp, nil
}
