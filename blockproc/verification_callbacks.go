package blockproc

import (
	"math/big"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/governance"
	"github.com/burst-network/burstnode/types"
)

// SetWalletState implements verification.WalletStateSetter: the verification
// collaborator calls this once its own state machine reaches a decision
// (endorsement threshold met, challenge resolved, fraud adjudicated). On a
// wallet's first transition to Verified, BRN accrual state is seeded at the
// currently governed rate (§3's "first segment's start = verified_at").
func (p *Processor) SetWalletState(account types.Address, state types.WalletState) error {
	info, err := p.store.GetAccount(account)
	if err != nil {
		return err
	}
	info.State = state

	txn := p.store.Begin()
	if state == types.WalletVerified && info.VerifiedAt == nil {
		now := types.Now()
		info.VerifiedAt = &now
		seed := brn.NewWalletState(now, p.governanceCollab.CurrentBrnRate())
		txn.PutBrnState(account, seed)
	}
	txn.PutAccount(info)
	if err := txn.Commit(); err != nil {
		return err
	}
	p.log.WithFields(map[string]any{"account": account, "state": state}).Info("wallet state updated")
	return nil
}

// ApplyRevocation implements verification.WalletStateSetter: it mass-revokes
// every TRST token descended from origin (§4.4 "Revoke (mass)") and bumps
// each affected holder's RevokedTrst counter.
func (p *Processor) ApplyRevocation(origin types.Hash) ([]types.Hash, error) {
	reached, err := p.trst.Revoke(origin)
	if err != nil {
		return nil, err
	}
	if err := p.adjustRevokedCounters(reached, true); err != nil {
		return nil, err
	}
	p.log.WithFields(map[string]any{"origin": origin, "count": len(reached)}).Warn("mass revocation applied")
	return reached, nil
}

// UnapplyRevocation implements verification.WalletStateSetter's inverse of
// ApplyRevocation (§4.4 "Un-revoke"): it restores each affected token to
// Active or Expired and reverses the counter bump.
func (p *Processor) UnapplyRevocation(origin types.Hash, now types.Timestamp) ([]types.Hash, error) {
	reached, err := p.trst.UnRevoke(origin, now)
	if err != nil {
		return nil, err
	}
	if err := p.adjustRevokedCounters(reached, false); err != nil {
		return nil, err
	}
	p.log.WithFields(map[string]any{"origin": origin, "count": len(reached)}).Info("mass revocation reversed")
	return reached, nil
}

// adjustRevokedCounters walks the tokens reached by a revoke/un-revoke and
// adds (or subtracts) each token's amount from its holder's RevokedTrst
// summary, per §4.4's "bump the holders' revoked_trst counters accordingly."
func (p *Processor) adjustRevokedCounters(reached []types.Hash, revoked bool) error {
	for _, tx := range reached {
		tok, err := p.store.GetToken(tx)
		if err != nil {
			return err
		}
		info, err := p.store.GetAccount(tok.Holder)
		if err != nil {
			return err
		}
		delta := tok.Amount.BigInt()
		if revoked {
			info.RevokedTrst = new(big.Int).Add(info.RevokedTrst, delta)
		} else {
			info.RevokedTrst = new(big.Int).Sub(info.RevokedTrst, delta)
			if info.RevokedTrst.Sign() < 0 {
				info.RevokedTrst = big.NewInt(0)
			}
		}
		txn := p.store.Begin()
		txn.PutAccount(info)
		if err := txn.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyRateChange implements the per-wallet iteration routine governance's
// OnRateChange doc comment calls for: every verified wallet's BRN state gets
// its active rate segment closed and a new one opened at change.At (§4.3
// ApplyRateChange). Registered with the governance collaborator in
// cmd/burstnode so a config-reload-driven rate change reaches every already-
// verified wallet, not just wallets verified after the change.
func (p *Processor) ApplyRateChange(change governance.RateChange) {
	for _, info := range p.store.IterVerifiedAccounts() {
		state, err := p.store.GetBrnState(info.Address)
		if err != nil {
			p.log.WithFields(map[string]any{"account": info.Address, "err": err}).Warn("rate change: missing brn state for verified wallet")
			continue
		}
		p.brn.ApplyRateChange(state, change.NewRate, change.At)

		txn := p.store.Begin()
		txn.PutBrnState(info.Address, state)
		if err := txn.Commit(); err != nil {
			p.log.WithFields(map[string]any{"account": info.Address, "err": err}).Error("rate change: failed to persist brn state")
		}
	}
}
