package brn

import (
	"sync"

	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
	log "github.com/sirupsen/logrus"
)

// Engine computes BRN balances, records burns, and manages stake lifecycle.
// It is pure and time-driven over the WalletState it is handed — it holds no
// durable state of its own. The stake-id counter is held in memory only:
// nothing writes it to storage, so an engine restarted with seed 0 (as
// cmd/burstnode does) issues stake ids from 1 again.
type Engine struct {
	mu          sync.Mutex // guards nextStakeID; state mutation is the caller's responsibility
	nextStakeID StakeID
	log         *log.Logger
}

// NewEngine constructs an Engine. seedStakeID is the last stake id already
// issued (0 for a fresh node); the first Stake call issues seedStakeID+1.
func NewEngine(seedStakeID StakeID, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Engine{nextStakeID: seedStakeID + 1, log: logger}
}

// ComputeBalance returns the available BRN balance for state at now.
func (e *Engine) ComputeBalance(state *WalletState, now types.Timestamp) Amount {
	return state.AvailableBalance(now)
}

// RecordBurn debits amount from state's available balance, accumulating it
// into TotalBurned. Fails with KindInsufficientBalance if unavailable.
func (e *Engine) RecordBurn(state *WalletState, amount Amount, now types.Timestamp) error {
	available := state.AvailableBalance(now)
	if available.LessThan(amount) {
		return ledgererr.New(ledgererr.KindInsufficientBalance,
			"insufficient BRN: need %s, available %s", amount, available).
			WithField("needed", amount.String()).WithField("available", available.String())
	}
	sum, ok := state.TotalBurned.Add(amount)
	if !ok {
		return ledgererr.New(ledgererr.KindInsufficientBalance, "burn overflow at %s + %s", state.TotalBurned, amount)
	}
	state.TotalBurned = sum
	e.log.WithFields(log.Fields{"amount": amount.String(), "now": now}).Info("brn burn recorded")
	return nil
}

// Stake locks amount as a new Stake, moving it from available to staked.
// Issues the next monotonic StakeID under e.mu.
func (e *Engine) Stake(state *WalletState, amount Amount, kind StakeKind, target types.Address, now types.Timestamp) (*Stake, error) {
	available := state.AvailableBalance(now)
	if available.LessThan(amount) {
		return nil, ledgererr.New(ledgererr.KindInsufficientBalance,
			"insufficient BRN to stake: need %s, available %s", amount, available)
	}
	sum, ok := state.TotalStaked.Add(amount)
	if !ok {
		return nil, ledgererr.New(ledgererr.KindInsufficientBalance, "stake overflow at %s + %s", state.TotalStaked, amount)
	}
	state.TotalStaked = sum

	e.mu.Lock()
	id := e.nextStakeID
	e.nextStakeID++
	e.mu.Unlock()

	stake := &Stake{ID: id, Amount: amount, Kind: kind, Target: target, CreatedAt: now, Resolved: false}
	e.log.WithFields(log.Fields{"stake_id": id, "amount": amount.String(), "kind": kind}).Info("brn stake created")
	return stake, nil
}

// ReturnStake unlocks a stake's amount without burning it (successful
// outcome). Errors with KindStakeAlreadyResolved on double-resolution.
func (e *Engine) ReturnStake(state *WalletState, stake *Stake) error {
	if stake.Resolved {
		return ledgererr.New(ledgererr.KindStakeAlreadyResolved, "stake %d already resolved", stake.ID)
	}
	state.TotalStaked = state.TotalStaked.Sub(stake.Amount)
	stake.Resolved = true
	e.log.WithField("stake_id", stake.ID).Info("brn stake returned")
	return nil
}

// ForfeitStake unlocks a stake's amount and moves it to TotalBurned
// (unsuccessful outcome — the staked BRN is lost). Errors with
// KindStakeAlreadyResolved on double-resolution.
func (e *Engine) ForfeitStake(state *WalletState, stake *Stake) error {
	if stake.Resolved {
		return ledgererr.New(ledgererr.KindStakeAlreadyResolved, "stake %d already resolved", stake.ID)
	}
	state.TotalStaked = state.TotalStaked.Sub(stake.Amount)
	sum, ok := state.TotalBurned.Add(stake.Amount)
	if !ok {
		sum = Amount{v: maxAmount}
	}
	state.TotalBurned = sum
	stake.Resolved = true
	e.log.WithFields(log.Fields{"stake_id": stake.ID, "amount": stake.Amount.String()}).Warn("brn stake forfeited")
	return nil
}

// ApplyRateChange closes the currently active rate segment at changeAt and
// opens a new segment at the new rate, preserving all pre-change accrual
// exactly (§8: "for all t' <= t, total_accrued(s, t') is identical before
// and after the rate change").
func (e *Engine) ApplyRateChange(state *WalletState, newRate Amount, changeAt types.Timestamp) {
	if n := len(state.RateSegments); n > 0 {
		end := changeAt
		state.RateSegments[n-1].End = &end
	}
	state.RateSegments = append(state.RateSegments, RateSegment{
		Rate: newRate, Start: changeAt, End: nil,
	})
	e.log.WithFields(log.Fields{"new_rate": newRate.String(), "at": changeAt}).Info("brn rate change applied")
}
