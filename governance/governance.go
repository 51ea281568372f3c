// Package governance defines the narrow boundary contract the ledger core
// uses to receive governed parameter changes (BRN rate, PoW difficulty,
// TRST lifetime, endorsement threshold), plus one small in-memory
// implementation for exercising the core standalone. In the running node
// this is wired to the config package's live-reload hook (§10).
package governance

import (
	"sync"
	"sync/atomic"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/types"
)

var zeroRate = brn.Zero()

// RateChange is delivered per verified wallet when the governed BRN accrual
// rate changes.
type RateChange struct {
	NewRate brn.Amount
	At      types.Timestamp
}

// Collaborator is what the block processor depends on for governance.
// Rate changes do not pass through this interface: they reach wallets via
// DefaultCollaborator.OnRateChange listeners (cmd/burstnode registers
// blockproc.Processor.ApplyRateChange, which iterates verified wallets).
// The parameter getters cover difficulty/lifetime/threshold/rate, read on
// the block-processing hot path so they must be cheap and lock-free.
type Collaborator interface {
	CurrentPowDifficulty() uint64
	CurrentTrstLifetime() uint64
	CurrentEndorsementThreshold() uint64
	CurrentBrnRate() brn.Amount
}

// DefaultCollaborator holds governed parameters as atomics so config
// live-reload (fsnotify, via viper) can update them without taking a lock
// on the block-processing hot path.
type DefaultCollaborator struct {
	mu                   sync.Mutex
	powDifficulty        atomic.Uint64
	trstLifetimeSecs     atomic.Uint64
	endorsementThreshold atomic.Uint64
	currentBrnRate       atomic.Pointer[brn.Amount]
	rateListeners        []func(RateChange)
}

// NewDefaultCollaborator returns a collaborator seeded with initial
// parameter values.
func NewDefaultCollaborator(powDifficulty, trstLifetimeSecs, endorsementThreshold uint64, initialBrnRate brn.Amount) *DefaultCollaborator {
	c := &DefaultCollaborator{}
	c.powDifficulty.Store(powDifficulty)
	c.trstLifetimeSecs.Store(trstLifetimeSecs)
	c.endorsementThreshold.Store(endorsementThreshold)
	c.currentBrnRate.Store(&initialBrnRate)
	return c
}

func (c *DefaultCollaborator) CurrentPowDifficulty() uint64        { return c.powDifficulty.Load() }
func (c *DefaultCollaborator) CurrentTrstLifetime() uint64         { return c.trstLifetimeSecs.Load() }
func (c *DefaultCollaborator) CurrentEndorsementThreshold() uint64 { return c.endorsementThreshold.Load() }

// CurrentBrnRate returns the governed BRN accrual rate newly verified
// wallets are seeded with. Kept in sync with BroadcastRateChange so a
// wallet verified after a rate change is seeded at the new rate, not a
// stale one.
func (c *DefaultCollaborator) CurrentBrnRate() brn.Amount {
	if p := c.currentBrnRate.Load(); p != nil {
		return *p
	}
	return zeroRate
}

// SetPowDifficulty updates the governed PoW difficulty (e.g. from config
// live-reload).
func (c *DefaultCollaborator) SetPowDifficulty(v uint64) { c.powDifficulty.Store(v) }

// SetTrstLifetime updates the governed TRST lifetime in seconds.
func (c *DefaultCollaborator) SetTrstLifetime(v uint64) { c.trstLifetimeSecs.Store(v) }

// SetEndorsementThreshold updates the governed endorsement threshold.
func (c *DefaultCollaborator) SetEndorsementThreshold(v uint64) { c.endorsementThreshold.Store(v) }

// OnRateChange registers a listener invoked by BroadcastRateChange.
// cmd/burstnode registers the block processor's per-wallet rate-update
// routine here once the processor is constructed.
func (c *DefaultCollaborator) OnRateChange(fn func(RateChange)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateListeners = append(c.rateListeners, fn)
}

// BroadcastRateChange notifies every registered listener of a new governed
// BRN accrual rate, effective at "at".
func (c *DefaultCollaborator) BroadcastRateChange(newRate brn.Amount, at types.Timestamp) {
	c.currentBrnRate.Store(&newRate)

	c.mu.Lock()
	listeners := make([]func(RateChange), len(c.rateListeners))
	copy(listeners, c.rateListeners)
	c.mu.Unlock()

	change := RateChange{NewRate: newRate, At: at}
	for _, fn := range listeners {
		fn(change)
	}
}
