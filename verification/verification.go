// Package verification defines the narrow boundary contract the ledger core
// uses to talk to the humanity-verification state machine, plus one small
// in-memory implementation for exercising the core standalone.
package verification

import (
	"sync"

	"github.com/burst-network/burstnode/types"
)

// EndorsementRecorded is emitted when an Endorse block is accepted.
type EndorsementRecorded struct {
	Endorser types.Address
	Target   types.Address
	At       types.Timestamp
}

// ChallengeInitiated is emitted when a Challenge block is accepted.
type ChallengeInitiated struct {
	Challenger types.Address
	Target     types.Address
	At         types.Timestamp
}

// StakeEvent is emitted on stake creation or resolution.
type StakeEvent struct {
	Account  types.Address
	StakeID  uint64
	Resolved bool
	Forfeit  bool
}

// Collaborator is what the block processor depends on for humanity
// verification. The core emits events as they occur; the collaborator
// calls back through a wired WalletStateSetter with SetWalletState and
// ApplyRevocation once its own state machine reaches a decision.
// DefaultCollaborator's own decision rule is intentionally minimal — see
// SetStateSetter.
type Collaborator interface {
	NotifyEndorsement(e EndorsementRecorded)
	NotifyChallenge(c ChallengeInitiated)
	NotifyStakeEvent(s StakeEvent)
}

// WalletStateSetter is the callback surface the collaborator uses to push
// decisions back into the core. blockproc.Processor implements it.
type WalletStateSetter interface {
	SetWalletState(account types.Address, state types.WalletState) error
	ApplyRevocation(origin types.Hash) ([]types.Hash, error)
	UnapplyRevocation(origin types.Hash, now types.Timestamp) ([]types.Hash, error)
}

// DefaultCollaborator is a minimal, testable Collaborator. It records every
// event it receives and, once wired with SetStateSetter, also drives a
// small default decision rule: a wallet transitions to Verified as soon as
// distinct endorsers reach the governed threshold. Fraud adjudication has
// no default rule (it has no deterministic trigger here) but is reachable
// through AdjudicateFraud for callers that reach their own decision.
type DefaultCollaborator struct {
	mu           sync.Mutex
	endorsements []EndorsementRecorded
	challenges   []ChallengeInitiated
	stakeEvents  []StakeEvent

	setter    WalletStateSetter
	threshold func() uint64
	endorsers map[types.Address]map[types.Address]struct{}
}

// NewDefaultCollaborator returns an empty DefaultCollaborator with no
// wallet-state callback wired in; it only records events until
// SetStateSetter is called.
func NewDefaultCollaborator() *DefaultCollaborator {
	return &DefaultCollaborator{endorsers: make(map[types.Address]map[types.Address]struct{})}
}

// SetStateSetter wires the callback surface decisions are pushed into, and
// the endorsement-threshold getter used to decide when a wallet has enough
// distinct endorsers to verify. cmd/burstnode calls this once, after
// constructing the block processor (which implements WalletStateSetter),
// since the processor itself depends on this collaborator at construction
// time.
func (c *DefaultCollaborator) SetStateSetter(setter WalletStateSetter, endorsementThreshold func() uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setter = setter
	c.threshold = endorsementThreshold
}

// AdjudicateFraud triggers mass revocation of every token descended from
// origin through the wired setter. The real fraud-adjudication state
// machine is out of scope; this is the manual, testable trigger point a
// caller reaches its own decision and invokes.
func (c *DefaultCollaborator) AdjudicateFraud(origin types.Hash) ([]types.Hash, error) {
	c.mu.Lock()
	setter := c.setter
	c.mu.Unlock()
	if setter == nil {
		return nil, nil
	}
	return setter.ApplyRevocation(origin)
}

func (c *DefaultCollaborator) NotifyEndorsement(e EndorsementRecorded) {
	c.mu.Lock()
	c.endorsements = append(c.endorsements, e)
	setter, threshold := c.setter, c.threshold
	if setter != nil && threshold != nil {
		if c.endorsers[e.Target] == nil {
			c.endorsers[e.Target] = make(map[types.Address]struct{})
		}
		c.endorsers[e.Target][e.Endorser] = struct{}{}
	}
	count := uint64(len(c.endorsers[e.Target]))
	c.mu.Unlock()

	if setter == nil || threshold == nil || count < threshold() {
		return
	}
	_ = setter.SetWalletState(e.Target, types.WalletVerified)
}

func (c *DefaultCollaborator) NotifyChallenge(ch ChallengeInitiated) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.challenges = append(c.challenges, ch)
}

func (c *DefaultCollaborator) NotifyStakeEvent(s StakeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stakeEvents = append(c.stakeEvents, s)
}

// Endorsements returns every recorded endorsement event.
func (c *DefaultCollaborator) Endorsements() []EndorsementRecorded {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EndorsementRecorded, len(c.endorsements))
	copy(out, c.endorsements)
	return out
}

// Challenges returns every recorded challenge event.
func (c *DefaultCollaborator) Challenges() []ChallengeInitiated {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChallengeInitiated, len(c.challenges))
	copy(out, c.challenges)
	return out
}

// StakeEvents returns every recorded stake event.
func (c *DefaultCollaborator) StakeEvents() []StakeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StakeEvent, len(c.stakeEvents))
	copy(out, c.stakeEvents)
	return out
}
