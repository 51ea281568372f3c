package brn

import "github.com/burst-network/burstnode/types"

// StakeID uniquely identifies a stake, issued by a single monotonic counter
// owned by Engine (see Engine.nextStakeID). The counter is not written to
// the meta table or anywhere else in storage.
type StakeID uint64

// StakeKind distinguishes what a stake secures.
type StakeKind uint8

const (
	// StakeVerification is posted by a verifier voting on a wallet's humanity.
	StakeVerification StakeKind = iota
	// StakeChallenge is posted by a challenger contesting another wallet.
	StakeChallenge
)

// Stake is BRN locked against a verification vote or challenge outcome.
type Stake struct {
	ID        StakeID
	Amount    Amount
	Kind      StakeKind
	Target    types.Address // the wallet being verified or challenged
	CreatedAt types.Timestamp
	Resolved  bool
}
