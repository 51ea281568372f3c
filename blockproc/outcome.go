// Package blockproc implements the block processor pipeline: validate,
// apply kind-dispatched effects, persist atomically, update the counter
// cache, and emit a confirmation request. Grounded on spec.md §4.2 and the
// teacher's core/account_and_balance_operations.go manager-over-ledger
// pattern, generalized from single-account transfers to the full
// fourteen-kind state-block dispatch table.
package blockproc

import "github.com/burst-network/burstnode/types"

// OutcomeKind is the result class of processing one block.
type OutcomeKind uint8

const (
	// Accepted means the block was validated, applied, and committed.
	Accepted OutcomeKind = iota
	// Gap means the block's previous hash is not yet known; queue for
	// bootstrap and retry once the gap is filled.
	Gap
	// Fork means previous is known but a different successor already
	// holds that position in the chain; escalate to consensus.
	Fork
	// Rejected means the block failed a shape, linkage, or effect check
	// and will not be retried as-is.
	Rejected
)

func (k OutcomeKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Gap:
		return "gap"
	case Fork:
		return "fork"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is the result of one call to Processor.Process.
type Outcome struct {
	Kind         OutcomeKind
	PreviousHash types.Hash // set on Gap: the missing previous hash
	ExistingHash types.Hash // set on Fork: the hash already occupying that chain position
	Err          error      // set on Rejected
}
