// Package trst implements the TRST lifecycle engine and merger graph:
// minting from a burn, transfer/split/merge, expiry, and retroactive mass
// revocation over token lineages. Grounded on spec.md §4.4 and
// original_source/trst/src/lib.rs (the merger-graph algorithms themselves
// were not present in the retrieval pack's trst crate — only the module
// overview and error enum — so the BFS/traversal design here follows §4.4's
// prose and the §8 end-to-end scenarios directly).
package trst

import (
	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/types"
)

// OriginProportion records one constituent origin's weighted contribution
// to a (possibly merged) token's lineage.
type OriginProportion struct {
	Origin types.Hash
	Weight brn.Amount // this origin's contribution, in the same unit as Amount
}

// Token is the logical TRST token tracked by the engine. TxHash is the
// current head of its transfer/split/merge lineage; Origin is the original
// burn it descends from (for merges, the first input's origin).
type Token struct {
	TxHash              types.Hash
	Holder              types.Address
	Amount              brn.Amount
	Origin              types.Hash // originating burn hash
	OriginTimestamp      types.Timestamp
	EffectiveOriginTime  types.Timestamp // earliest constituent origin, for merges
	Link                types.Hash       // parent tx hash this token derives from
	Proportions         []OriginProportion
	State               types.TrstState
}

// Expiry returns the timestamp at which this token transitions to Expired,
// given the governed TRST lifetime.
func (t *Token) Expiry(lifetimeSecs uint64) types.Timestamp {
	return t.EffectiveOriginTime.Add(lifetimeSecs)
}
