package types

import "math/big"

// BlockKind tags the operation a StateBlock represents. Dispatch in the
// block processor is table-driven over this tag, never type-switched.
type BlockKind uint8

const (
	BlockOpen BlockKind = iota
	BlockBurn
	BlockSend
	BlockReceive
	BlockSplit
	BlockMerge
	BlockEndorse
	BlockChallenge
	BlockGovProposal
	BlockGovVote
	BlockDelegate
	BlockRevokeDelegation
	BlockChangeRep
	BlockEpoch
)

var blockKindNames = [...]string{
	"open", "burn", "send", "receive", "split", "merge",
	"endorse", "challenge", "gov_proposal", "gov_vote",
	"delegate", "revoke_delegation", "change_rep", "epoch",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// StateBlock is the unit of append on an account chain. Every block carries
// the full post-state of its account, making the chain prunable without
// loss: balances need never be recomputed from history after truncation.
//
// Field order is part of the persisted wire format (RLP encodes positionally)
// and must not be reordered without a schema migration.
type StateBlock struct {
	Kind           BlockKind
	Account        Address
	Previous       Hash // zero iff Kind == BlockOpen
	Representative Address
	BrnBalance     *big.Int
	TrstBalance    *big.Int
	Link           Hash // context-dependent: source block for Receive, parent token for Split; unused by Send
	Transaction    Hash
	Timestamp      Timestamp
	Work           uint64
	Signature      []byte
	Hash           Hash
}

// IsOpen reports whether this is the first block in an account chain.
func (b *StateBlock) IsOpen() bool { return b.Kind == BlockOpen }
