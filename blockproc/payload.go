package blockproc

import (
	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/types"
)

// Payload carries the kind-specific fields the wire codec decodes
// alongside a StateBlock but that don't belong in the block header itself
// (§6: "the core assumes validated schema on entry" for both the block and
// "deserialized transaction payloads"). Only the fields relevant to the
// block's kind are read; the rest are ignored.
type Payload struct {
	// Destination is the receiving account for Burn and Send blocks.
	Destination types.Address

	// Amount is the BRN amount burned (Burn). Send does not read it: a Send
	// always moves the spent token's full amount. Split/Merge carry their
	// amounts in SplitOutputs/MergeInputs instead, since those operate over
	// existing token records.
	Amount brn.Amount

	// Token is the tx hash of the TRST token a Send block spends. Send's
	// block.Link is unused (per the link-semantics table); the spent
	// token has to come from the payload instead.
	Token types.Hash

	// SplitOutputs lists the outputs of a Split block. The parent token
	// is block.Link.
	SplitOutputs []SplitOutputPayload

	// MergeInputs lists the tx hashes of the tokens a Merge block
	// consumes, all currently held by the merging account.
	MergeInputs []types.Hash

	// StakeAmount is the BRN amount staked by an Endorse or Challenge
	// block.
	StakeAmount brn.Amount

	// Target is the wallet the Endorse/Challenge block concerns (mirrors
	// the block's Link field; carried here too so handlers don't need to
	// special-case Link decoding per kind).
	Target types.Address
}

// SplitOutputPayload is one output of a Split block.
type SplitOutputPayload struct {
	TxHash types.Hash
	Holder types.Address
	Amount brn.Amount
}
