package confirmation

import (
	"github.com/google/uuid"

	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// HeightIndex is the narrow read surface the height-coupling helpers need
// from the storage layer: the per-account block-height index (§4.1) that
// makes confirmation lookups O(1).
type HeightIndex interface {
	HeightOfBlock(hash types.Hash) (uint64, bool)
	GetAccount(addr types.Address) (*types.AccountInfo, error)
}

// IsBlockConfirmed reports whether hash, belonging to account, has height
// at or below account's confirmation_height watermark (§4.5).
func IsBlockConfirmed(idx HeightIndex, account types.Address, hash types.Hash) (bool, error) {
	info, err := idx.GetAccount(account)
	if err != nil {
		return false, err
	}
	height, ok := idx.HeightOfBlock(hash)
	if !ok {
		return false, nil
	}
	return height <= info.ConfirmationHeight, nil
}

// AdvanceConfirmationHeight returns the AccountInfo with its
// confirmation_height raised to newHeight. Consensus advances this
// watermark monotonically; the core rejects any attempt to lower it.
func AdvanceConfirmationHeight(info *types.AccountInfo, newHeight uint64) (*types.AccountInfo, error) {
	if newHeight < info.ConfirmationHeight {
		return nil, ledgererr.New(ledgererr.KindInvalidBlock,
			"confirmation height cannot decrease: current %d, requested %d", info.ConfirmationHeight, newHeight)
	}
	if newHeight > info.BlockCount {
		return nil, ledgererr.New(ledgererr.KindInvalidBlock,
			"confirmation height %d exceeds block count %d", newHeight, info.BlockCount)
	}
	cp := *info
	cp.ConfirmationHeight = newHeight
	return &cp, nil
}

// ConfirmationRequest is the event the core emits post-commit so the
// consensus collaborator can begin (or skip) an election for a newly
// appended block.
type ConfirmationRequest struct {
	ID      string
	Account types.Address
	Block   types.Hash
}

// NewConfirmationRequest builds a ConfirmationRequest with a fresh
// correlation ID, so downstream consumers can track delivery without
// depending on hash bytes as the identifier.
func NewConfirmationRequest(account types.Address, block types.Hash) ConfirmationRequest {
	return ConfirmationRequest{ID: uuid.NewString(), Account: account, Block: block}
}
