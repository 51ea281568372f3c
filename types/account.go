package types

import "math/big"

// AccountInfo is the per-account summary maintained by the block processor.
// Invariant: BlockCount >= ConfirmationHeight; Head is the block at
// height == BlockCount.
type AccountInfo struct {
	Address            Address
	State              WalletState
	VerifiedAt         *Timestamp // nil until the wallet is verified
	Head               Hash
	BlockCount         uint64
	ConfirmationHeight uint64
	Representative     Address
	TotalBurned        *big.Int
	TotalStaked        *big.Int
	TrstBalance        *big.Int
	ExpiredTrst        *big.Int
	RevokedTrst        *big.Int
	Epoch              uint32
}

// IsConfirmed reports whether a block at the given height in this account's
// chain is cemented per the confirmation-height watermark.
func (a *AccountInfo) IsConfirmed(height uint64) bool {
	return height <= a.ConfirmationHeight
}
