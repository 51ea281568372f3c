package confirmation

import (
	"math/big"
	"testing"

	"github.com/burst-network/burstnode/types"
)

type fakeHeightIndex struct {
	heights  map[types.Hash]uint64
	accounts map[types.Address]*types.AccountInfo
}

func (f *fakeHeightIndex) HeightOfBlock(hash types.Hash) (uint64, bool) {
	h, ok := f.heights[hash]
	return h, ok
}

func (f *fakeHeightIndex) GetAccount(addr types.Address) (*types.AccountInfo, error) {
	return f.accounts[addr], nil
}

func TestIsBlockConfirmed(t *testing.T) {
	addr := types.Address("brst_test")
	h1 := makeHash(1)
	h2 := makeHash(2)
	idx := &fakeHeightIndex{
		heights: map[types.Hash]uint64{h1: 1, h2: 2},
		accounts: map[types.Address]*types.AccountInfo{
			addr: {Address: addr, ConfirmationHeight: 1, BlockCount: 2},
		},
	}

	confirmed, err := IsBlockConfirmed(idx, addr, h1)
	if err != nil || !confirmed {
		t.Fatalf("expected h1 confirmed, got %v err %v", confirmed, err)
	}
	confirmed, err = IsBlockConfirmed(idx, addr, h2)
	if err != nil || confirmed {
		t.Fatalf("expected h2 not confirmed, got %v err %v", confirmed, err)
	}
}

func TestAdvanceConfirmationHeightRejectsDecrease(t *testing.T) {
	info := &types.AccountInfo{ConfirmationHeight: 5, BlockCount: 10, TotalBurned: big.NewInt(0), TotalStaked: big.NewInt(0), TrstBalance: big.NewInt(0), ExpiredTrst: big.NewInt(0), RevokedTrst: big.NewInt(0)}
	if _, err := AdvanceConfirmationHeight(info, 4); err == nil {
		t.Fatalf("expected error on confirmation-height decrease")
	}
}

func TestAdvanceConfirmationHeightRejectsBeyondBlockCount(t *testing.T) {
	info := &types.AccountInfo{ConfirmationHeight: 2, BlockCount: 5, TotalBurned: big.NewInt(0), TotalStaked: big.NewInt(0), TrstBalance: big.NewInt(0), ExpiredTrst: big.NewInt(0), RevokedTrst: big.NewInt(0)}
	if _, err := AdvanceConfirmationHeight(info, 6); err == nil {
		t.Fatalf("expected error when new height exceeds block count")
	}
}

func TestAdvanceConfirmationHeightAccepts(t *testing.T) {
	info := &types.AccountInfo{ConfirmationHeight: 2, BlockCount: 5, TotalBurned: big.NewInt(0), TotalStaked: big.NewInt(0), TrstBalance: big.NewInt(0), ExpiredTrst: big.NewInt(0), RevokedTrst: big.NewInt(0)}
	next, err := AdvanceConfirmationHeight(info, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ConfirmationHeight != 4 {
		t.Fatalf("ConfirmationHeight = %d, want 4", next.ConfirmationHeight)
	}
	if info.ConfirmationHeight != 2 {
		t.Fatalf("expected original AccountInfo untouched, got %d", info.ConfirmationHeight)
	}
}
