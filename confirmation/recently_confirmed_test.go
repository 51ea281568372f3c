package confirmation

import (
	"testing"

	"github.com/burst-network/burstnode/types"
)

func makeHash(b byte) types.Hash {
	var raw [32]byte
	for i := range raw {
		raw[i] = b
	}
	return types.NewHash(raw[:])
}

func TestRecentlyConfirmedInsertAndContains(t *testing.T) {
	rc := NewRecentlyConfirmed(10)
	h := makeHash(1)
	if rc.Contains(h) {
		t.Fatalf("expected hash not yet present")
	}
	rc.Insert(h)
	if !rc.Contains(h) {
		t.Fatalf("expected hash present after insert")
	}
	if rc.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rc.Len())
	}
}

func TestRecentlyConfirmedDuplicateInsertIsNoop(t *testing.T) {
	rc := NewRecentlyConfirmed(10)
	h := makeHash(1)
	rc.Insert(h)
	rc.Insert(h)
	if rc.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rc.Len())
	}
}

func TestRecentlyConfirmedEvictionAtCapacity(t *testing.T) {
	rc := NewRecentlyConfirmed(3)
	rc.Insert(makeHash(1))
	rc.Insert(makeHash(2))
	rc.Insert(makeHash(3))
	if rc.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", rc.Len())
	}

	rc.Insert(makeHash(4)) // evicts hash(1)
	if rc.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", rc.Len())
	}
	if rc.Contains(makeHash(1)) {
		t.Fatalf("expected hash(1) evicted")
	}
	if !rc.Contains(makeHash(2)) || !rc.Contains(makeHash(3)) || !rc.Contains(makeHash(4)) {
		t.Fatalf("expected hash(2), hash(3), hash(4) present")
	}
}

func TestRecentlyConfirmedFIFOEvictionOrder(t *testing.T) {
	rc := NewRecentlyConfirmed(2)
	rc.Insert(makeHash(1))
	rc.Insert(makeHash(2))
	rc.Insert(makeHash(3)) // evicts 1
	rc.Insert(makeHash(4)) // evicts 2

	if rc.Contains(makeHash(1)) || rc.Contains(makeHash(2)) {
		t.Fatalf("expected hash(1) and hash(2) evicted")
	}
	if !rc.Contains(makeHash(3)) || !rc.Contains(makeHash(4)) {
		t.Fatalf("expected hash(3) and hash(4) present")
	}
}

func TestRecentlyConfirmedEmptyCache(t *testing.T) {
	rc := NewRecentlyConfirmed(10)
	if !rc.Empty() {
		t.Fatalf("expected empty cache")
	}
	if rc.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", rc.Len())
	}
	if rc.Contains(makeHash(1)) {
		t.Fatalf("expected no hashes present")
	}
}

func TestRecentlyConfirmedZeroCapacity(t *testing.T) {
	rc := NewRecentlyConfirmed(0)
	rc.Insert(makeHash(1))
	if rc.Contains(makeHash(1)) {
		t.Fatalf("expected zero-capacity cache to never hold entries")
	}
	if rc.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", rc.Len())
	}
}
