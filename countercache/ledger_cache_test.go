package countercache

import "testing"

func TestLedgerCacheInitialValues(t *testing.T) {
	c := New(10, 5, 3)
	if c.BlockCount() != 10 {
		t.Fatalf("BlockCount() = %d, want 10", c.BlockCount())
	}
	if c.AccountCount() != 5 {
		t.Fatalf("AccountCount() = %d, want 5", c.AccountCount())
	}
	if c.PendingCount() != 3 {
		t.Fatalf("PendingCount() = %d, want 3", c.PendingCount())
	}
}

func TestLedgerCacheIncrementDecrement(t *testing.T) {
	c := New(0, 0, 0)
	c.IncBlockCount()
	c.IncBlockCount()
	if c.BlockCount() != 2 {
		t.Fatalf("BlockCount() = %d, want 2", c.BlockCount())
	}
	c.DecBlockCount()
	if c.BlockCount() != 1 {
		t.Fatalf("BlockCount() = %d, want 1", c.BlockCount())
	}

	c.IncAccountCount()
	if c.AccountCount() != 1 {
		t.Fatalf("AccountCount() = %d, want 1", c.AccountCount())
	}

	c.IncPendingCount()
	c.IncPendingCount()
	c.DecPendingCount()
	if c.PendingCount() != 1 {
		t.Fatalf("PendingCount() = %d, want 1", c.PendingCount())
	}
}
