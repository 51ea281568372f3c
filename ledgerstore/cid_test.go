package ledgerstore

import (
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/types"
)

func TestBlockCIDIsDeterministicAndContentAddressed(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "wal.log"), 0, log.New())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	hash := types.Hash{1, 2, 3}
	txn := store.Begin()
	txn.PutBlockWithAccount(hash, []byte("same bytes"), "brst_alice", 1)
	if err := txn.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	c1, err := store.BlockCID(hash)
	if err != nil {
		t.Fatalf("BlockCID: %v", err)
	}
	c2, err := store.BlockCID(hash)
	if err != nil {
		t.Fatalf("BlockCID (second call): %v", err)
	}
	if c1 != c2 {
		t.Fatalf("BlockCID not deterministic: %q != %q", c1, c2)
	}

	other := types.Hash{4, 5, 6}
	txn2 := store.Begin()
	txn2.PutBlockWithAccount(other, []byte("different bytes"), "brst_bob", 1)
	if err := txn2.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	c3, err := store.BlockCID(other)
	if err != nil {
		t.Fatalf("BlockCID: %v", err)
	}
	if c3 == c1 {
		t.Fatalf("distinct block bytes produced the same CID")
	}
}

func TestCheckIntegrityDetectsChecksumMismatch(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "wal.log"), 0, log.New())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	hash := types.Hash{7, 8, 9}
	txn := store.Begin()
	txn.PutBlockWithAccount(hash, []byte("original"), "brst_alice", 1)
	if err := txn.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if report := store.CheckIntegrity(); !report.Healthy() {
		t.Fatalf("expected a healthy report before tampering, got %+v", report)
	}

	store.mu.Lock()
	store.blocks[hash] = []byte("tampered")
	store.mu.Unlock()

	report := store.CheckIntegrity()
	if report.Healthy() {
		t.Fatalf("expected tampered block bytes to be flagged")
	}
}
