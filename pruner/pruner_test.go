package pruner

import (
	"context"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/cryptocap"
	"github.com/burst-network/burstnode/ledgerstore"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
)

// hash32 derives a deterministic 32-byte Hash from an arbitrary seed, since
// types.NewHash requires an exact 32-byte slice.
func hash32(seed string) types.Hash { return cryptocap.Blake2b256([]byte(seed)) }

type fakeArchiver struct {
	batches [][][]byte
}

func (f *fakeArchiver) Archive(batch [][]byte) error {
	cp := make([][]byte, len(batch))
	copy(cp, batch)
	f.batches = append(f.batches, cp)
	return nil
}

func newStore(t *testing.T) *ledgerstore.Store {
	t.Helper()
	s, err := ledgerstore.Open(filepath.Join(t.TempDir(), "wal.log"), 0, log.New())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func mustAddr(t *testing.T, s string) types.Address {
	t.Helper()
	a, ok := types.NewAddress(s)
	if !ok {
		t.Fatalf("invalid address %q", s)
	}
	return a
}

// putBlock stores a dummy block so the pruner has bytes to archive and
// delete alongside the token it is attached to.
func putBlock(t *testing.T, store *ledgerstore.Store, hash types.Hash, account types.Address) {
	t.Helper()
	txn := store.Begin()
	txn.PutBlockWithAccount(hash, []byte("block-"+hash.String()), account, 1)
	if err := txn.Commit(); err != nil {
		t.Fatalf("commit block: %v", err)
	}
}

func TestRunPrunesExpiredTokens(t *testing.T) {
	store := newStore(t)
	const lifetime = uint64(1000)
	eng := trst.NewEngine(store, store, store, lifetime, log.New())

	holder := mustAddr(t, "brst_pruneholder")
	origin := hash32("origin-block")

	tok, err := eng.Mint(origin, holder, brn.NewAmount(100), 0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	putBlock(t, store, tok.TxHash, holder)

	archiver := &fakeArchiver{}
	p := New(store, eng, archiver, log.New())

	cfg := Config{BatchSize: 10, GraceSecs: 0}
	now := types.Timestamp(lifetime + 1)

	n, err := p.Run(context.Background(), cfg, now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned = %d, want 1", n)
	}
	if p.PrunedCount() != 1 {
		t.Fatalf("PrunedCount = %d, want 1", p.PrunedCount())
	}

	if _, err := store.GetToken(tok.TxHash); err == nil {
		t.Fatalf("expected token to be deleted after pruning")
	}
	if store.BlockExists(tok.TxHash) {
		t.Fatalf("expected block bytes to be deleted after pruning")
	}
	if len(archiver.batches) != 1 || len(archiver.batches[0]) != 1 {
		t.Fatalf("expected one archived batch of one block, got %+v", archiver.batches)
	}
}

func TestRunSkipsUnexpiredTokens(t *testing.T) {
	store := newStore(t)
	const lifetime = uint64(1000)
	eng := trst.NewEngine(store, store, store, lifetime, log.New())

	holder := mustAddr(t, "brst_pruneholder")
	origin := hash32("origin-fresh")

	tok, err := eng.Mint(origin, holder, brn.NewAmount(50), 0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	putBlock(t, store, tok.TxHash, holder)

	p := New(store, eng, nil, log.New())
	cfg := Config{BatchSize: 10, GraceSecs: 0}

	n, err := p.Run(context.Background(), cfg, types.Timestamp(10))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 0 {
		t.Fatalf("pruned = %d, want 0", n)
	}
	if !store.BlockExists(tok.TxHash) {
		t.Fatalf("expected unexpired token's block to survive")
	}
}

func TestRunBatchesAcrossMultipleCommits(t *testing.T) {
	store := newStore(t)
	const lifetime = uint64(100)
	eng := trst.NewEngine(store, store, store, lifetime, log.New())
	holder := mustAddr(t, "brst_pruneholder")

	for i := 0; i < 5; i++ {
		origin := hash32(string(rune(i)))
		tok, err := eng.Mint(origin, holder, brn.NewAmount(1), 0)
		if err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
		putBlock(t, store, tok.TxHash, holder)
	}

	archiver := &fakeArchiver{}
	p := New(store, eng, archiver, log.New())
	cfg := Config{BatchSize: 2, GraceSecs: 0}

	n, err := p.Run(context.Background(), cfg, types.Timestamp(lifetime+1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 5 {
		t.Fatalf("pruned = %d, want 5", n)
	}
	if len(archiver.batches) != 3 { // 2 + 2 + 1
		t.Fatalf("expected 3 archived batches, got %d", len(archiver.batches))
	}
}
