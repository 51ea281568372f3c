package trst

import (
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/cryptocap"
	"github.com/burst-network/burstnode/ledgerstore"
	"github.com/burst-network/burstnode/types"
)

func hash32(seed string) types.Hash { return cryptocap.Blake2b256([]byte(seed)) }

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

func TestRevokeMarksOriginAndSplitDescendants(t *testing.T) {
	store := newStore(t)
	eng := NewEngine(store, store, store, 1000, log.New())
	holder := mustAddr(t, "brst_revokeholder")
	origin := hash32("origin")

	parent, err := eng.Mint(origin, holder, brn.NewAmount(100), 0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	children, err := eng.Split(parent, []SplitOutput{
		{TxHash: hash32("child-a"), Holder: holder, Amount: brn.NewAmount(60)},
		{TxHash: hash32("child-b"), Holder: holder, Amount: brn.NewAmount(40)},
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	reached, err := eng.Revoke(origin)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	// Mint registers the origin as its own descendant, so the origin token
	// is reached along with every split child.
	if len(reached) != len(children)+1 {
		t.Fatalf("revoke reached %d tokens, want %d", len(reached), len(children)+1)
	}
	for _, child := range append([]*Token{parent}, children...) {
		tok, err := store.GetToken(child.TxHash)
		if err != nil {
			t.Fatalf("get token %s: %v", child.TxHash, err)
		}
		if tok.State != types.TrstRevoked {
			t.Fatalf("child %s state = %s, want revoked", child.TxHash, tok.State)
		}
	}
}

func TestRevokeReachesTransitiveMergeDescendants(t *testing.T) {
	store := newStore(t)
	eng := NewEngine(store, store, store, 1000, log.New())
	holder := mustAddr(t, "brst_mergeholder")

	originA := hash32("origin-a")
	originB := hash32("origin-b")
	a, err := eng.Mint(originA, holder, brn.NewAmount(30), 0)
	if err != nil {
		t.Fatalf("mint a: %v", err)
	}
	b, err := eng.Mint(originB, holder, brn.NewAmount(70), 0)
	if err != nil {
		t.Fatalf("mint b: %v", err)
	}

	merged, err := eng.Merge([]*Token{a, b}, hash32("merged"), holder)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	reached, err := eng.Revoke(originA)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	found := false
	for _, tx := range reached {
		if tx == merged.TxHash {
			found = true
		}
	}
	if !found {
		t.Fatalf("revoke(originA) did not reach the merge token descended from it: %+v", reached)
	}

	tok, err := store.GetToken(merged.TxHash)
	if err != nil {
		t.Fatalf("get merged token: %v", err)
	}
	if tok.State != types.TrstRevoked {
		t.Fatalf("merged token state = %s, want revoked", tok.State)
	}

	// Merge registers the merge token under every constituent origin, so
	// revoking originB reaches it too, alongside originB's own token.
	reachedB, err := eng.Revoke(originB)
	if err != nil {
		t.Fatalf("revoke originB: %v", err)
	}
	if len(reachedB) == 0 {
		t.Fatalf("revoke(originB) reached nothing, want at least the merge token")
	}
}

func TestUnRevokeRestoresActiveBeforeExpiry(t *testing.T) {
	store := newStore(t)
	const lifetime = uint64(1000)
	eng := NewEngine(store, store, store, lifetime, log.New())
	holder := mustAddr(t, "brst_unrevokeholder")
	origin := hash32("origin-unrevoke")

	parent, err := eng.Mint(origin, holder, brn.NewAmount(10), 0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	children, err := eng.Split(parent, []SplitOutput{
		{TxHash: hash32("child-u"), Holder: holder, Amount: brn.NewAmount(10)},
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if _, err := eng.Revoke(origin); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := eng.UnRevoke(origin, types.Timestamp(1)); err != nil {
		t.Fatalf("unrevoke: %v", err)
	}

	tok, err := store.GetToken(children[0].TxHash)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if tok.State != types.TrstActive {
		t.Fatalf("state after un-revoke before expiry = %s, want active", tok.State)
	}
}

func TestUnRevokeRestoresExpiredAfterExpiry(t *testing.T) {
	store := newStore(t)
	const lifetime = uint64(100)
	eng := NewEngine(store, store, store, lifetime, log.New())
	holder := mustAddr(t, "brst_unrevokeexpired")
	origin := hash32("origin-unrevoke-expired")

	parent, err := eng.Mint(origin, holder, brn.NewAmount(10), 0)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	children, err := eng.Split(parent, []SplitOutput{
		{TxHash: hash32("child-ue"), Holder: holder, Amount: brn.NewAmount(10)},
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if _, err := eng.Revoke(origin); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	// well past origin's expiry (originTimestamp 0 + lifetime 100)
	if _, err := eng.UnRevoke(origin, types.Timestamp(lifetime+1)); err != nil {
		t.Fatalf("unrevoke: %v", err)
	}

	tok, err := store.GetToken(children[0].TxHash)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if tok.State != types.TrstExpired {
		t.Fatalf("state after un-revoke past expiry = %s, want expired", tok.State)
	}
}
