package blockproc

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/confirmation"
	"github.com/burst-network/burstnode/consensus"
	"github.com/burst-network/burstnode/countercache"
	"github.com/burst-network/burstnode/cryptocap"
	"github.com/burst-network/burstnode/governance"
	"github.com/burst-network/burstnode/ledgerstore"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
	"github.com/burst-network/burstnode/verification"
)

type harness struct {
	store      *ledgerstore.Store
	brnEngine  *brn.Engine
	trstEngine *trst.Engine
	proc       *Processor
	pub        cryptocap.PublicKey
	priv       cryptocap.PrivateKey
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := ledgerstore.Open(filepath.Join(t.TempDir(), "wal.log"), 64, log.New())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	brnEngine := brn.NewEngine(0, log.New())
	trstEngine := trst.NewEngine(store, store, store, 1_000_000, log.New())
	cache := countercache.New(0, 0, 0)
	recent := confirmation.NewRecentlyConfirmed(1024)
	pub, priv, err := cryptocap.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}

	proc := NewProcessor(
		store, brnEngine, trstEngine, cache, recent,
		cryptocap.Ed25519Verifier{},
		consensus.NewDefaultCollaborator(),
		verification.NewDefaultCollaborator(),
		governance.NewDefaultCollaborator(0, 1_000_000, 1, brn.NewAmount(10)),
		// The scenarios use fixed small timestamps far from the wall clock
		// checkShape compares against, so drift is left unbounded here.
		^uint64(0),
		log.New(), nil,
	)
	return &harness{store: store, brnEngine: brnEngine, trstEngine: trstEngine, proc: proc, pub: pub, priv: priv}
}

// sign computes b's hash over every field but Hash/Signature, signs it, and
// attaches a zero-difficulty proof of work (valid since difficulty 0 always
// passes).
func (h *harness) sign(t *testing.T, b *types.StateBlock) {
	t.Helper()
	b.Hash = types.Hash{}
	b.Signature = nil
	raw, err := rlp.EncodeToBytes(b)
	if err != nil {
		t.Fatalf("encode block: %v", err)
	}
	b.Hash = cryptocap.Blake2b256(raw)
	b.Signature = cryptocap.NewEd25519Signer(h.priv).Sign(b.Hash.Bytes())
	b.Work = 0
}

// verify wallet marks account as verified with an open BRN rate segment, as
// if the (out-of-scope) verification collaborator had already run its state
// machine.
func (h *harness) verifyWallet(t *testing.T, account types.Address, rate uint64, at types.Timestamp) {
	t.Helper()
	info, err := h.store.GetAccount(account)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	txn := h.store.Begin()
	cp := *info
	cp.State = types.WalletVerified
	cp.VerifiedAt = &at
	txn.PutAccount(&cp)
	txn.PutBrnState(account, brn.NewWalletState(at, brn.NewAmount(rate)))
	if err := txn.Commit(); err != nil {
		t.Fatalf("commit verify: %v", err)
	}
}

func mustAddress(t *testing.T, s string) types.Address {
	t.Helper()
	a, ok := types.NewAddress(s)
	if !ok {
		t.Fatalf("invalid address %q", s)
	}
	return a
}

func TestOpenAccount(t *testing.T) {
	h := newHarness(t)
	a := mustAddress(t, "brst_alice")

	open := &types.StateBlock{Kind: types.BlockOpen, Account: a, Representative: a, Timestamp: 0}
	h.sign(t, open)

	out := h.proc.Process(open, Payload{}, h.pub)
	if out.Kind != Accepted {
		t.Fatalf("open: got %s, err=%v", out.Kind, out.Err)
	}

	info, err := h.store.GetAccount(a)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if info.BlockCount != 1 || info.Head != open.Hash {
		t.Fatalf("unexpected account state after open: %+v", info)
	}
}

// TestBurnThenReceive ports §8 scenario 1: burn then receive.
func TestBurnThenReceive(t *testing.T) {
	h := newHarness(t)
	a := mustAddress(t, "brst_alice")
	b := mustAddress(t, "brst_bob")

	for _, acct := range []types.Address{a, b} {
		open := &types.StateBlock{Kind: types.BlockOpen, Account: acct, Representative: acct, Timestamp: 0}
		h.sign(t, open)
		if out := h.proc.Process(open, Payload{}, h.pub); out.Kind != Accepted {
			t.Fatalf("open %s: got %s, err=%v", acct, out.Kind, out.Err)
		}
	}
	h.verifyWallet(t, a, 10, 0)

	aInfo, _ := h.store.GetAccount(a)
	burn := &types.StateBlock{
		Kind: types.BlockBurn, Account: a, Previous: aInfo.Head,
		Representative: a, Timestamp: 1000,
	}
	h.sign(t, burn)
	out := h.proc.Process(burn, Payload{Destination: b, Amount: brn.NewAmount(500)}, h.pub)
	if out.Kind != Accepted {
		t.Fatalf("burn: got %s, err=%v", out.Kind, out.Err)
	}

	aInfo, _ = h.store.GetAccount(a)
	if aInfo.TotalBurned.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected total_burned=500, got %s", aInfo.TotalBurned)
	}
	brnState, err := h.store.GetBrnState(a)
	if err != nil {
		t.Fatalf("get brn state: %v", err)
	}
	available := h.brnEngine.ComputeBalance(brnState, 1000)
	if available.Cmp(brn.NewAmount(9500)) != 0 {
		t.Fatalf("expected available=9500 (10000 accrued - 500 burned), got %s", available)
	}

	pending, err := h.store.GetPending(b, burn.Hash)
	if err != nil {
		t.Fatalf("expected pending entry for b: %v", err)
	}
	if new(big.Int).SetBytes(pending.Amount).Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected pending amount=500, got %s", new(big.Int).SetBytes(pending.Amount))
	}

	descendants, err := h.store.Descendants(burn.Hash)
	if err != nil || len(descendants) != 1 || descendants[0] != burn.Hash {
		t.Fatalf("expected origin self-descendant, got %v, err=%v", descendants, err)
	}

	bInfo, _ := h.store.GetAccount(b)
	receive := &types.StateBlock{
		Kind: types.BlockReceive, Account: b, Previous: bInfo.Head,
		Representative: b, Link: burn.Hash, Timestamp: 1001,
	}
	h.sign(t, receive)
	out = h.proc.Process(receive, Payload{}, h.pub)
	if out.Kind != Accepted {
		t.Fatalf("receive: got %s, err=%v", out.Kind, out.Err)
	}

	bInfo, _ = h.store.GetAccount(b)
	if bInfo.TrstBalance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected b.trst_balance=500, got %s", bInfo.TrstBalance)
	}
	if _, err := h.store.GetPending(b, burn.Hash); err == nil {
		t.Fatalf("expected pending entry to be consumed")
	}
}

// TestSplitConservation ports §8 scenario 2.
func TestSplitConservation(t *testing.T) {
	h := newHarness(t)
	a := mustAddress(t, "brst_alice")
	b := mustAddress(t, "brst_bob")
	c := mustAddress(t, "brst_carol")
	d := mustAddress(t, "brst_dave")

	for _, acct := range []types.Address{a, b} {
		open := &types.StateBlock{Kind: types.BlockOpen, Account: acct, Representative: acct}
		h.sign(t, open)
		h.proc.Process(open, Payload{}, h.pub)
	}
	h.verifyWallet(t, a, 10, 0)

	aInfo, _ := h.store.GetAccount(a)
	burn := &types.StateBlock{Kind: types.BlockBurn, Account: a, Previous: aInfo.Head, Representative: a, Timestamp: 100}
	h.sign(t, burn)
	h.proc.Process(burn, Payload{Destination: b, Amount: brn.NewAmount(500)}, h.pub)

	bInfo, _ := h.store.GetAccount(b)
	receive := &types.StateBlock{Kind: types.BlockReceive, Account: b, Previous: bInfo.Head, Representative: b, Link: burn.Hash, Timestamp: 101}
	h.sign(t, receive)
	h.proc.Process(receive, Payload{}, h.pub)

	bInfo, _ = h.store.GetAccount(b)
	good := &types.StateBlock{Kind: types.BlockSplit, Account: b, Previous: bInfo.Head, Representative: b, Link: burn.Hash, Timestamp: 102}
	h.sign(t, good)
	out := h.proc.Process(good, Payload{SplitOutputs: []SplitOutputPayload{
		{TxHash: cryptocap.Blake2b256([]byte("out1")), Holder: c, Amount: brn.NewAmount(300)},
		{TxHash: cryptocap.Blake2b256([]byte("out2")), Holder: d, Amount: brn.NewAmount(200)},
	}}, h.pub)
	if out.Kind != Accepted {
		t.Fatalf("split: got %s, err=%v", out.Kind, out.Err)
	}

	bInfo, _ = h.store.GetAccount(b)
	if bInfo.TrstBalance.Sign() != 0 {
		t.Fatalf("expected b.trst_balance=0 after split, got %s", bInfo.TrstBalance)
	}
}

// TestSplitMismatchRejected checks the SplitMismatch failure mode from §4.4.
func TestSplitMismatchRejected(t *testing.T) {
	h := newHarness(t)
	a := mustAddress(t, "brst_alice")
	b := mustAddress(t, "brst_bob")
	c := mustAddress(t, "brst_carol")

	for _, acct := range []types.Address{a, b} {
		open := &types.StateBlock{Kind: types.BlockOpen, Account: acct, Representative: acct}
		h.sign(t, open)
		h.proc.Process(open, Payload{}, h.pub)
	}
	h.verifyWallet(t, a, 10, 0)

	aInfo, _ := h.store.GetAccount(a)
	burn := &types.StateBlock{Kind: types.BlockBurn, Account: a, Previous: aInfo.Head, Representative: a, Timestamp: 100}
	h.sign(t, burn)
	h.proc.Process(burn, Payload{Destination: b, Amount: brn.NewAmount(500)}, h.pub)

	bInfo, _ := h.store.GetAccount(b)
	receive := &types.StateBlock{Kind: types.BlockReceive, Account: b, Previous: bInfo.Head, Representative: b, Link: burn.Hash, Timestamp: 101}
	h.sign(t, receive)
	h.proc.Process(receive, Payload{}, h.pub)

	bInfo, _ = h.store.GetAccount(b)
	bad := &types.StateBlock{Kind: types.BlockSplit, Account: b, Previous: bInfo.Head, Representative: b, Link: burn.Hash, Timestamp: 102}
	h.sign(t, bad)
	out := h.proc.Process(bad, Payload{SplitOutputs: []SplitOutputPayload{
		{TxHash: cryptocap.Blake2b256([]byte("x1")), Holder: c, Amount: brn.NewAmount(300)},
		{TxHash: cryptocap.Blake2b256([]byte("x2")), Holder: c, Amount: brn.NewAmount(100)},
	}}, h.pub)
	if out.Kind != Rejected {
		t.Fatalf("expected Rejected on split mismatch, got %s", out.Kind)
	}
}

// TestForkDetection ports §8 scenario 6.
func TestForkDetection(t *testing.T) {
	h := newHarness(t)
	a := mustAddress(t, "brst_alice")

	open := &types.StateBlock{Kind: types.BlockOpen, Account: a, Representative: a}
	h.sign(t, open)
	h.proc.Process(open, Payload{}, h.pub)
	info, _ := h.store.GetAccount(a)

	bx := &types.StateBlock{Kind: types.BlockChangeRep, Account: a, Previous: info.Head, Representative: a, Timestamp: 1}
	h.sign(t, bx)
	out := h.proc.Process(bx, Payload{}, h.pub)
	if out.Kind != Accepted {
		t.Fatalf("bx: got %s, err=%v", out.Kind, out.Err)
	}

	by := &types.StateBlock{Kind: types.BlockChangeRep, Account: a, Previous: info.Head, Representative: a, Timestamp: 2}
	h.sign(t, by)
	out = h.proc.Process(by, Payload{}, h.pub)
	if out.Kind != Fork {
		t.Fatalf("expected Fork, got %s (err=%v)", out.Kind, out.Err)
	}
	if out.ExistingHash != bx.Hash {
		t.Fatalf("expected existing hash = bx.Hash, got %s", out.ExistingHash)
	}
}

// TestGapDetection checks a block whose previous hash is entirely unknown.
func TestGapDetection(t *testing.T) {
	h := newHarness(t)
	a := mustAddress(t, "brst_alice")

	orphan := &types.StateBlock{Kind: types.BlockChangeRep, Account: a, Previous: cryptocap.Blake2b256([]byte("ghost")), Representative: a}
	h.sign(t, orphan)
	out := h.proc.Process(orphan, Payload{}, h.pub)
	if out.Kind != Gap {
		t.Fatalf("expected Gap, got %s", out.Kind)
	}
}
