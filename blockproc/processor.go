package blockproc

import (
	"github.com/ethereum/go-ethereum/rlp"
	"go.uber.org/zap"

	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/confirmation"
	"github.com/burst-network/burstnode/consensus"
	"github.com/burst-network/burstnode/countercache"
	"github.com/burst-network/burstnode/cryptocap"
	"github.com/burst-network/burstnode/governance"
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/ledgerstore"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
	"github.com/burst-network/burstnode/verification"
	"github.com/burst-network/burstnode/work"
)

// handlerFunc applies one block kind's effects against a mutable copy of the
// account's summary, staging every storage mutation on txn. It returns the
// updated AccountInfo to persist. Table-dispatched by Processor.Process, per
// §9's "table of handler functions keyed by kind, not runtime method
// lookup" re-architecture note.
type handlerFunc func(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error)

// Processor wires every ledger collaborator into one block-application
// pipeline: validate, apply, persist, notify. Grounded on
// core/account_and_balance_operations.go's manager-over-ledger shape,
// generalized from single-account transfers to the fourteen-kind dispatch
// table this system needs.
type Processor struct {
	store *ledgerstore.Store

	brn  *brn.Engine
	trst *trst.Engine

	cache  *countercache.LedgerCache
	recent *confirmation.RecentlyConfirmed

	verifier cryptocap.Verifier

	consensusCollab    consensus.Collaborator
	verificationCollab verification.Collaborator
	governanceCollab   governance.Collaborator

	maxClockDriftSecs uint64

	log   *log.Logger
	trace *zap.Logger
}

// NewProcessor wires a Processor from its collaborators.
func NewProcessor(
	store *ledgerstore.Store,
	brnEngine *brn.Engine,
	trstEngine *trst.Engine,
	cache *countercache.LedgerCache,
	recent *confirmation.RecentlyConfirmed,
	verifier cryptocap.Verifier,
	consensusCollab consensus.Collaborator,
	verificationCollab verification.Collaborator,
	governanceCollab governance.Collaborator,
	maxClockDriftSecs uint64,
	logger *log.Logger,
	trace *zap.Logger,
) *Processor {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if trace == nil {
		trace = zap.NewNop()
	}
	return &Processor{
		store:              store,
		brn:                brnEngine,
		trst:               trstEngine,
		cache:              cache,
		recent:             recent,
		verifier:           verifier,
		consensusCollab:    consensusCollab,
		verificationCollab: verificationCollab,
		governanceCollab:   governanceCollab,
		maxClockDriftSecs:  maxClockDriftSecs,
		log:                logger,
		trace:              trace,
	}
}

// Process runs one block through the five-step pipeline (§4.2): shape
// checks, chain-linkage check, kind-dispatched effect application, atomic
// persistence, and post-commit notification.
func (p *Processor) Process(block *types.StateBlock, payload Payload, pub cryptocap.PublicKey) Outcome {
	p.trace.Debug("processing block", zap.String("account", string(block.Account)), zap.String("kind", block.Kind.String()))

	if err := p.checkShape(block, payload, pub); err != nil {
		p.log.WithFields(log.Fields{"account": block.Account, "kind": block.Kind, "err": err}).Warn("block rejected: shape check failed")
		return Outcome{Kind: Rejected, Err: err}
	}

	info, outcome, err := p.checkLinkage(block)
	if err != nil {
		return Outcome{Kind: Rejected, Err: err}
	}
	if outcome != nil {
		return *outcome
	}

	handler, ok := handlers[block.Kind]
	if !ok {
		return Outcome{Kind: Rejected, Err: ledgererr.New(ledgererr.KindInvalidBlock, "unknown block kind %s", block.Kind)}
	}

	txn := p.store.Begin()
	newInfo, err := handler(p, txn, info, block, payload)
	if err != nil {
		return Outcome{Kind: Rejected, Err: err}
	}

	height := newInfo.BlockCount
	blockBytes, err := rlp.EncodeToBytes(block)
	if err != nil {
		return Outcome{Kind: Rejected, Err: ledgererr.Wrap(ledgererr.KindBackend, err, "encode block")}
	}
	txn.PutBlockWithAccount(block.Hash, blockBytes, block.Account, height)
	txn.PutFrontier(block.Account, block.Hash)
	txn.PutAccount(newInfo)

	if err := txn.Commit(); err != nil {
		return Outcome{Kind: Rejected, Err: err}
	}

	p.cache.IncBlockCount()
	if block.IsOpen() {
		p.cache.IncAccountCount()
	}

	if !p.recent.Contains(block.Hash) {
		p.consensusCollab.NotifyConfirmationRequest(confirmation.NewConfirmationRequest(block.Account, block.Hash))
	}
	p.recent.Insert(block.Hash)

	p.log.WithFields(log.Fields{"account": block.Account, "kind": block.Kind, "hash": block.Hash, "height": height}).Info("block accepted")
	return Outcome{Kind: Accepted}
}

// checkShape validates everything independent of chain position: signature,
// proof of work, clock drift, and kind-specific payload presence (§4.2
// step 1).
func (p *Processor) checkShape(block *types.StateBlock, payload Payload, pub cryptocap.PublicKey) error {
	if !p.verifier.Verify(block.Hash.Bytes(), block.Signature, pub) {
		return ledgererr.New(ledgererr.KindInvalidBlock, "signature invalid for block %s", block.Hash)
	}

	difficulty := p.governanceCollab.CurrentPowDifficulty()
	if !work.ValidateWork(block.Hash, block.Work, difficulty) {
		return ledgererr.New(ledgererr.KindInvalidBlock, "proof of work below difficulty %d for block %s", difficulty, block.Hash)
	}

	now := types.Now()
	var drift uint64
	if now > block.Timestamp {
		drift = uint64(now - block.Timestamp)
	} else {
		drift = uint64(block.Timestamp - now)
	}
	if drift > p.maxClockDriftSecs {
		return ledgererr.New(ledgererr.KindInvalidBlock, "block timestamp %d outside clock-drift tolerance of now=%d", block.Timestamp, now)
	}

	switch block.Kind {
	case types.BlockOpen:
		if !block.Previous.IsZero() {
			return ledgererr.New(ledgererr.KindInvalidBlock, "open block must have zero previous hash")
		}
	case types.BlockBurn:
		if !payload.Destination.Valid() {
			return ledgererr.New(ledgererr.KindInvalidBlock, "burn requires a valid destination")
		}
	case types.BlockSend:
		if !payload.Destination.Valid() || payload.Token.IsZero() {
			return ledgererr.New(ledgererr.KindInvalidBlock, "send requires a destination and a spent token")
		}
	case types.BlockSplit:
		if len(payload.SplitOutputs) == 0 {
			return ledgererr.New(ledgererr.KindInvalidBlock, "split requires at least one output")
		}
		if block.Link.IsZero() {
			return ledgererr.New(ledgererr.KindInvalidBlock, "split requires a parent token in link")
		}
	case types.BlockMerge:
		if len(payload.MergeInputs) == 0 {
			return ledgererr.New(ledgererr.KindEmptyMerge, "merge requires at least one input")
		}
	case types.BlockEndorse, types.BlockChallenge:
		if !payload.Target.Valid() {
			return ledgererr.New(ledgererr.KindInvalidBlock, "endorse/challenge requires a valid target")
		}
	}
	return nil
}

// checkLinkage determines whether block extends its account's frontier, is
// missing a predecessor (Gap), or conflicts with an already-accepted
// successor (Fork) (§4.2 step 2). Returns the account's current summary
// (nil for a fresh Open) when the block may proceed to effect application.
func (p *Processor) checkLinkage(block *types.StateBlock) (*types.AccountInfo, *Outcome, error) {
	if block.IsOpen() {
		if p.store.AccountExists(block.Account) {
			return nil, nil, ledgererr.New(ledgererr.KindInvalidBlock, "open block for already-opened account %s", block.Account)
		}
		return nil, nil, nil
	}

	info, err := p.store.GetAccount(block.Account)
	if err != nil {
		return nil, &Outcome{Kind: Gap, PreviousHash: block.Previous}, nil
	}
	if block.Previous == info.Head {
		return info, nil, nil
	}
	if !p.store.BlockExists(block.Previous) {
		return nil, &Outcome{Kind: Gap, PreviousHash: block.Previous}, nil
	}

	if observer, ok := p.consensusCollab.(consensus.ForkObserver); ok {
		observer.NotifyFork(consensus.ForkEvent{
			Account:           block.Account,
			ExistingBlockHash: info.Head,
			IncomingBlockHash: block.Hash,
		})
	}
	return nil, &Outcome{Kind: Fork, PreviousHash: block.Previous, ExistingHash: info.Head}, nil
}
