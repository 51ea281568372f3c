// Package ledgerstore implements the storage layer's named logical tables
// (accounts, blocks + height index, frontiers, pending, TRST origin/expiry
// indexes, merger-graph downstream index, meta, peers, BRN accrual state)
// behind one atomic
// transaction abstraction. Grounded on original_source/store/src/*.rs (the
// table-trait contracts) and core/ledger.go (the teacher's WAL + snapshot +
// mutex-guarded in-memory map pattern).
package ledgerstore

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
)

type pendingKey struct {
	Destination types.Address
	Source      types.Hash
}

type heightKey struct {
	Account types.Address
	Height  uint64
}

// walRecord is one durable unit of work: the set of table mutations applied
// by a single committed Txn. Encoded with RLP, the same stable binary format
// used for every persisted value (§6 of the design document).
type walRecord struct {
	Puts    []walPut
	Deletes []walDelete
}

type walPut struct {
	Table string
	Key   []byte
	Value []byte
}

type walDelete struct {
	Table string
	Key   []byte
}

// Store is the in-memory, WAL-backed implementation of every storage-layer
// table contract. One mutex serializes all writers, matching §5's "one
// writer, many readers" policy; reads take the read lock only.
type Store struct {
	mu sync.RWMutex

	accounts map[types.Address]*types.AccountInfo

	blocks        map[types.Hash][]byte
	blockAccount  map[types.Hash]types.Address
	blockChecksum map[types.Hash]uint64 // xxhash64 of blocks[hash], checked by CheckIntegrity
	hashByHeight  map[heightKey]types.Hash
	heightByHash  map[types.Hash]uint64
	accountChain  map[types.Address][]types.Hash

	frontiers map[types.Address]types.Hash

	pending map[pendingKey]*PendingInfo

	tokens           map[types.Hash]*trst.Token
	trstOrigin       map[types.Hash]map[types.Hash]struct{}
	mergerDownstream map[types.Hash]map[types.Hash]struct{}
	trstExpiry       map[types.Timestamp]map[types.Hash]struct{}

	meta  map[string][]byte
	peers map[string]uint64

	brnState map[types.Address]*brn.WalletState

	readCache *lru.Cache[types.Hash, []byte] // read-through cache over hot block lookups

	walFile *os.File
	log     *logrus.Logger
}

// PendingInfo is an unconsumed Send: the destination/source key lives in the
// table key, these are the value fields.
type PendingInfo struct {
	Source      types.Address
	Amount      []byte // brn.Amount.BigInt().Bytes(), kept opaque at this layer
	Timestamp   types.Timestamp
	Provenance  []PendingProvenance
}

// PendingProvenance mirrors store/src/pending.rs's PendingProvenance: the
// origin lineage carried by a consumed token so it can be reconstructed on
// Receive.
type PendingProvenance struct {
	Amount                    []byte
	Origin                    types.Hash
	OriginWallet              types.Address
	OriginTimestamp           types.Timestamp
	EffectiveOriginTimestamp types.Timestamp
	OriginProportions        []trst.OriginProportion
}

// Open creates or recovers a Store at the given WAL path, replaying any
// existing log. cacheSize sizes the read-through block cache (0 disables it).
func Open(walPath string, cacheSize int, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	f, err := os.OpenFile(walPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("ledgerstore: open WAL: %w", err)
	}

	s := &Store{
		accounts:         make(map[types.Address]*types.AccountInfo),
		blocks:           make(map[types.Hash][]byte),
		blockAccount:     make(map[types.Hash]types.Address),
		blockChecksum:    make(map[types.Hash]uint64),
		hashByHeight:     make(map[heightKey]types.Hash),
		heightByHash:     make(map[types.Hash]uint64),
		accountChain:     make(map[types.Address][]types.Hash),
		frontiers:        make(map[types.Address]types.Hash),
		pending:          make(map[pendingKey]*PendingInfo),
		tokens:           make(map[types.Hash]*trst.Token),
		trstOrigin:       make(map[types.Hash]map[types.Hash]struct{}),
		mergerDownstream: make(map[types.Hash]map[types.Hash]struct{}),
		trstExpiry:       make(map[types.Timestamp]map[types.Hash]struct{}),
		meta:             make(map[string][]byte),
		peers:            make(map[string]uint64),
		brnState:         make(map[types.Address]*brn.WalletState),
		walFile:          f,
		log:              logger,
	}
	if cacheSize > 0 {
		c, err := lru.New[types.Hash, []byte](cacheSize)
		if err != nil {
			f.Close()
			return nil, err
		}
		s.readCache = c
	}

	if err := s.replay(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) replay() error {
	scanner := bufio.NewScanner(s.walFile)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec walRecord
		if err := rlp.DecodeBytes(raw, &rec); err != nil {
			return ledgererr.Wrap(ledgererr.KindCorruption, err, "ledgerstore: WAL decode failed")
		}
		s.applyRecord(rec)
	}
	if err := scanner.Err(); err != nil {
		return ledgererr.Wrap(ledgererr.KindBackend, err, "ledgerstore: WAL scan failed")
	}
	return nil
}

// Close releases the underlying WAL file handle.
func (s *Store) Close() error {
	if s.walFile == nil {
		return nil
	}
	return s.walFile.Close()
}
