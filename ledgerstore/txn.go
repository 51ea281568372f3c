package ledgerstore

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
)

// Table name constants, used for WAL record tagging and the startup
// integrity scan's expected-table list.
const (
	TableAccounts         = "accounts"
	TableBlocks           = "blocks"
	TableHashByHeight     = "hash_by_height"
	TableHeightByHash     = "height_by_hash"
	TableFrontiers        = "frontiers"
	TablePending          = "pending"
	TableTokens           = "tokens"
	TableTrstOriginIndex  = "trst_origin_index"
	TableMergerDownstream = "merger_downstream"
	TableTrstExpiryIndex  = "trst_expiry_index"
	TableMeta             = "meta"
	TablePeers            = "peers"
	TableBrnState         = "brn_state"
)

// ExpectedTables is the fixed list the startup integrity scan opens and
// counts (§4.1). A table present here but unreadable is fatal; one simply
// empty (fresh node) is fine.
var ExpectedTables = []string{
	TableAccounts, TableBlocks, TableHashByHeight, TableHeightByHash, TableFrontiers,
	TablePending, TableTokens, TableTrstOriginIndex, TableMergerDownstream,
	TableTrstExpiryIndex, TableMeta, TablePeers, TableBrnState,
}

type blockRecord struct {
	Bytes    []byte
	Account  types.Address
	Checksum uint64 // xxhash64 of Bytes, verified by the startup integrity scan
}

type originIndexKey struct {
	Origin types.Hash
	Tx     types.Hash
}

type downstreamKey struct {
	Parent types.Hash
	Child  types.Hash
}

type expiryKey struct {
	Expiry types.Timestamp
	Tx     types.Hash
}

// Txn batches mutations across multiple tables so a single block's effects
// commit atomically (§4.1: "all multi-table mutations on a single block
// application must commit atomically or not at all"). Nothing is visible to
// other readers until Commit succeeds.
type Txn struct {
	store *Store
	apply []func()
	rec   walRecord
}

// Begin starts a new transaction against the store.
func (s *Store) Begin() *Txn {
	return &Txn{store: s}
}

func (t *Txn) stagePut(table string, key, value any, apply func()) {
	kb, _ := rlp.EncodeToBytes(key)
	vb, _ := rlp.EncodeToBytes(value)
	t.rec.Puts = append(t.rec.Puts, walPut{Table: table, Key: kb, Value: vb})
	t.apply = append(t.apply, apply)
}

func (t *Txn) stageDelete(table string, key any, apply func()) {
	kb, _ := rlp.EncodeToBytes(key)
	t.rec.Deletes = append(t.rec.Deletes, walDelete{Table: table, Key: kb})
	t.apply = append(t.apply, apply)
}

// Commit applies every staged mutation under the store's write lock and
// appends one WAL record covering the whole transaction, then fsyncs.
// In-memory maps are only mutated after the record is durably appended, so
// a crash mid-commit leaves either all or none of the transaction visible
// on the next replay.
func (t *Txn) Commit() error {
	if len(t.apply) == 0 {
		return nil
	}
	raw, err := rlp.EncodeToBytes(t.rec)
	if err != nil {
		return ledgererr.Wrap(ledgererr.KindBackend, err, "ledgerstore: encode WAL record")
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, err := t.store.walFile.Write(append(raw, '\n')); err != nil {
		return ledgererr.Wrap(ledgererr.KindBackend, err, "ledgerstore: append WAL record")
	}
	if err := t.store.walFile.Sync(); err != nil {
		return ledgererr.Wrap(ledgererr.KindBackend, err, "ledgerstore: sync WAL")
	}
	for _, fn := range t.apply {
		fn()
	}
	return nil
}

// applyRecord replays a decoded WAL record's effects into the in-memory
// tables during startup recovery, decoding each value into the concrete Go
// type its table holds.
func (s *Store) applyRecord(rec walRecord) {
	for _, p := range rec.Puts {
		switch p.Table {
		case TableAccounts:
			var key types.Address
			var val types.AccountInfo
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.accounts[key] = &val
		case TableBlocks:
			var key types.Hash
			var val blockRecord
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.blocks[key] = val.Bytes
			s.blockAccount[key] = val.Account
			s.blockChecksum[key] = val.Checksum
			s.accountChain[val.Account] = append(s.accountChain[val.Account], key)
		case TableHashByHeight:
			var key heightKey
			var val types.Hash
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.hashByHeight[key] = val
		case TableHeightByHash:
			var key types.Hash
			var val uint64
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.heightByHash[key] = val
		case TableFrontiers:
			var key types.Address
			var val types.Hash
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.frontiers[key] = val
		case TablePending:
			var key pendingKey
			var val PendingInfo
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.pending[key] = &val
		case TableTokens:
			var key types.Hash
			var val trst.Token
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.tokens[key] = &val
		case TableTrstOriginIndex:
			var key originIndexKey
			rlp.DecodeBytes(p.Key, &key)
			if s.trstOrigin[key.Origin] == nil {
				s.trstOrigin[key.Origin] = make(map[types.Hash]struct{})
			}
			s.trstOrigin[key.Origin][key.Tx] = struct{}{}
		case TableMergerDownstream:
			var key downstreamKey
			rlp.DecodeBytes(p.Key, &key)
			if s.mergerDownstream[key.Parent] == nil {
				s.mergerDownstream[key.Parent] = make(map[types.Hash]struct{})
			}
			s.mergerDownstream[key.Parent][key.Child] = struct{}{}
		case TableTrstExpiryIndex:
			var key expiryKey
			rlp.DecodeBytes(p.Key, &key)
			if s.trstExpiry[key.Expiry] == nil {
				s.trstExpiry[key.Expiry] = make(map[types.Hash]struct{})
			}
			s.trstExpiry[key.Expiry][key.Tx] = struct{}{}
		case TableMeta:
			var key string
			var val []byte
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.meta[key] = val
		case TablePeers:
			var key string
			var val uint64
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.peers[key] = val
		case TableBrnState:
			var key types.Address
			var val brn.WalletState
			rlp.DecodeBytes(p.Key, &key)
			rlp.DecodeBytes(p.Value, &val)
			s.brnState[key] = &val
		}
	}
	for _, d := range rec.Deletes {
		switch d.Table {
		case TableAccounts:
			var key types.Address
			rlp.DecodeBytes(d.Key, &key)
			delete(s.accounts, key)
		case TableBlocks:
			var key types.Hash
			rlp.DecodeBytes(d.Key, &key)
			delete(s.blocks, key)
			delete(s.blockAccount, key)
			delete(s.blockChecksum, key)
		case TableFrontiers:
			var key types.Address
			rlp.DecodeBytes(d.Key, &key)
			delete(s.frontiers, key)
		case TablePending:
			var key pendingKey
			rlp.DecodeBytes(d.Key, &key)
			delete(s.pending, key)
		case TableTokens:
			var key types.Hash
			rlp.DecodeBytes(d.Key, &key)
			delete(s.tokens, key)
		case TableTrstExpiryIndex:
			var key expiryKey
			rlp.DecodeBytes(d.Key, &key)
			if m, ok := s.trstExpiry[key.Expiry]; ok {
				delete(m, key.Tx)
			}
		case TableMeta:
			var key string
			rlp.DecodeBytes(d.Key, &key)
			delete(s.meta, key)
		case TablePeers:
			var key string
			rlp.DecodeBytes(d.Key, &key)
			delete(s.peers, key)
		case TableBrnState:
			var key types.Address
			rlp.DecodeBytes(d.Key, &key)
			delete(s.brnState, key)
		}
	}
}
