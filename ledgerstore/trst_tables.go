package ledgerstore

import (
	"sort"

	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
)

// The methods in this file let *Store stand in directly for trst.TokenStore,
// trst.MergerGraphStore, and trst.ExpiryIndexStore: the engine in trst/ never
// touches a WAL or a map, only these narrow interfaces (grounded on
// original_source/store/src/trst_index.rs and merger_graph.rs).

// PutToken stores tok, keyed by its transaction hash. Unlike the other
// table writers this one commits its own single-entry transaction, since the
// trst.TokenStore interface carries no Txn parameter.
func (s *Store) PutToken(tok *trst.Token) error {
	t := s.Begin()
	cp := *tok
	t.stagePut(TableTokens, tok.TxHash, cp, func() {
		s.tokens[tok.TxHash] = &cp
	})
	return t.Commit()
}

// GetToken returns the token for tx, or KindNotFound.
func (s *Store) GetToken(tx types.Hash) (*trst.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[tx]
	if !ok {
		return nil, ledgererr.New(ledgererr.KindNotFound, "token %s not found", tx)
	}
	cp := *tok
	return &cp, nil
}

// DeleteToken removes tx's token (used by the pruner once it has been
// archived).
func (s *Store) DeleteToken(tx types.Hash) error {
	t := s.Begin()
	t.stageDelete(TableTokens, tx, func() {
		delete(s.tokens, tx)
	})
	return t.Commit()
}

// AddDescendant records tx as a direct descendant of origin in the forward
// provenance index that Revoke/UnRevoke walk.
func (s *Store) AddDescendant(origin types.Hash, tx types.Hash) error {
	t := s.Begin()
	key := originIndexKey{Origin: origin, Tx: tx}
	t.stagePut(TableTrstOriginIndex, key, struct{}{}, func() {
		if s.trstOrigin[origin] == nil {
			s.trstOrigin[origin] = make(map[types.Hash]struct{})
		}
		s.trstOrigin[origin][tx] = struct{}{}
	})
	return t.Commit()
}

// Descendants returns every tx hash directly indexed under origin, in
// ascending hash order for deterministic iteration.
func (s *Store) Descendants(origin types.Hash) ([]types.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.trstOrigin[origin]
	out := make([]types.Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sortHashes(out)
	return out, nil
}

// AddDownstream records downstreamMerge as reachable from parentMerge, for
// the merge-of-merges case mass revocation must also walk.
func (s *Store) AddDownstream(parentMerge, downstreamMerge types.Hash) error {
	t := s.Begin()
	key := downstreamKey{Parent: parentMerge, Child: downstreamMerge}
	t.stagePut(TableMergerDownstream, key, struct{}{}, func() {
		if s.mergerDownstream[parentMerge] == nil {
			s.mergerDownstream[parentMerge] = make(map[types.Hash]struct{})
		}
		s.mergerDownstream[parentMerge][downstreamMerge] = struct{}{}
	})
	return t.Commit()
}

// Downstream returns every merge tx hash directly indexed under
// parentMerge, in ascending hash order.
func (s *Store) Downstream(parentMerge types.Hash) ([]types.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.mergerDownstream[parentMerge]
	out := make([]types.Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sortHashes(out)
	return out, nil
}

// PutExpiry indexes tx under its expiry timestamp for the pruner's range
// scan.
func (s *Store) PutExpiry(expiry types.Timestamp, tx types.Hash) error {
	t := s.Begin()
	key := expiryKey{Expiry: expiry, Tx: tx}
	t.stagePut(TableTrstExpiryIndex, key, struct{}{}, func() {
		if s.trstExpiry[expiry] == nil {
			s.trstExpiry[expiry] = make(map[types.Hash]struct{})
		}
		s.trstExpiry[expiry][tx] = struct{}{}
	})
	return t.Commit()
}

// DeleteExpiry removes tx's entry from the expiry index (it expired,
// merged away, or was revoked before reaching its natural expiry).
func (s *Store) DeleteExpiry(expiry types.Timestamp, tx types.Hash) error {
	t := s.Begin()
	key := expiryKey{Expiry: expiry, Tx: tx}
	t.stageDelete(TableTrstExpiryIndex, key, func() {
		if m, ok := s.trstExpiry[expiry]; ok {
			delete(m, tx)
		}
	})
	return t.Commit()
}

// RangeScanBefore returns every tx hash whose expiry timestamp is at or
// before cutoff, in ascending (expiry, hash) order.
func (s *Store) RangeScanBefore(cutoff types.Timestamp) ([]types.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiries := make([]types.Timestamp, 0, len(s.trstExpiry))
	for e := range s.trstExpiry {
		if e <= cutoff {
			expiries = append(expiries, e)
		}
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i] < expiries[j] })
	out := make([]types.Hash, 0)
	for _, e := range expiries {
		hashes := make([]types.Hash, 0, len(s.trstExpiry[e]))
		for h := range s.trstExpiry[e] {
			hashes = append(hashes, h)
		}
		sortHashes(hashes)
		out = append(out, hashes...)
	}
	return out, nil
}

func sortHashes(hs []types.Hash) {
	sort.Slice(hs, func(i, j int) bool {
		return string(hs[i].Bytes()) < string(hs[j].Bytes())
	})
}
