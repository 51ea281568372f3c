package trst

import "github.com/burst-network/burstnode/types"

// TokenStore is the narrow read/write surface the engine needs over durable
// token state. *ledgerstore.Store satisfies this; the engine never talks to
// the backend directly (§9: "no engine holds a long-lived mutable reference
// to durable state").
type TokenStore interface {
	PutToken(tok *Token) error
	GetToken(tx types.Hash) (*Token, error)
	DeleteToken(tx types.Hash) error
}

// MergerGraphStore is the pair of forward indexes backing mass revocation:
// origin -> set of descendant tx hashes, and parent-merge -> set of
// downstream merge tx hashes. Represented in storage rather than as an
// in-memory pointer graph (§9), so revocation is a BFS over index reads.
type MergerGraphStore interface {
	AddDescendant(origin types.Hash, tx types.Hash) error
	Descendants(origin types.Hash) ([]types.Hash, error)
	AddDownstream(parentMerge, downstreamMerge types.Hash) error
	Downstream(parentMerge types.Hash) ([]types.Hash, error)
}

// ExpiryIndexStore supports the pruner's range scan for expired tokens.
type ExpiryIndexStore interface {
	PutExpiry(expiry types.Timestamp, tx types.Hash) error
	DeleteExpiry(expiry types.Timestamp, tx types.Hash) error
	RangeScanBefore(cutoff types.Timestamp) ([]types.Hash, error)
}
