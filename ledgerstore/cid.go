package ledgerstore

import (
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// blockCID wraps a block's bytes in a content-addressed CIDv1, following
// the teacher's storage.go Pin pattern: a SHA2-256 multihash over the raw
// bytes, wrapped as a raw-codec CIDv1. This gives external tooling (log
// lines, archive indexes) a self-describing, content-addressed name for a
// block instead of a bare hex hash; the store itself keys blocks by Hash.
func blockCID(blockBytes []byte) (cid.Cid, error) {
	digest, err := mh.Sum(blockBytes, mh.SHA2_256, -1)
	if err != nil {
		return cid.Cid{}, ledgererr.Wrap(ledgererr.KindBackend, err, "ledgerstore: compute block multihash")
	}
	return cid.NewCidV1(cid.Raw, digest), nil
}

// BlockCID returns the content-addressed CIDv1 string for hash's stored
// block bytes, for external tooling that expects a CID rather than a bare
// hex hash (archive manifests, log correlation).
func (s *Store) BlockCID(hash types.Hash) (string, error) {
	raw, err := s.GetBlock(hash)
	if err != nil {
		return "", err
	}
	c, err := blockCID(raw)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}
