// Package cryptocap provides the signing and hashing capability the block
// processor depends on, as narrow interfaces plus one concrete Ed25519 +
// blake2b implementation. Grounded on original_source/crypto/src/sign.rs
// and hash.rs: ed25519-dalek and Blake2b256 have no actively maintained Go
// bindings in this example pack, so this uses stdlib crypto/ed25519 (wire
// compatible with ed25519-dalek, both RFC 8032) and
// golang.org/x/crypto/blake2b rather than inventing a dependency.
package cryptocap

import (
	"crypto/ed25519"

	"golang.org/x/crypto/blake2b"

	"github.com/burst-network/burstnode/types"
)

// PrivateKey is a 64-byte Ed25519 seed+public-key pair, as returned by
// ed25519.GenerateKey.
type PrivateKey ed25519.PrivateKey

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey ed25519.PublicKey

// GenerateKeyPair returns a fresh Ed25519 key pair.
func GenerateKeyPair() (PublicKey, PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, nil, err
	}
	return PublicKey(pub), PrivateKey(priv), nil
}

// KeyPairFromSeed derives a deterministic key pair from a 32-byte seed.
func KeyPairFromSeed(seed []byte) (PublicKey, PrivateKey) {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return PublicKey(pub), PrivateKey(priv)
}

// Blake2b256 computes a 256-bit Blake2b hash of arbitrary data, used for
// both block and transaction hashing (§6).
func Blake2b256(data []byte) types.Hash {
	sum := blake2b.Sum256(data)
	return types.NewHash(sum[:])
}

// HashBlock hashes a block's serialized bytes to produce its identity hash.
func HashBlock(blockBytes []byte) types.Hash { return Blake2b256(blockBytes) }

// HashTransaction hashes a transaction's serialized bytes to produce its
// identity hash.
func HashTransaction(txBytes []byte) types.Hash { return Blake2b256(txBytes) }
