package work

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/burst-network/burstnode/types"
)

// workValue computes Blake2b(block_hash || nonce) and interprets the first
// 8 bytes as a big-endian difficulty score.
func workValue(blockHash types.Hash, nonce uint64) uint64 {
	buf := make([]byte, 0, 40)
	buf = append(buf, blockHash.Bytes()...)
	var nb [8]byte
	binary.BigEndian.PutUint64(nb[:], nonce)
	buf = append(buf, nb[:]...)
	sum := blake2b.Sum256(buf)
	return binary.BigEndian.Uint64(sum[:8])
}

// ValidateWork reports whether nonce meets minDifficulty for blockHash.
func ValidateWork(blockHash types.Hash, nonce uint64, minDifficulty uint64) bool {
	return workValue(blockHash, nonce) >= minDifficulty
}

// GenerateWork searches for a nonce meeting minDifficulty for blockHash,
// starting from 0, up to maxAttempts. Returns the nonce and true on
// success, or 0 and false if maxAttempts is exhausted first.
func GenerateWork(blockHash types.Hash, minDifficulty uint64, maxAttempts uint64) (uint64, bool) {
	for nonce := uint64(0); nonce < maxAttempts; nonce++ {
		if ValidateWork(blockHash, nonce, minDifficulty) {
			return nonce, true
		}
	}
	return 0, false
}
