// Package brn implements the BRN time-accrual engine: rate-segment
// arithmetic, stake lifecycle, and deterministic balance computation.
// Grounded on original_source/brn/src/{state,stake,engine}.rs.
package brn

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// maxAmount is 2^128 - 1, the ceiling every Amount is clamped to. BRN/TRST
// amounts are specified as 128-bit unsigned in the source; Go has no native
// u128, so Amount wraps math/big.Int (the same type go-ethereum uses for its
// own 256-bit balances) and enforces the 128-bit ceiling explicitly.
var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Amount is a non-negative integer in [0, 2^128).
type Amount struct{ v *big.Int }

// Zero returns the zero Amount.
func Zero() Amount { return Amount{v: new(big.Int)} }

// NewAmount builds an Amount from a uint64, always representable.
func NewAmount(n uint64) Amount { return Amount{v: new(big.Int).SetUint64(n)} }

func clamp(v *big.Int) Amount {
	if v.Sign() < 0 {
		return Zero()
	}
	if v.Cmp(maxAmount) > 0 {
		return Amount{v: new(big.Int).Set(maxAmount)}
	}
	return Amount{v: v}
}

// Add returns a+b, checked: an overflow past 2^128 is reported rather than
// silently wrapping, mirroring the source's "checked" addition contract.
func (a Amount) Add(b Amount) (Amount, bool) {
	sum := new(big.Int).Add(a.big(), b.big())
	if sum.Cmp(maxAmount) > 0 {
		return Zero(), false
	}
	return Amount{v: sum}, true
}

// MulDuration returns a * seconds, checked for overflow — grounds the
// source's "rate × duration is checked" numeric-overflow surfacing rule.
func (a Amount) MulDuration(seconds uint64) (Amount, bool) {
	prod := new(big.Int).Mul(a.big(), new(big.Int).SetUint64(seconds))
	if prod.Cmp(maxAmount) > 0 {
		return Zero(), false
	}
	return Amount{v: prod}, true
}

// Sub returns a-b, saturating at zero rather than going negative — grounds
// the source's "saturating_sub" balance-query contract.
func (a Amount) Sub(b Amount) Amount {
	return clamp(new(big.Int).Sub(a.big(), b.big()))
}

// Cmp compares a to b (-1, 0, 1).
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool { return a.Cmp(b) < 0 }

func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// BigInt returns the underlying big.Int value (for RLP encoding/storage).
func (a Amount) BigInt() *big.Int { return new(big.Int).Set(a.big()) }

// AmountFromBigInt wraps an existing big.Int, clamping to the valid range.
func AmountFromBigInt(v *big.Int) Amount { return clamp(new(big.Int).Set(v)) }

func (a Amount) String() string { return a.big().String() }

// EncodeRLP encodes the amount as its underlying big.Int, so Amount can be
// embedded directly in any RLP-encoded struct (Stake, RateSegment,
// trst.Token, ...) without a separate opaque-bytes conversion.
func (a Amount) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, a.big())
}

// DecodeRLP restores an Amount from the big.Int RLP produced by EncodeRLP.
func (a *Amount) DecodeRLP(s *rlp.Stream) error {
	var v big.Int
	if err := s.Decode(&v); err != nil {
		return err
	}
	a.v = &v
	return nil
}
