package types

import "strings"

// AddressPrefix is the fixed human-readable prefix for every wallet address,
// bijective with the wallet's public key under the crypto capability set.
const AddressPrefix = "brst_"

// Address is a human-readable wallet identifier.
type Address string

// NewAddress validates and wraps raw as an Address. It does not derive an
// address from a public key, and no package in this module does.
func NewAddress(raw string) (Address, bool) {
	a := Address(raw)
	return a, a.Valid()
}

// Valid reports whether a is well-formed: prefixed and non-empty beyond the
// prefix.
func (a Address) Valid() bool {
	s := string(a)
	return strings.HasPrefix(s, AddressPrefix) && len(s) > len(AddressPrefix)
}

func (a Address) String() string { return string(a) }
