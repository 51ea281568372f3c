package cryptocap

import "crypto/ed25519"

// Signer signs messages with a held private key. The core's block
// processor depends on this interface, not a concrete key type, so
// verification-only nodes and HSM-backed signers can satisfy it too.
type Signer interface {
	Sign(message []byte) []byte
}

// Verifier checks a signature against a message and public key.
type Verifier interface {
	Verify(message, signature []byte, pub PublicKey) bool
}

// Ed25519Signer signs with a held Ed25519 private key.
type Ed25519Signer struct {
	priv PrivateKey
}

// NewEd25519Signer wraps priv as a Signer.
func NewEd25519Signer(priv PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{priv: priv}
}

// Sign returns the Ed25519 signature of message.
func (s *Ed25519Signer) Sign(message []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(s.priv), message)
}

// Ed25519Verifier verifies Ed25519 signatures.
type Ed25519Verifier struct{}

// Verify reports whether signature is a valid Ed25519 signature of message
// under pub. A malformed public key or signature is treated as invalid
// rather than an error, matching the original's "reject, don't panic"
// behavior at this boundary.
func (Ed25519Verifier) Verify(message, signature []byte, pub PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, signature)
}
