package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// KeyDecision is the outcome of checking a presented API key.
type KeyDecision int

const (
	// KeyCheckDisabled means no key is configured and every request passes.
	KeyCheckDisabled KeyDecision = iota
	KeyMatched
	KeyMismatched
)

func (d KeyDecision) String() string {
	switch d {
	case KeyCheckDisabled:
		return "disabled"
	case KeyMatched:
		return "matched"
	case KeyMismatched:
		return "mismatched"
	default:
		return "unknown"
	}
}

// Allowed reports whether the request may continue.
func (d KeyDecision) Allowed() bool {
	return d != KeyMismatched
}

// KeyAuthenticator compares presented keys against a single configured key.
type KeyAuthenticator struct {
	enforced bool
	digest   [sha256.Size]byte
}

func NewKeyAuthenticator(expected string) *KeyAuthenticator {
	if expected == "" {
		return &KeyAuthenticator{}
	}
	return &KeyAuthenticator{
		enforced: true,
		digest:   sha256.Sum256([]byte(expected)),
	}
}

// Enforced reports whether a key is configured.
func (a *KeyAuthenticator) Enforced() bool {
	return a.enforced
}

// Check hashes both sides so the comparison takes the same time whatever the
// length or content of provided.
func (a *KeyAuthenticator) Check(provided string) KeyDecision {
	if !a.enforced {
		return KeyCheckDisabled
	}
	got := sha256.Sum256([]byte(provided))
	if subtle.ConstantTimeCompare(got[:], a.digest[:]) == 1 {
		return KeyMatched
	}
	return KeyMismatched
}
