package service

import (
	"crypto/sha256"
	"encoding/base64"
)

// CodeChallenge applies the PKCE transform (RFC 7636 §4.2) to a verifier:
// S256 is base64url(SHA-256(verifier)) without padding; plain returns the
// verifier unchanged. Unrecognized methods fall through to plain — the
// exchange step owns method validation.
func CodeChallenge(verifier, method string) string {
	if method == "S256" {
		sum := sha256.Sum256([]byte(verifier))
		return base64.RawURLEncoding.EncodeToString(sum[:])
	}
	return verifier
}
