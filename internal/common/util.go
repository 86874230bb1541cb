package common

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintSize is the number of hash bytes kept by Fingerprint.
const fingerprintSize = 6

// Fingerprint returns a short, non-reversible identifier for a token so it
// can appear in logs without leaking the token itself.
//
// Example:
//
//	log.Warn(ctx, "refresh token replay detected", "token", common.Fingerprint(tok))
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:fingerprintSize])
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// It is used to drop plaintext passwords from memory once they are hashed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
