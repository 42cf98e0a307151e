package security

import (
	"crypto/sha256"
	"fmt"
)

// HashID returns the first 16 hex chars of the sha256 of s, for logging
// identifiers and submitted text without exposing them.
func HashID(s string) string {
	return hashStr(s)[:16]
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
