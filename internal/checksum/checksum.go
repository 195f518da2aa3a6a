// Package checksum computes content digests used as document versions and ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes a checksum as a strong entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}
