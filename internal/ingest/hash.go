package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// BytesHash returns the hex sha256 digest of an upload's raw bytes, kept
// with the upload record for duplicate detection and traceability.
func BytesHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
