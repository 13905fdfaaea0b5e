package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPrefixLen is how many fingerprint characters are shown to users.
const HashPrefixLen = 12

// Fingerprint returns the lowercase hex SHA-256 of the raw document bytes.
// The fingerprint is a pure function of the bytes, which is what makes
// re-ingestion detection possible.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the display prefix of a fingerprint.
func ShortHash(hash string) string {
	if len(hash) <= HashPrefixLen {
		return hash
	}
	return hash[:HashPrefixLen]
}
