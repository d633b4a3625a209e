package store

import "crypto/sha256"

// urlDigest keys a link by its URL in fixed size, so arbitrarily long URLs fit
// in indexes and key names.
func urlDigest(originalURL string) []byte {
	sum := sha256.Sum256([]byte(originalURL))

	return sum[:]
}
