package shortener

import (
	"crypto/sha256"
	"math/big"
)

// DefaultCodeLength is the number of characters in a generated short code.
const DefaultCodeLength = 6

// CodeGenerator derives a candidate short code from a normalized URL.
type CodeGenerator func(url string) string

// NewHashGenerator returns a CodeGenerator producing codes of the given length.
// Lengths below 1 fall back to DefaultCodeLength, as in Generate.
func NewHashGenerator(length int) CodeGenerator {
	return func(url string) string {
		return Generate(url, length)
	}
}

// Generate hashes url with SHA-256, reads the first length bytes of the digest as a
// big-endian unsigned integer and returns its base 62 encoding (0-9a-zA-Z) truncated
// to length characters. The digest prefix is capped at the digest size and lengths
// below 1 fall back to DefaultCodeLength.
func Generate(url string, length int) string {
	if length < 1 {
		length = DefaultCodeLength
	}

	digest := sha256.Sum256([]byte(url))
	n := min(length, len(digest))

	encoded := encodeBase62(new(big.Int).SetBytes(digest[:n]))

	if len(encoded) > length {
		encoded = encoded[:length]
	}

	return encoded
}

// encodeBase62 renders n with the 0-9a-zA-Z digit set. Zero encodes as "0".
func encodeBase62(n *big.Int) string {
	return n.Text(62)
}
