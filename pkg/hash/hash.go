package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ShortHex returns the first n characters of SHA256Hex(input).
// Used for log correlation where the raw value must not be written.
func ShortHex(input string, n int) string {
	full := SHA256Hex(input)
	if n <= 0 || n > len(full) {
		return full
	}
	return full[:n]
}

// CacheKey builds a bounded-length cache key: prefix, a colon, and a hash of
// parts joined with "|". Free-form user input never reaches the key verbatim.
func CacheKey(prefix string, parts ...string) string {
	return prefix + ":" + ShortHex(strings.Join(parts, "|"), 32)
}
