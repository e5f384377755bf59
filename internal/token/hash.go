package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashRefreshToken returns the hex SHA-256 digest persisted in place of the
// refresh token itself.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CompareRefreshHash reports whether token hashes to storedHash. An empty
// stored hash never matches.
func CompareRefreshHash(storedHash, token string) bool {
	if storedHash == "" {
		return false
	}
	presented := HashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(presented)) == 1
}
