package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashStrings hashes parts as a JSON array so ("ab","c") and ("a","bc")
// differ.
func HashStrings(parts ...string) string {
	return hashJSON(parts)
}

// hashKey returns "kind:" followed by the digest of parts.
func hashKey(kind string, parts ...any) string {
	return kind + ":" + hashJSON(parts)
}

func hashJSON(v any) string {
	// Only strings, numbers and plain structs are hashed; Marshal cannot fail.
	data, _ := json.Marshal(v)
	return Hash(data)
}
