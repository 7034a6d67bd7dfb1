package kv

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// cacheKey hashes keys so arbitrary nick/channel bytes stay within
// bitcask's key limits.
func cacheKey(key string) []byte {
	hash := sha3.Sum224([]byte(key))
	hashString := hex.EncodeToString(hash[:])

	return []byte(hashString)
}
