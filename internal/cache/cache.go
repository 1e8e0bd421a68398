package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores serialized fetch payloads so repeat scans of the same repo
// can skip the hub round trips. Entries are stable for their TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a repo id. Hashing keeps the owner/name
// separator and any unicode out of cache filenames.
func Key(repoID string) string {
	hash := sha256.Sum256([]byte(repoID))
	return "cardrisk:v1:" + hex.EncodeToString(hash[:])
}
