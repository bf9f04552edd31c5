package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds an artifact cache key of the form "prefix:<sha256>". The
// parts are JSON encoded before hashing, so a layout hash combined with the
// render options (format, title, highlights, scale) maps to exactly one
// rendered file.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Layouts are keyed by the hash of
// their JSON and snapshots by the hash of the tree response, so equal
// hashes mean identical trees.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
