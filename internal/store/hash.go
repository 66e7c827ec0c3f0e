package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash computes the hash used to skip re-indexing unchanged files.
// It covers the file content only; path or timestamp changes do not affect
// the hash.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
