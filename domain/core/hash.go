package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// CohortHash fingerprints the exact set of inputs that fed one analysis run
type CohortHash Hash

// NewCohortHash creates a cohort hash from raw bytes
func NewCohortHash(data []byte) CohortHash { return CohortHash(NewHash(data)) }

// String conversion
func (h CohortHash) String() string { return Hash(h).String() }

// ComputeCohortHash derives a deterministic fingerprint from the group names
// and per-group sample sizes of an analysis request. Order-insensitive.
func ComputeCohortHash(groupSizes map[string]int) CohortHash {
	keys := make([]string, 0, len(groupSizes))
	for k := range groupSizes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%d;", groupSizes[key]))
	}

	return NewCohortHash([]byte(data.String()))
}
