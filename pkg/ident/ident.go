// Package ident issues short identifiers for stored entities.
package ident

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Length is the number of hex characters in a generated identifier.
const Length = 8

// New generates a short hex identifier derived from the current time plus
// cryptographic entropy. Eight hex characters are unique enough for a single
// store's lifetime; callers that index by ID must still treat an insert-time
// collision as a fatal integrity error.
func New() string {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(time.Now().UnixNano()))
	if _, err := rand.Read(buf[8:]); err != nil {
		// The OS crypto source failing is an unrecoverable application state.
		panic(fmt.Errorf("ident: crypto/rand failed: %w", err))
	}
	sum := sha256.Sum256(buf[:])
	return hex.EncodeToString(sum[:])[:Length]
}
