package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLengthAndCharset(t *testing.T) {
	id := New()
	assert.Len(t, id, Length)
	for _, r := range id {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'), "unexpected character %q", r)
	}
}

func TestNewIsPracticallyUnique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := New()
		assert.False(t, seen[id], "duplicate id %s after %d draws", id, i)
		seen[id] = true
	}
}
