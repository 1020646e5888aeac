package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "meaningful words only",
			message: "How do I implement OAuth authentication?",
			want:    "how-implement-oauth-authentication",
		},
		{
			name:    "short words dropped",
			message: "is it ok to go up",
			want:    "chat",
		},
		{
			name:    "punctuation stripped",
			message: "What's the best (fastest) JSON parser?!",
			want:    "whats-the-best-fastest",
		},
		{
			name:    "caps at four words",
			message: "compare postgres mysql sqlite mongodb cassandra",
			want:    "compare-postgres-mysql-sqlite",
		},
		{
			name:    "empty input",
			message: "",
			want:    "chat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveName(tt.message))
		})
	}
}

func TestDeriveNameLengthCap(t *testing.T) {
	name := DeriveName("extraordinarily sesquipedalian hippopotomonstrosesquippedaliophobia supercalifragilisticexpialidocious")
	assert.LessOrEqual(t, len(name), 50)
	assert.NotEqual(t, byte('-'), name[len(name)-1])
}

func TestDeriveNameMultibyteCap(t *testing.T) {
	// One 60-byte word of 3-byte runes: the 50-byte cap lands mid-rune
	// unless truncation respects rune boundaries.
	name := DeriveName(strings.Repeat("日", 20))
	assert.True(t, utf8.ValidString(name))
	assert.LessOrEqual(t, len(name), 50)
	assert.NotEmpty(t, name)
}
