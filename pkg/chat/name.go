package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxDerivedWords = 4
	maxNameLength   = 50
)

// DeriveName builds a short hyphenated label from the first few meaningful
// words of a message: lower-cased, punctuation stripped, words longer than
// two characters, capped at 50 characters without splitting a word.
func DeriveName(firstMessage string) string {
	var meaningful []string
	for _, w := range strings.Fields(strings.ToLower(firstMessage)) {
		w = stripPunctuation(w)
		if len(w) > 2 {
			meaningful = append(meaningful, w)
		}
		if len(meaningful) == maxDerivedWords {
			break
		}
	}

	name := strings.Join(meaningful, "-")
	if len(name) > maxNameLength {
		if cut := strings.LastIndexByte(name[:maxNameLength], '-'); cut > 0 {
			name = name[:cut]
		} else {
			// No word boundary inside the cap; cut on a rune boundary so
			// a multibyte character is never split.
			cut := maxNameLength
			for cut > 0 && !utf8.RuneStart(name[cut]) {
				cut--
			}
			name = name[:cut]
		}
	}
	if name == "" {
		return "chat"
	}
	return name
}

// stripPunctuation keeps letters, digits, underscores and hyphens.
func stripPunctuation(w string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return -1
	}, w)
}
