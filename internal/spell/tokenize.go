package spell

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenPattern splits text into word tokens (letters, digits, underscore;
// Devanagari is a letter class and stays inside tokens) and single
// punctuation tokens. Whitespace separates and is not captured.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_\s]`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// isWordToken reports whether tok should be offered to the corrector:
// it must contain at least one basic Latin letter.
func isWordToken(tok string) bool {
	for _, r := range tok {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// isPunctToken reports whether tok is a single punctuation token as
// produced by tokenPattern.
func isPunctToken(tok string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	if size != len(tok) {
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

// isOpener reports whether tok is punctuation that hugs the following word,
// such as an opening bracket or quote.
func isOpener(tok string) bool {
	switch tok {
	case "(", "[", "{", `"`, "'", "“", "‘":
		return true
	}
	return false
}

// joinTokens reassembles tokens with single spaces between words and no
// extra whitespace around punctuation: closing punctuation attaches to the
// preceding token, openers are space-separated and hug the following word.
func joinTokens(tokens []string) string {
	var b strings.Builder
	prevOpener := false
	for _, tok := range tokens {
		if isPunctToken(tok) {
			if isOpener(tok) {
				if b.Len() > 0 && !prevOpener {
					b.WriteByte(' ')
				}
				b.WriteString(tok)
				prevOpener = true
				continue
			}
			b.WriteString(tok)
			prevOpener = false
			continue
		}
		if b.Len() > 0 && !prevOpener {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		prevOpener = false
	}
	return b.String()
}
