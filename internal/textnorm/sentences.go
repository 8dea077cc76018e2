package textnorm

import (
	"strings"
	"unicode"
)

// abbreviations that end with a period but do not end a sentence.
var abbreviations = map[string]struct{}{
	"dr":   {},
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"prof": {},
	"st":   {},
	"vol":  {},
	"no":   {},
	"pp":   {},
	"cf":   {},
	"etc":  {},
	"viz":  {},
	"e.g":  {},
	"i.e":  {},
}

// splitSentences breaks text into sentences on '.', '!' and '?' followed
// by whitespace. A period after a known abbreviation or a single initial
// does not split. Newlines inside a sentence are treated as plain
// whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, collapseSpace(s))
		}
		b.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && isAbbreviation(b.String()) {
			continue
		}
		flush()
	}
	flush()
	return sentences
}

// isAbbreviation reports whether the text accumulated so far ends in an
// abbreviation or a single-letter initial followed by the period.
func isAbbreviation(sofar string) bool {
	trimmed := strings.TrimRight(sofar, ".")
	idx := strings.LastIndexFunc(trimmed, unicode.IsSpace)
	last := strings.ToLower(trimmed[idx+1:])
	if len(last) == 1 {
		return true
	}
	_, ok := abbreviations[last]
	return ok
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
