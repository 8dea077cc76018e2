package spell

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks: "vāta" -> "vata". Used both for
// the 0.95 diacritic-equal score and by callers folding the lexicon.
func StripDiacritics(s string) string {
	// The transform chain carries internal buffers, so build it per call
	// rather than sharing one across goroutines.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Ratio is a normalized edit-similarity in [0,1]: 1 minus the indel
// distance (Levenshtein with substitution counted as delete+insert) over
// the combined length. Equivalent to the classic SequenceMatcher ratio.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 1 - float64(indelDistance(ra, rb))/float64(total)
}

// Similarity scores two words in [0,1]: 1.0 for an exact case-folded match,
// 0.95 if they are equal after diacritic stripping, otherwise the edit
// ratio penalized by relative length difference.
func Similarity(a, b string) float64 {
	w1 := strings.ToLower(a)
	w2 := strings.ToLower(b)
	if w1 == w2 {
		return 1.0
	}
	if StripDiacritics(w1) == StripDiacritics(w2) {
		return 0.95
	}
	score := Ratio(w1, w2)

	l1 := utf8.RuneCountInString(w1)
	l2 := utf8.RuneCountInString(w2)
	maxLen := l1
	if l2 > maxLen {
		maxLen = l2
	}
	if maxLen == 0 {
		return score
	}
	diff := l1 - l2
	if diff < 0 {
		diff = -diff
	}
	return score * (1 - 0.3*float64(diff)/float64(maxLen))
}

// indelDistance is the two-row DP over runes with substitution cost 2.
func indelDistance(a, b []rune) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			if a[i-1] == b[j-1] {
				curr[i] = prev[i-1]
				continue
			}
			del := prev[i] + 1
			ins := curr[i-1] + 1
			sub := prev[i-1] + 2
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[i] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
