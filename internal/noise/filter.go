package noise

import (
	"strings"
	"unicode"
)

// Stage identifies the filter stage that dropped a line, for metrics.
type Stage string

const (
	StageHeaderFooter Stage = "header_footer"
	StageScript       Stage = "script"
	StageGibberish    Stage = "gibberish"
	StageShortToken   Stage = "short_token"
)

// DropFunc is called once per dropped line with the stage responsible.
type DropFunc func(stage Stage)

// plainSymbols are the characters not counted as symbols when computing
// the symbol ratio.
const plainSymbols = " .,;:'\"!?()-"

// FilterLines removes noise lines, returning an order-preserving
// subsequence. A line must survive all four stages:
//
//   - header/footer: trimmed-lowercased form present in repeated, unless
//     the line contains a protected term (case-insensitive substring);
//   - script: Devanagari runs replaced by a space, then drop if
//     symbolRatio > 0.25 or alphaRatio < 0.4;
//   - gibberish: a second English-plausibility pass with symbolRatio >
//     0.3 or alphaRatio < 0.4, catching residual OCR junk the script pass
//     was not tuned for;
//   - short token: fewer than 3 alphabetic word tokens and an
//     alphanumeric density below 0.25.
//
// onDrop may be nil. Lines stripped of Devanagari are carried forward in
// stripped form.
func FilterLines(lines []string, repeated map[string]struct{}, protected []string, onDrop DropFunc) []string {
	drop := func(stage Stage) {
		if onDrop != nil {
			onDrop(stage)
		}
	}

	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if _, hit := repeated[strings.ToLower(trimmed)]; hit && !containsProtected(trimmed, protected) {
			drop(StageHeaderFooter)
			continue
		}

		stripped := stripDevanagari(line)
		symbols, alpha, alnum, total := charRatios(stripped)
		if total > 0 && (symbols > 0.25 || alpha < 0.4) {
			drop(StageScript)
			continue
		}
		if total > 0 && (symbols > 0.3 || alpha < 0.4) {
			drop(StageGibberish)
			continue
		}
		if alphaWordCount(stripped) < 3 && alnum < 0.25 {
			drop(StageShortToken)
			continue
		}
		cleaned = append(cleaned, stripped)
	}
	return cleaned
}

// containsProtected reports whether any protected term occurs in line,
// case-insensitively.
func containsProtected(line string, protected []string) bool {
	if len(protected) == 0 {
		return false
	}
	lower := strings.ToLower(line)
	for _, term := range protected {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// stripDevanagari replaces each contiguous run of Devanagari code points
// (U+0900–U+097F) with a single space.
func stripDevanagari(line string) string {
	var b strings.Builder
	inRun := false
	for _, r := range line {
		if r >= 0x0900 && r <= 0x097F {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// charRatios computes the symbol, ASCII-letter, and alphanumeric fractions
// of line, over its rune length.
func charRatios(line string) (symbols, alpha, alnum float64, total int) {
	var symbolCount, alphaCount, alnumCount int
	for _, r := range line {
		total++
		isASCIILetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if isASCIILetter {
			alphaCount++
		}
		if isASCIILetter || isDigit {
			alnumCount++
		}
		if !isASCIILetter && !isDigit && !strings.ContainsRune(plainSymbols, r) {
			symbolCount++
		}
	}
	if total == 0 {
		return 0, 0, 0, 0
	}
	t := float64(total)
	return float64(symbolCount) / t, float64(alphaCount) / t, float64(alnumCount) / t, total
}

// alphaWordCount counts maximal runs of letters in line.
func alphaWordCount(line string) int {
	count := 0
	inWord := false
	for _, r := range line {
		if unicode.IsLetter(r) && r < 0x0900 {
			if !inWord {
				count++
				inWord = true
			}
			continue
		}
		inWord = false
	}
	return count
}
