// Package noise classifies and removes OCR/layout noise: repeated
// headers and footers, Devanagari script contamination, and gibberish
// lines that survive OCR of non-Latin source material.
package noise

import "strings"

// DetectRepeated finds lines recurring across at least minRepeatFraction of
// a document's pages — the header/footer signature. Lines are compared
// trimmed and lowercased; duplicates within a page count once.
//
// A document with one page (or none) returns an empty set: the ratio is
// trivially 1.0 for every line there, so the signal is meaningless with a
// single sample.
func DetectRepeated(pages [][]string, minRepeatFraction float64) map[string]struct{} {
	repeated := make(map[string]struct{})
	if len(pages) <= 1 {
		return repeated
	}

	counts := make(map[string]int)
	for _, page := range pages {
		distinct := make(map[string]struct{})
		for _, line := range page {
			l := strings.ToLower(strings.TrimSpace(line))
			if l == "" {
				continue
			}
			distinct[l] = struct{}{}
		}
		for l := range distinct {
			counts[l]++
		}
	}

	total := float64(len(pages))
	for line, count := range counts {
		if float64(count)/total >= minRepeatFraction {
			repeated[line] = struct{}{}
		}
	}
	return repeated
}
