// Package trigram implements the inverted index that maps boundary-padded
// character trigrams to the vocabulary terms containing them. It is the
// shortlist stage of fuzzy correction: a corrupted word's trigrams vote for
// candidate terms, and only the top-voted candidates are scored with the
// expensive similarity metric.
package trigram

import (
	"sort"
	"sync"
)

// boundary pads both ends of a word so that 2-letter edge contexts are
// still indexed.
const boundary = '#'

// Index is a trigram -> term-set inverted index. Reads are lock-free among
// themselves; Add takes the writer lock (rare, document-boundary only).
type Index struct {
	mu      sync.RWMutex
	buckets map[string]map[string]struct{}
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		buckets: make(map[string]map[string]struct{}),
	}
}

// Trigrams returns the distinct boundary-padded trigrams of word. Windows
// are taken over runes so diacritic characters count as one position.
func Trigrams(word string) []string {
	runes := make([]rune, 0, len(word)+2)
	runes = append(runes, boundary)
	for _, r := range word {
		runes = append(runes, r)
	}
	runes = append(runes, boundary)
	if len(runes) < 3 {
		return nil
	}
	seen := make(map[string]struct{}, len(runes)-2)
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		tri := string(runes[i : i+3])
		if _, dup := seen[tri]; dup {
			continue
		}
		seen[tri] = struct{}{}
		out = append(out, tri)
	}
	return out
}

// Add indexes term under all trigrams of its lowercase folding. Only the
// new term's buckets are touched; no rebuild.
func (ix *Index) Add(term string, folded string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, tri := range Trigrams(folded) {
		bucket, ok := ix.buckets[tri]
		if !ok {
			bucket = make(map[string]struct{})
			ix.buckets[tri] = bucket
		}
		bucket[term] = struct{}{}
	}
}

// Candidate is a term with its trigram vote count.
type Candidate struct {
	Term  string
	Votes int
}

// Candidates returns up to max terms sharing the most trigrams with word
// (already lowercase), ranked by vote count descending with a lexicographic
// tie-break for determinism. A word with no vocabulary trigram overlap
// returns nil without any vocabulary scan.
func (ix *Index) Candidates(word string, max int) []Candidate {
	trigrams := Trigrams(word)
	if len(trigrams) == 0 || max <= 0 {
		return nil
	}

	votes := make(map[string]int)
	ix.mu.RLock()
	for _, tri := range trigrams {
		for term := range ix.buckets[tri] {
			votes[term]++
		}
	}
	ix.mu.RUnlock()
	if len(votes) == 0 {
		return nil
	}

	ranked := make([]Candidate, 0, len(votes))
	for term, n := range votes {
		ranked = append(ranked, Candidate{Term: term, Votes: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Votes != ranked[j].Votes {
			return ranked[i].Votes > ranked[j].Votes
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// Contains reports whether term appears in at least one of the buckets for
// folded's trigrams. Used for the index-consistency check after AddTerms.
func (ix *Index) Contains(term string, folded string) bool {
	trigrams := Trigrams(folded)
	if len(trigrams) == 0 {
		return false
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, tri := range trigrams {
		if _, ok := ix.buckets[tri][term]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of distinct trigrams indexed.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.buckets)
}
