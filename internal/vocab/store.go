// Package vocab holds the domain vocabulary: the large reference set of
// valid transliterated-Sanskrit words used for fuzzy correction, with
// per-term frequency weights. The store is built once at startup and is
// read-mostly afterwards; AddTerms is a rare document-boundary operation.
package vocab

import (
	"sort"
	"strings"
	"sync"
)

// Entry is a single vocabulary term with its corpus frequency.
type Entry struct {
	Term      string
	Frequency int
}

// Store is the vocabulary set plus a lowercase-folded mirror for
// case-insensitive lookup. Safe for concurrent readers; writes take the
// exclusive lock.
type Store struct {
	mu        sync.RWMutex
	terms     map[string]int      // original-case term -> frequency
	folded    map[string][]string // lowercase -> sorted original-case forms
	totalFreq int64
}

// NewStore creates an empty vocabulary store.
func NewStore() *Store {
	return &Store{
		terms:  make(map[string]int),
		folded: make(map[string][]string),
	}
}

// Add inserts a single term. A frequency below 1 is treated as 1.
// Re-adding an existing term updates its frequency only.
func (s *Store) Add(term string, freq int) {
	if term == "" {
		return
	}
	if freq < 1 {
		freq = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(term, freq)
}

// AddTerms inserts a batch of terms, taking frequencies from freqs where
// present and defaulting to 1. Returns the terms that were new to the store,
// so callers can update dependent indexes incrementally.
func (s *Store) AddTerms(terms []string, freqs map[string]int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		freq := 1
		if f, ok := freqs[term]; ok && f > 0 {
			freq = f
		}
		if _, exists := s.terms[term]; !exists {
			added = append(added, term)
		}
		s.add(term, freq)
	}
	return added
}

// add assumes the write lock is held.
func (s *Store) add(term string, freq int) {
	prev, exists := s.terms[term]
	s.terms[term] = freq
	s.totalFreq += int64(freq - prev)
	if exists {
		return
	}
	lower := strings.ToLower(term)
	bucket := s.folded[lower]
	i := sort.SearchStrings(bucket, term)
	bucket = append(bucket, "")
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = term
	s.folded[lower] = bucket
}

// Contains reports whether the exact, case-sensitive term is known.
func (s *Store) Contains(term string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.terms[term]
	return ok
}

// Frequency returns the frequency weight of a term, or 1 if unknown.
func (s *Store) Frequency(term string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.terms[term]; ok {
		return f
	}
	return 1
}

// MatchFolded returns the lexicographically smallest original-case term
// matching word under lowercase folding. The tie-break keeps the result
// deterministic across processes.
func (s *Store) MatchFolded(word string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.folded[strings.ToLower(word)]
	if len(bucket) == 0 {
		return "", false
	}
	return bucket[0], true
}

// ForEach calls fn for every term under the read lock. fn must not call
// back into the store.
func (s *Store) ForEach(fn func(term string, freq int)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for term, freq := range s.terms {
		fn(term, freq)
	}
}

// Len returns the number of distinct terms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

// FoldedLen returns the number of distinct lowercase-folded terms.
func (s *Store) FoldedLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.folded)
}

// AvgFrequency returns the mean frequency across all terms, 0 when empty.
func (s *Store) AvgFrequency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.terms) == 0 {
		return 0
	}
	return float64(s.totalFreq) / float64(len(s.terms))
}
