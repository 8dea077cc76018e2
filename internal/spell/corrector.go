// Package spell implements fuzzy spell correction of corrupted
// transliterated-Sanskrit words against the vocabulary store. Candidate
// terms are shortlisted through the trigram index, scored with a
// length-penalized edit similarity, and the winner is chosen by score with
// corpus frequency breaking ties. Results are memoized in a bounded cache.
package spell

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell/cache"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell/trigram"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/vocab"
	apperrors "github.com/ayurcorpus/corpus-cleaning-platform/pkg/errors"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// surroundingPunct is stripped from a word before correction is attempted.
const surroundingPunct = `.,;:!?"'()[]{}`

// Options tune the corrector. Zero values select the documented defaults.
type Options struct {
	// MaxCandidates bounds the trigram shortlist scored per word (50).
	MaxCandidates int
	// CacheCapacity bounds the correction cache entry count (10000).
	CacheCapacity int
	// Metrics receives correction and cache counters. May be nil.
	Metrics *metrics.Metrics
}

// Corrector corrects words against a vocabulary store. The store and index
// are safe for concurrent readers; a single Corrector may be shared by all
// pipeline workers.
type Corrector struct {
	vocab         *vocab.Store
	index         *trigram.Index
	cache         *cache.Cache
	maxCandidates int
	metrics       *metrics.Metrics
	logger        *slog.Logger

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Stats is the observability surface of the corrector. No behavioral
// contract: numbers may lag under concurrent use.
type Stats struct {
	TotalWords      int     `json:"total_words"`
	UniqueLowercase int     `json:"unique_lowercase"`
	TrigramCount    int     `json:"trigram_count"`
	CacheSize       int     `json:"cache_size"`
	AvgFrequency    float64 `json:"avg_frequency"`
	CacheHits       int64   `json:"cache_hits"`
	CacheMisses     int64   `json:"cache_misses"`
}

// NewCorrector builds the trigram index over store and returns a ready
// Corrector.
func NewCorrector(store *vocab.Store, opts Options) *Corrector {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 50
	}
	if opts.CacheCapacity <= 0 {
		opts.CacheCapacity = 10000
	}
	c := &Corrector{
		vocab:         store,
		index:         trigram.New(),
		cache:         cache.New(opts.CacheCapacity),
		maxCandidates: opts.MaxCandidates,
		metrics:       opts.Metrics,
		logger:        slog.Default().With("component", "spell-corrector"),
	}
	store.ForEach(func(term string, _ int) {
		c.index.Add(term, strings.ToLower(term))
	})
	c.logger.Info("trigram index built",
		"terms", store.Len(),
		"trigrams", c.index.Len(),
	)
	return c
}

// CorrectWord corrects a single word. It returns the corrected form and
// true, or "" and false when the word is too short, punctuation-only, or no
// vocabulary candidate clears threshold. The cache is consulted first;
// correction is a pure function of (word, threshold), so this cannot change
// results.
func (c *Corrector) CorrectWord(word string, threshold float64) (string, bool) {
	key := cache.Key{Word: word, Threshold: threshold}
	if r, ok := c.cache.Get(key); ok {
		c.cacheHits.Add(1)
		if c.metrics != nil {
			c.metrics.CorrectionCacheHits.Inc()
		}
		return r.Corrected, r.OK
	}
	c.cacheMisses.Add(1)
	if c.metrics != nil {
		c.metrics.CorrectionCacheMiss.Inc()
	}

	corrected, ok := c.correct(word, threshold)
	c.cache.Put(key, cache.Result{Corrected: corrected, OK: ok})
	if c.metrics != nil {
		switch {
		case ok && corrected != word:
			c.metrics.WordsCorrectedTotal.Inc()
		case !ok:
			c.metrics.WordsUncorrectable.Inc()
		}
	}
	return corrected, ok
}

func (c *Corrector) correct(word string, threshold float64) (string, bool) {
	clean := strings.Trim(word, surroundingPunct)
	if clean == "" {
		return "", false
	}

	// Exact and case-insensitive vocabulary hits short-circuit at any
	// length.
	if c.vocab.Contains(clean) {
		return clean, true
	}
	if match, ok := c.vocab.MatchFolded(clean); ok {
		return match, true
	}

	// Too short to correct reliably.
	if utf8.RuneCountInString(clean) < 3 {
		return "", false
	}

	candidates := c.index.Candidates(strings.ToLower(clean), c.maxCandidates)
	if len(candidates) == 0 {
		return "", false
	}

	best := ""
	bestScore := 0.0
	bestFreq := 0
	for _, cand := range candidates {
		score := Similarity(clean, cand.Term)
		if score < threshold {
			continue
		}
		freq := c.vocab.Frequency(cand.Term)
		switch {
		case score > bestScore:
		case score == bestScore && freq > bestFreq:
		case score == bestScore && freq == bestFreq && cand.Term < best:
			// Deterministic tie-break.
		default:
			continue
		}
		best, bestScore, bestFreq = cand.Term, score, freq
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// CorrectText corrects every word-like token in text, preserving
// punctuation tokens untouched. Tokens that cannot be confidently corrected
// pass through unchanged.
func (c *Corrector) CorrectText(text string, threshold float64) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	tokens := tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isWordToken(tok) {
			out = append(out, tok)
			continue
		}
		if corrected, ok := c.CorrectWord(tok, threshold); ok {
			out = append(out, corrected)
			continue
		}
		out = append(out, tok)
	}
	return joinTokens(out)
}

// BatchCorrect applies CorrectText to each input independently. Results are
// returned in input order; computation proceeds out of order across a
// bounded worker pool.
func (c *Corrector) BatchCorrect(ctx context.Context, texts []string, threshold float64) ([]string, error) {
	out := make([]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = c.CorrectText(text, threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AddTerms inserts new vocabulary terms and updates the trigram index
// incrementally; only the new terms' trigrams are touched. The correction
// cache is cleared because previously uncorrectable words may now have a
// candidate.
func (c *Corrector) AddTerms(terms []string, freqs map[string]int) {
	added := c.vocab.AddTerms(terms, freqs)
	for _, term := range added {
		folded := strings.ToLower(term)
		c.index.Add(term, folded)
		if !c.index.Contains(term, folded) {
			// Programming defect; skip the term rather than abort corpus
			// processing.
			c.logger.Error("term missing from index after add",
				"term", term,
				"error", apperrors.Local(apperrors.ErrIndexInconsistent, "term %q", term),
			)
		}
	}
	if len(added) > 0 {
		c.cache.Clear()
		c.logger.Info("vocabulary extended", "new_terms", len(added))
	}
}

// ClearCache drops all memoized corrections.
func (c *Corrector) ClearCache() {
	c.cache.Clear()
}

// Stats reports vocabulary, index, and cache counters.
func (c *Corrector) Stats() Stats {
	return Stats{
		TotalWords:      c.vocab.Len(),
		UniqueLowercase: c.vocab.FoldedLen(),
		TrigramCount:    c.index.Len(),
		CacheSize:       c.cache.Len(),
		AvgFrequency:    c.vocab.AvgFrequency(),
		CacheHits:       c.cacheHits.Load(),
		CacheMisses:     c.cacheMisses.Load(),
	}
}
