package spell

import (
	"context"
	"fmt"
	"testing"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/vocab"
)

func testStore() *vocab.Store {
	s := vocab.NewStore()
	for term, freq := range map[string]int{
		"pitta": 420,
		"vata":  390,
		"kapha": 350,
		"dosha": 610,
		"agni":  180,
	} {
		s.Add(term, freq)
	}
	return s
}

func TestCorrectWordExactShortCircuit(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	got, ok := c.CorrectWord("pitta", 0.75)
	if !ok || got != "pitta" {
		t.Errorf("exact word = %q, %v; want pitta, true", got, ok)
	}
	// Case-insensitive vocabulary hit folds to the stored form.
	got, ok = c.CorrectWord("PITTA", 0.75)
	if !ok || got != "pitta" {
		t.Errorf("folded word = %q, %v; want pitta, true", got, ok)
	}
}

func TestCorrectWordFuzzy(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	got, ok := c.CorrectWord("pltta", 0.75)
	if !ok || got != "pitta" {
		t.Errorf("CorrectWord(pltta) = %q, %v; want pitta, true", got, ok)
	}
	// Surrounding punctuation is stripped before lookup.
	got, ok = c.CorrectWord(`"pltta,"`, 0.75)
	if !ok || got != "pitta" {
		t.Errorf("punctuated word = %q, %v; want pitta, true", got, ok)
	}
}

func TestCorrectWordRejections(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	if _, ok := c.CorrectWord("xy", 0.75); ok {
		t.Error("words shorter than 3 runes must not be corrected")
	}
	if _, ok := c.CorrectWord("...", 0.75); ok {
		t.Error("punctuation-only input must not be corrected")
	}
	if _, ok := c.CorrectWord("zzzzq", 0.75); ok {
		t.Error("word with no candidate overlap must not be corrected")
	}
	// Below threshold: similar trigrams but too distant.
	if _, ok := c.CorrectWord("pixxta", 0.95); ok {
		t.Error("candidate under threshold must be rejected")
	}
}

func TestCorrectWordThresholdMonotonic(t *testing.T) {
	c := NewCorrector(testStore(), Options{})
	// If a word corrects at a high threshold it must also correct at any
	// lower one, to the same target.
	high, okHigh := c.CorrectWord("pltta", 0.8)
	low, okLow := c.CorrectWord("pltta", 0.5)
	if !okHigh || !okLow {
		t.Fatalf("expected correction at both thresholds: %v %v", okHigh, okLow)
	}
	if high != low {
		t.Errorf("thresholds changed the winner: %q vs %q", high, low)
	}
}

func TestCorrectWordCacheConsistency(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	first, ok1 := c.CorrectWord("vatta", 0.75)
	second, ok2 := c.CorrectWord("vatta", 0.75)
	if first != second || ok1 != ok2 {
		t.Errorf("cached result differs: (%q,%v) vs (%q,%v)", first, ok1, second, ok2)
	}
	stats := c.Stats()
	if stats.CacheHits < 1 {
		t.Errorf("CacheHits = %d, want at least 1", stats.CacheHits)
	}
	if stats.CacheSize < 1 {
		t.Errorf("CacheSize = %d, want at least 1", stats.CacheSize)
	}
}

func TestCorrectText(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	got := c.CorrectText("the pltta dosha governs.", 0.75)
	want := "the pitta dosha governs."
	if got != want {
		t.Errorf("CorrectText = %q, want %q", got, want)
	}
}

func TestCorrectTextPreservesUncorrectable(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	got := c.CorrectText("qqqqz (pltta)", 0.75)
	want := "qqqqz (pitta)"
	if got != want {
		t.Errorf("CorrectText = %q, want %q", got, want)
	}
}

func TestBatchCorrectOrder(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("line %d pltta", i)
	}
	out, err := c.BatchCorrect(context.Background(), texts, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(texts) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(texts))
	}
	for i, text := range out {
		want := fmt.Sprintf("line %d pitta", i)
		if text != want {
			t.Errorf("out[%d] = %q, want %q", i, text, want)
		}
	}
}

func TestBatchCorrectCancellation(t *testing.T) {
	c := NewCorrector(testStore(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.BatchCorrect(ctx, []string{"pltta", "vatta"}, 0.75); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestAddTermsExtendsCorrection(t *testing.T) {
	c := NewCorrector(testStore(), Options{})

	if _, ok := c.CorrectWord("trifala", 0.75); ok {
		t.Fatal("trifala should be uncorrectable before the term exists")
	}
	c.AddTerms([]string{"triphala"}, map[string]int{"triphala": 49})

	got, ok := c.CorrectWord("trifala", 0.75)
	if !ok || got != "triphala" {
		t.Errorf("after AddTerms: %q, %v; want triphala, true", got, ok)
	}
	if c.Stats().TotalWords != 6 {
		t.Errorf("TotalWords = %d, want 6", c.Stats().TotalWords)
	}
}
