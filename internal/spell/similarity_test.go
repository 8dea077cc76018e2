package spell

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStripDiacritics(t *testing.T) {
	tests := []struct{ in, want string }{
		{"vāta", "vata"},
		{"pitta", "pitta"},
		{"vīrya", "virya"},
		{"rasāyana", "rasayana"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDiacritics(tt.in); got != tt.want {
			t.Errorf("StripDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio("pitta", "pitta"); got != 1 {
		t.Errorf("Ratio of equal strings = %v, want 1", got)
	}
	// One insertion over combined length 9.
	if got := Ratio("pita", "pitta"); !almostEqual(got, 1-1.0/9) {
		t.Errorf("Ratio(pita, pitta) = %v, want %v", got, 1-1.0/9)
	}
	// One substitution counts as two edits over combined length 10.
	if got := Ratio("pltta", "pitta"); !almostEqual(got, 0.8) {
		t.Errorf("Ratio(pltta, pitta) = %v, want 0.8", got)
	}
	if got := Ratio("abc", "xyz"); got != 0 {
		t.Errorf("Ratio of disjoint strings = %v, want 0", got)
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("Pitta", "pitta"); got != 1.0 {
		t.Errorf("case-folded exact = %v, want 1.0", got)
	}
	if got := Similarity("vāta", "vata"); got != 0.95 {
		t.Errorf("diacritic-equal = %v, want 0.95", got)
	}

	// Equal lengths: no length penalty, plain edit ratio.
	if got := Similarity("pltta", "pitta"); !almostEqual(got, 0.8) {
		t.Errorf("Similarity(pltta, pitta) = %v, want 0.8", got)
	}

	// Length difference shrinks the score.
	withPenalty := Similarity("pita", "pitta")
	want := (1 - 1.0/9) * (1 - 0.3*1.0/5)
	if !almostEqual(withPenalty, want) {
		t.Errorf("Similarity(pita, pitta) = %v, want %v", withPenalty, want)
	}
	if withPenalty >= Ratio("pita", "pitta") {
		t.Error("length penalty must lower the raw ratio")
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"pitta", "pltta"},
		{"vata", "vatta"},
		{"dosha", "dosa"},
	}
	for _, p := range pairs {
		if a, b := Similarity(p[0], p[1]), Similarity(p[1], p[0]); !almostEqual(a, b) {
			t.Errorf("Similarity(%q,%q)=%v != Similarity(%q,%q)=%v", p[0], p[1], a, p[1], p[0], b)
		}
	}
}
