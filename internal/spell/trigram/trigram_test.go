package trigram

import (
	"reflect"
	"testing"
)

func TestTrigrams(t *testing.T) {
	tests := []struct {
		word string
		want []string
	}{
		{"", nil},
		{"a", []string{"#a#"}},
		{"ab", []string{"#ab", "ab#"}},
		{"abc", []string{"#ab", "abc", "bc#"}},
		// Duplicate windows collapse.
		{"aaaa", []string{"#aa", "aaa", "aa#"}},
		// Diacritics are single positions.
		{"vā", []string{"#vā", "vā#"}},
	}
	for _, tt := range tests {
		if got := Trigrams(tt.word); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Trigrams(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestCandidatesRanking(t *testing.T) {
	ix := New()
	ix.Add("pitta", "pitta")
	ix.Add("vata", "vata")
	ix.Add("dosha", "dosha")

	// "pltta" shares tta and ta# with pitta only.
	got := ix.Candidates("pltta", 10)
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	if got[0].Term != "pitta" {
		t.Errorf("top candidate = %q, want pitta", got[0].Term)
	}
	if got[0].Votes != 2 {
		t.Errorf("pitta votes = %d, want 2", got[0].Votes)
	}
}

func TestCandidatesNoOverlap(t *testing.T) {
	ix := New()
	ix.Add("pitta", "pitta")
	if got := ix.Candidates("xyz", 10); got != nil {
		t.Errorf("Candidates with no overlap = %v, want nil", got)
	}
	if got := ix.Candidates("pitta", 0); got != nil {
		t.Errorf("Candidates with max 0 = %v, want nil", got)
	}
}

func TestCandidatesDeterministicTieBreak(t *testing.T) {
	ix := New()
	// Both share the same trigrams with the query.
	ix.Add("vata", "vata")
	ix.Add("vataz", "vataz")

	first := ix.Candidates("vat", 10)
	for i := 0; i < 10; i++ {
		again := ix.Candidates("vat", 10)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking not deterministic: %v vs %v", first, again)
		}
	}
}

func TestCandidatesMaxBound(t *testing.T) {
	ix := New()
	terms := []string{"vata", "vat", "vatas", "vataka", "vatika"}
	for _, term := range terms {
		ix.Add(term, term)
	}
	got := ix.Candidates("vata", 2)
	if len(got) != 2 {
		t.Errorf("len(Candidates) = %d, want 2", len(got))
	}
}

func TestContains(t *testing.T) {
	ix := New()
	ix.Add("pitta", "pitta")
	if !ix.Contains("pitta", "pitta") {
		t.Error("expected indexed term to be found in all its buckets")
	}
	if ix.Contains("vata", "vata") {
		t.Error("unindexed term must not be reported present")
	}
}
