package vocab

import (
	"testing"
)

func TestStoreAddAndContains(t *testing.T) {
	s := NewStore()
	s.Add("pitta", 10)
	s.Add("vata", 0) // below 1, clamped

	if !s.Contains("pitta") {
		t.Error("expected pitta to be present")
	}
	if s.Contains("Pitta") {
		t.Error("Contains must be case-sensitive")
	}
	if got := s.Frequency("pitta"); got != 10 {
		t.Errorf("Frequency(pitta) = %d, want 10", got)
	}
	if got := s.Frequency("vata"); got != 1 {
		t.Errorf("Frequency(vata) = %d, want clamped 1", got)
	}
	if got := s.Frequency("unknown"); got != 1 {
		t.Errorf("Frequency(unknown) = %d, want default 1", got)
	}
}

func TestStoreMatchFoldedTieBreak(t *testing.T) {
	s := NewStore()
	s.Add("Pitta", 1)
	s.Add("pitta", 1)
	s.Add("PITTA", 1)

	got, ok := s.MatchFolded("pItTa")
	if !ok {
		t.Fatal("expected a folded match")
	}
	// Lexicographically smallest original-case form wins.
	if got != "PITTA" {
		t.Errorf("MatchFolded = %q, want PITTA", got)
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
	if s.FoldedLen() != 1 {
		t.Errorf("FoldedLen = %d, want 1", s.FoldedLen())
	}
}

func TestStoreAddTermsReturnsOnlyNew(t *testing.T) {
	s := NewStore()
	s.Add("pitta", 5)

	added := s.AddTerms([]string{"pitta", "vata", "kapha", ""}, map[string]int{"vata": 7})
	if len(added) != 2 {
		t.Fatalf("added = %v, want 2 new terms", added)
	}
	for _, term := range added {
		if term != "vata" && term != "kapha" {
			t.Errorf("unexpected new term %q", term)
		}
	}
	if got := s.Frequency("vata"); got != 7 {
		t.Errorf("Frequency(vata) = %d, want 7", got)
	}
}

func TestStoreAvgFrequency(t *testing.T) {
	s := NewStore()
	if got := s.AvgFrequency(); got != 0 {
		t.Errorf("empty AvgFrequency = %v, want 0", got)
	}
	s.Add("pitta", 10)
	s.Add("vata", 20)
	if got := s.AvgFrequency(); got != 15 {
		t.Errorf("AvgFrequency = %v, want 15", got)
	}
	// Updating a frequency must not double-count.
	s.Add("pitta", 30)
	if got := s.AvgFrequency(); got != 25 {
		t.Errorf("AvgFrequency after update = %v, want 25", got)
	}
}
