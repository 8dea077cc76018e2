package noise

import (
	"strings"
	"testing"
)

func TestDetectRepeatedThreshold(t *testing.T) {
	pages := make([][]string, 10)
	for i := range pages {
		pages[i] = []string{"body text unique to page " + strings.Repeat("x", i)}
	}
	// On 3 of 10 pages: exactly at the 0.3 boundary, counts as repeated.
	for _, i := range []int{0, 4, 9} {
		pages[i] = append(pages[i], "Ancient Texts Volume I")
	}
	// On 2 of 10 pages: below the boundary.
	for _, i := range []int{1, 5} {
		pages[i] = append(pages[i], "Chapter Three")
	}

	repeated := DetectRepeated(pages, 0.3)
	if _, ok := repeated["ancient texts volume i"]; !ok {
		t.Error("line on 3/10 pages must be detected at fraction 0.3")
	}
	if _, ok := repeated["chapter three"]; ok {
		t.Error("line on 2/10 pages must not be detected at fraction 0.3")
	}
}

func TestDetectRepeatedSinglePage(t *testing.T) {
	pages := [][]string{{"Header", "body"}}
	if got := DetectRepeated(pages, 0.3); len(got) != 0 {
		t.Errorf("single-page document must yield no repeated lines, got %v", got)
	}
}

func TestDetectRepeatedDuplicatesWithinPageCountOnce(t *testing.T) {
	pages := [][]string{
		{"Header", "Header", "body one"},
		{"body two"},
		{"body three"},
	}
	if got := DetectRepeated(pages, 0.5); len(got) != 0 {
		t.Errorf("duplicate within one page must count once, got %v", got)
	}
}

func TestFilterLinesHeaderFooter(t *testing.T) {
	repeated := map[string]struct{}{
		"ancient texts volume i": {},
		"the pitta chapter":      {},
	}
	lines := []string{
		"Ancient Texts Volume I",
		"The pitta chapter",
		"The pitta dosha governs digestion and transformation.",
		"",
	}
	got := FilterLines(lines, repeated, []string{"pitta"}, nil)
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(got), got)
	}
	// Repeated line containing a protected term survives.
	if got[0] != "The pitta chapter" {
		t.Errorf("protected repeated line dropped: %v", got)
	}
}

func TestFilterLinesSymbolJunk(t *testing.T) {
	lines := []string{
		"The pitta dosha governs digestion and transformation.",
		"|||| #### @@@@ %%%% &&&&",
		"~~~ --- ~~~ ---",
	}
	got := FilterLines(lines, nil, nil, nil)
	if len(got) != 1 {
		t.Fatalf("got %v, want only the clean sentence", got)
	}
}

func TestFilterLinesDevanagariStripped(t *testing.T) {
	lines := []string{
		"the pitta dosha संस्कृत governs digestion and metabolism",
	}
	got := FilterLines(lines, nil, nil, nil)
	if len(got) != 1 {
		t.Fatalf("mixed-script line with English majority must survive, got %v", got)
	}
	for _, r := range got[0] {
		if r >= 0x0900 && r <= 0x097F {
			t.Fatalf("Devanagari not stripped: %q", got[0])
		}
	}
}

func TestFilterLinesPureDevanagariDropped(t *testing.T) {
	lines := []string{"संस्कृतवाक्यम् अत्र लिखितम्"}
	if got := FilterLines(lines, nil, nil, nil); len(got) != 0 {
		t.Errorf("pure Devanagari line must be dropped, got %v", got)
	}
}

func TestFilterLinesDropAccounting(t *testing.T) {
	repeated := map[string]struct{}{"running header": {}}
	lines := []string{
		"Running Header",
		"@@@@ |||| ####",
		"The pitta dosha governs digestion and metabolism.",
	}
	counts := make(map[Stage]int)
	FilterLines(lines, repeated, nil, func(stage Stage) { counts[stage]++ })
	if counts[StageHeaderFooter] != 1 {
		t.Errorf("header_footer drops = %d, want 1", counts[StageHeaderFooter])
	}
	if counts[StageScript] != 1 {
		t.Errorf("script drops = %d, want 1", counts[StageScript])
	}
}
