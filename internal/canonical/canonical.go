// Package canonical maps spelling variants of domain terms onto their
// canonical forms and extracts which canonical terms a text mentions.
// The dictionary is a small curated map, distinct from the bulk
// vocabulary the spell corrector draws on: these terms carry meaning the
// pipeline must not blur, so matching is stricter and guarded against
// phantom promotions of common words.
package canonical

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell"
	apperrors "github.com/ayurcorpus/corpus-cleaning-platform/pkg/errors"
)

// fuzzyThreshold is the minimum edit ratio for a variant-free fuzzy match
// against a canonical term.
const fuzzyThreshold = 0.90

// Dictionary maps variants to canonical terms. Read-only after
// construction; safe for concurrent use.
type Dictionary struct {
	// canonical holds the canonical terms, lowercased, in sorted order.
	canonical []string
	// variants maps lowercased variant -> canonical term.
	variants map[string]string
	// display maps lowercased canonical -> its original casing.
	display map[string]string
}

// Load reads a canonical dictionary from a JSON file mapping each
// canonical term to its known variant spellings:
//
//	{"pitta": ["pita", "pltta"], "vata": ["vat", "väta"]}
//
// A load failure is fatal: the pipeline must not run half-configured.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Fatal(apperrors.ErrDictionaryLoad, "read %s: %v", path, err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Fatal(apperrors.ErrDictionaryLoad, "parse %s: %v", path, err)
	}
	if len(raw) == 0 {
		return nil, apperrors.Fatal(apperrors.ErrDictionaryLoad, "%s holds no terms", path)
	}
	return FromMap(raw), nil
}

// FromMap builds a Dictionary from an in-memory canonical -> variants map.
func FromMap(raw map[string][]string) *Dictionary {
	d := &Dictionary{
		variants: make(map[string]string),
		display:  make(map[string]string),
	}
	for canon, vars := range raw {
		lc := strings.ToLower(strings.TrimSpace(canon))
		if lc == "" {
			continue
		}
		d.canonical = append(d.canonical, lc)
		d.display[lc] = strings.TrimSpace(canon)
		for _, v := range vars {
			lv := strings.ToLower(strings.TrimSpace(v))
			if lv != "" && lv != lc {
				d.variants[lv] = lc
			}
		}
	}
	sort.Strings(d.canonical)
	return d
}

// Len returns the number of canonical terms.
func (d *Dictionary) Len() int { return len(d.canonical) }

// Names returns the canonical terms in sorted order. The slice is shared;
// callers must not modify it.
func (d *Dictionary) Names() []string { return d.canonical }

// NormalizeTerm maps word to its canonical form if it is a known variant
// or a close misspelling of a canonical term. context is the surrounding
// raw text; when non-empty, a fuzzy promotion is only accepted if the
// canonical term (or one of its variants) appears elsewhere in the
// context, which stops common English words from being pulled into the
// domain lexicon on edit distance alone. Unrecognized words come back
// unchanged.
func (d *Dictionary) NormalizeTerm(word, context string) string {
	clean := lettersOnly(word)
	if clean == "" {
		return word
	}
	lower := strings.ToLower(clean)

	if _, ok := d.display[lower]; ok {
		return clean
	}
	if canon, ok := d.variants[lower]; ok {
		return matchCase(word, canon)
	}

	best := ""
	bestScore := 0.0
	for _, canon := range d.canonical {
		score := spell.Ratio(lower, canon)
		if score >= fuzzyThreshold && score > bestScore {
			best, bestScore = canon, score
		}
	}
	if best == "" {
		return word
	}
	if context != "" && !d.termInContext(best, context) {
		return word
	}
	return matchCase(word, best)
}

// termInContext reports whether canon or any of its variants occurs in
// context as a substring, case-insensitively.
func (d *Dictionary) termInContext(canon, context string) bool {
	lower := strings.ToLower(context)
	if strings.Contains(lower, canon) {
		return true
	}
	for variant, c := range d.variants {
		if c == canon && strings.Contains(lower, variant) {
			return true
		}
	}
	return false
}

// ExtractEntities returns the canonical terms present in text, sorted. A
// term counts as present when it or any of its variants occurs as a
// substring, case-insensitively.
func (d *Dictionary) ExtractEntities(text string) []string {
	lower := strings.ToLower(text)
	found := make(map[string]struct{})
	for _, canon := range d.canonical {
		if strings.Contains(lower, canon) {
			found[canon] = struct{}{}
		}
	}
	for variant, canon := range d.variants {
		if _, ok := found[canon]; ok {
			continue
		}
		if strings.Contains(lower, variant) {
			found[canon] = struct{}{}
		}
	}
	out := make([]string, 0, len(found))
	for canon := range found {
		out = append(out, canon)
	}
	sort.Strings(out)
	return out
}

// lettersOnly strips everything but letters from word.
func lettersOnly(word string) string {
	var b strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchCase renders canon with a leading capital when the original word
// was capitalized.
func matchCase(original, canon string) string {
	for _, r := range original {
		if unicode.IsUpper(r) {
			return strings.ToUpper(canon[:1]) + canon[1:]
		}
		break
	}
	return canon
}

// String implements fmt.Stringer for logging.
func (d *Dictionary) String() string {
	return fmt.Sprintf("canonical.Dictionary(%d terms, %d variants)", len(d.canonical), len(d.variants))
}
