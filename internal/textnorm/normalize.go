// Package textnorm repairs OCR artifacts in already-filtered text:
// ligatures, intrusive symbols, character-level de-spacing, hyphenated
// line breaks, duplicate words, and casing. The output is reflowed into
// fixed-size sentence paragraphs.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TermFunc maps a single word to its canonical form. It is consulted for
// every word token during contextual normalization; returning the input
// unchanged is the identity.
type TermFunc func(word string) string

// Options tune the normalizer. Zero values select the documented defaults.
type Options struct {
	// OCRFix enables the character-repair passes (ligatures, intrusive
	// symbols, de-spacing, hyphen merges). Sentence reflow always runs.
	OCRFix bool
	// SentencesPerParagraph groups this many sentences per output
	// paragraph (3).
	SentencesPerParagraph int
}

// Normalizer applies the repair and reflow passes. Safe for concurrent
// use; it holds no mutable state.
type Normalizer struct {
	ocrFix       bool
	perParagraph int
}

var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬅ", "ft",
	"ﬆ", "st",
)

var (
	// A run of intrusive symbols wedged between two word characters, e.g.
	// "pit^ta". The run is deleted and the halves rejoined.
	intrusiveSymbol = regexp.MustCompile(`(\w)[\^<>*~¬¦§¶]+(\w)`)

	// A run of three or more space-separated single characters, the
	// signature of per-glyph OCR output: "p i t t a".
	spacedChars = regexp.MustCompile(`\b(?:\w ){2,}\w\b`)

	// A word split by a hyphen at a line break.
	hyphenBreak = regexp.MustCompile(`(\w)-\s*\n\s*(\w)`)

	whitespaceRun = regexp.MustCompile(`[ \t]+`)
)

// New returns a Normalizer with the given options.
func New(opts Options) *Normalizer {
	if opts.SentencesPerParagraph <= 0 {
		opts.SentencesPerParagraph = 3
	}
	return &Normalizer{
		ocrFix:       opts.OCRFix,
		perParagraph: opts.SentencesPerParagraph,
	}
}

// Normalize repairs and reflows text. The function is idempotent: running
// it over its own output changes nothing.
func (n *Normalizer) Normalize(text string) string {
	return n.NormalizeWithContext(text, "", nil)
}

// NormalizeWithContext is Normalize with a per-word canonicalization hook.
// rawContext is the unnormalized page text, passed through to termFn
// callers that need surrounding evidence for a mapping decision. termFn
// may be nil.
func (n *Normalizer) NormalizeWithContext(text, rawContext string, termFn TermFunc) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = norm.NFKC.String(text)
	if n.ocrFix {
		text = ligatures.Replace(text)
		text = fixIntrusiveSymbols(text)
		text = fixSpacedChars(text)
		text = hyphenBreak.ReplaceAllString(text, "$1$2")
	}
	text = whitespaceRun.ReplaceAllString(text, " ")

	sentences := splitSentences(text)
	cleaned := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = dedupeWords(s)
		if termFn != nil {
			s = applyTermFunc(s, termFn)
		}
		s = capitalize(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return paragraphs(cleaned, n.perParagraph)
}

// fixIntrusiveSymbols deletes stray symbols wedged inside words. Applied
// repeatedly because a match consumes the following word character, so
// "a^b^c" needs two passes.
func fixIntrusiveSymbols(text string) string {
	for {
		fixed := intrusiveSymbol.ReplaceAllString(text, "$1$2")
		if fixed == text {
			return fixed
		}
		text = fixed
	}
}

// fixSpacedChars collapses per-glyph OCR output ("p i t t a") into a
// single word. Runs shorter than three characters are left alone: "a b"
// is far more likely two real words.
func fixSpacedChars(text string) string {
	return spacedChars.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, " ", "")
	})
}

// dedupeWords removes consecutive duplicate words, case-insensitively,
// keeping the first occurrence: "the the dosha" -> "the dosha".
func dedupeWords(s string) string {
	words := strings.Fields(s)
	if len(words) < 2 {
		return s
	}
	out := words[:1]
	for _, w := range words[1:] {
		if strings.EqualFold(trimWordPunct(w), trimWordPunct(out[len(out)-1])) && trimWordPunct(w) != "" {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

const wordPunct = `.,;:!?"'()[]{}`

func trimWordPunct(w string) string {
	return strings.Trim(w, wordPunct)
}

// applyTermFunc maps every word through termFn, preserving surrounding
// punctuation and the original trailing shape of the sentence.
func applyTermFunc(s string, termFn TermFunc) string {
	words := strings.Fields(s)
	for i, w := range words {
		core := trimWordPunct(w)
		if core == "" {
			continue
		}
		mapped := termFn(core)
		if mapped == core {
			continue
		}
		prefix := w[:strings.Index(w, core)]
		suffix := w[strings.Index(w, core)+len(core):]
		words[i] = prefix + mapped + suffix
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first letter of the sentence, skipping over
// opening quotes and brackets. Sentences starting with digits or other
// punctuation are left alone.
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if unicode.IsLetter(r) {
			if unicode.IsUpper(r) {
				return s
			}
			return s[:i] + string(unicode.ToUpper(r)) + s[i+len(string(r)):]
		}
		if !unicode.IsSpace(r) && !strings.ContainsRune(`"'([{`, r) {
			return s
		}
	}
	return s
}

// paragraphs joins sentences into groups of n, separated by blank lines.
func paragraphs(sentences []string, n int) string {
	if len(sentences) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(sentences); i += n {
		end := i + n
		if end > len(sentences) {
			end = len(sentences)
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.Join(sentences[i:end], " "))
	}
	return b.String()
}
