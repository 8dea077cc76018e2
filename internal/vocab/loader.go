package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/ayurcorpus/corpus-cleaning-platform/pkg/errors"
)

// LoadCSV reads the lexicon from a tabular file. The file must have a header
// row naming at least termColumn and labelColumn; only rows whose label is
// "1" (domain vocabulary) are loaded, and term strings are lowercased.
// An optional "frequency" column supplies per-term weights.
//
// Any structural failure is fatal: the pipeline cannot run meaningfully
// without its lexicon.
func LoadCSV(path, termColumn, labelColumn string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Fatal(apperrors.ErrVocabularyLoad, "opening %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return nil, apperrors.Fatal(apperrors.ErrVocabularyLoad, "reading header of %s: %v", path, err)
	}

	termIdx, labelIdx, freqIdx := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case termColumn:
			termIdx = i
		case labelColumn:
			labelIdx = i
		case "frequency":
			freqIdx = i
		}
	}
	if termIdx < 0 || labelIdx < 0 {
		return nil, apperrors.Fatal(apperrors.ErrVocabularyLoad,
			"%s: missing required column (term=%q, label=%q)", path, termColumn, labelColumn)
	}

	store := NewStore()
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.Fatal(apperrors.ErrVocabularyLoad, "%s line %d: %v", path, line, err)
		}
		if strings.TrimSpace(record[labelIdx]) != "1" {
			continue
		}
		term := strings.ToLower(strings.TrimSpace(record[termIdx]))
		if term == "" {
			continue
		}
		freq := 1
		if freqIdx >= 0 && freqIdx < len(record) {
			if _, err := fmt.Sscanf(record[freqIdx], "%d", &freq); err != nil || freq < 1 {
				freq = 1
			}
		}
		store.Add(term, freq)
	}

	if store.Len() == 0 {
		return nil, apperrors.Fatal(apperrors.ErrVocabularyLoad, "%s: no domain vocabulary rows", path)
	}
	return store, nil
}
