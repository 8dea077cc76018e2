// Package errors defines the pipeline's error taxonomy. Startup load
// failures are fatal; everything that happens per word or per line is a
// defined local no-op and never surfaces as an error.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrVocabularyLoad indicates a malformed or missing lexicon file.
	// The pipeline cannot run without its lexicon, so this aborts startup.
	ErrVocabularyLoad = errors.New("vocabulary load failed")
	// ErrDictionaryLoad indicates a malformed or missing canonical
	// dictionary file. Fatal at startup.
	ErrDictionaryLoad = errors.New("canonical dictionary load failed")
	// ErrIndexInconsistent reports a term present in the vocabulary but
	// missing from the trigram index. A programming defect: logged and the
	// term skipped rather than crashing corpus processing.
	ErrIndexInconsistent = errors.New("trigram index inconsistent")
	// ErrInvalidInput reports a structurally invalid external input, such
	// as a raw-page event without a source identifier.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCacheUnavailable reports that the shared page cache could not be
	// reached. Never fatal; cleaning falls back to local computation.
	ErrCacheUnavailable = errors.New("page cache unavailable")
)

// PipelineError wraps a sentinel with context and a fatality flag.
type PipelineError struct {
	Err     error
	Message string
	Fatal   bool
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Fatal wraps a sentinel as a startup-aborting error.
func Fatal(sentinel error, format string, args ...any) *PipelineError {
	return &PipelineError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
		Fatal:   true,
	}
}

// Local wraps a sentinel as a non-fatal, log-and-continue error.
func Local(sentinel error, format string, args ...any) *PipelineError {
	return &PipelineError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsFatal reports whether err must abort process startup. Load failures are
// always fatal, wrapped or not.
func IsFatal(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Fatal
	}
	return errors.Is(err, ErrVocabularyLoad) || errors.Is(err, ErrDictionaryLoad)
}
