package scaffold

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTemplateSource is returned when no layer or flag names a source.
	ErrNoTemplateSource = errors.New("no template source configured")
	// ErrNoTemplates is returned when a fetched source has no template directories.
	ErrNoTemplates = errors.New("template source contains no template directories")
	// ErrUnknownTemplate is returned when the requested template does not exist.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrAmbiguousTemplate is returned when several templates exist and none can be chosen.
	ErrAmbiguousTemplate = errors.New("several templates available and none selected")
	// ErrTargetNotEmpty is returned when the target directory has content and
	// overwriting was not allowed.
	ErrTargetNotEmpty = errors.New("target directory is not empty")
)

// SelectionError aborts a scaffold: the template source could not be fetched
// or no template directory could be chosen.
type SelectionError struct {
	Source string
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *SelectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template selection failed for %q: %s: %v", e.Source, e.Reason, e.Cause)
	}
	return fmt.Sprintf("template selection failed for %q: %s", e.Source, e.Reason)
}

// Unwrap returns the underlying cause error.
func (e *SelectionError) Unwrap() error {
	return e.Cause
}

func newSelectionError(source, reason string, cause error) *SelectionError {
	return &SelectionError{Source: source, Reason: reason, Cause: cause}
}
