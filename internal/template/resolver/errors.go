package resolver

import (
	"fmt"
	"strings"
)

// CycleError reports an extend chain that revisits a file already being resolved.
type CycleError struct {
	// Chain lists the files from the entry template to the repeated file.
	Chain []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("extension cycle detected: %s", strings.Join(e.Chain, " -> "))
}

// RenderError reports a failure to produce a single file's content.
type RenderError struct {
	// File is the template file being resolved.
	File string
	// Message describes the failing step.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (file: %s): %v", e.Message, e.File, e.Cause)
	}
	return fmt.Sprintf("%s (file: %s)", e.Message, e.File)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

func newRenderError(file, message string, cause error) *RenderError {
	return &RenderError{File: file, Message: message, Cause: cause}
}
