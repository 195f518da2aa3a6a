package compiler

import (
	"errors"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationError reports front-matter that failed schema validation.
type ValidationError struct {
	Source string
	// Fields names the offending front-matter fields, sorted.
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid front-matter: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// HasField reports whether name is among the offending fields.
func (e *ValidationError) HasField(name string) bool {
	return slices.Contains(e.Fields, name)
}

func newValidationError(source string, err error) *ValidationError {
	ve := &ValidationError{Source: source, Err: err}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field := range fieldErrs {
			ve.Fields = append(ve.Fields, field)
		}
		slices.Sort(ve.Fields)
	}
	return ve
}

// ParseError reports a malformed document body or front-matter block.
type ParseError struct {
	Source string
	// Line is 1-based within the source file; 0 when unknown.
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
