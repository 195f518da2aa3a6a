package registry

import (
	"fmt"
	"strings"
)

// DuplicatePathError reports documents whose source locations normalize to
// the same path. None of them is admitted to the registry.
type DuplicatePathError struct {
	Path    string
	Sources []string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate path %q from %s", e.Path, strings.Join(e.Sources, ", "))
}

// Failure is a document that could not be admitted to the registry.
type Failure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func newFailure(source string, err error) Failure {
	return Failure{Source: source, Reason: err.Error(), Err: err}
}
