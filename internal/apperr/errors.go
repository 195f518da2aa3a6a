// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrInvalidPath    = errors.New("invalid path")
)
