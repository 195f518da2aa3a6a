// Package storage defines the content and output file-system abstraction.
package storage

import "github.com/adyingdeath/blog/internal/models"

// Source lists and reads documents under a content root.
type Source interface {
	// List returns every document file under dir (relative to the root).
	List(dir string) ([]models.SourceFile, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
}

// Sink receives build output.
type Sink interface {
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
}
