// Package testutil provides shared test helpers for setting up content directories.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/adyingdeath/blog/internal/storage"
)

// TestContent creates a temporary content directory with a storage.FS over it.
func TestContent(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Doc returns a document with the given title and date and body.
func Doc(title, date, body string) string {
	return fmt.Sprintf("---\ntitle: %q\nsummary: %q\ndate: %q\n---\n%s", title, "About "+title, date, body)
}

// WritePost writes a valid document to rel under dir.
func WritePost(t *testing.T, dir, rel, title, date string) {
	t.Helper()
	WriteFile(t, dir, rel, Doc(title, date, "# "+title+"\n\nBody of "+title+".\n\n```go\nfmt.Println(1)\n```\n"))
}
