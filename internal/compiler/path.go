package compiler

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/adyingdeath/blog/internal/apperr"
	"github.com/adyingdeath/blog/internal/storage"
)

const indexName = "index"

// NormalizePath derives the logical identifier of a document from its
// location relative to the content root: separators become slashes, the
// document extension and a trailing index segment are dropped, empty
// segments are removed, and the result is NFC-normalized.
//
// "2024/hello.mdx", "/2024/hello/", "2024\\hello.md" and "2024/hello/index.md"
// all normalize to "2024/hello".
func NormalizePath(source string) (string, error) {
	p := strings.ReplaceAll(source, "\\", "/")
	if storage.IsDocument(p) {
		p = strings.TrimSuffix(p, path.Ext(p))
	}
	segs, err := segments(source, p)
	if err != nil {
		return "", err
	}
	if len(segs) > 1 && segs[len(segs)-1] == indexName {
		segs = segs[:len(segs)-1]
	}
	return strings.Join(segs, "/"), nil
}

// NormalizeKey applies the separator, segment and NFC rules of NormalizePath
// to an already logical path, such as one taken from a request URL. The
// extension and index segment are left alone.
func NormalizeKey(key string) (string, error) {
	segs, err := segments(key, strings.ReplaceAll(key, "\\", "/"))
	if err != nil {
		return "", err
	}
	return strings.Join(segs, "/"), nil
}

func segments(source, p string) ([]string, error) {
	var segs []string
	for _, s := range strings.Split(norm.NFC.String(p), "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			return nil, fmt.Errorf("%w: %q leaves the content root", apperr.ErrInvalidPath, source)
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: %q is empty after normalization", apperr.ErrInvalidPath, source)
	}
	return segs, nil
}
