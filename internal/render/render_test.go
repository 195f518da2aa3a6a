package render

import (
	"strings"
	"testing"

	"github.com/adyingdeath/blog/internal/compiler"
	"github.com/adyingdeath/blog/internal/highlight"
)

func TestBodyString_HighlightsCodeBlocks(t *testing.T) {
	src := []byte("---\ntitle: T\ndate: \"2024-01-01\"\n---\n## Section\n\n```go\nfmt.Println(1)\n```\n")
	post, err := compiler.New().Compile("t.md", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	hl, err := highlight.New(highlight.DefaultStyle)
	if err != nil {
		t.Fatal(err)
	}
	out, err := New(hl).BodyString(post)
	if err != nil {
		t.Fatalf("BodyString: %v", err)
	}
	if !strings.Contains(out, `<h2 id="section">Section</h2>`) {
		t.Errorf("heading missing in %q", out)
	}
	if strings.Contains(out, "<code class=\"language-go\">") {
		t.Errorf("code block was not replaced by highlighter output: %q", out)
	}
	if !strings.Contains(out, "Println") {
		t.Errorf("code text lost: %q", out)
	}
}
