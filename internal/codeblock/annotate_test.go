package codeblock

import (
	"testing"

	rt "github.com/adyingdeath/blog/internal/rendertree"
)

func preWith(codeProps rt.Properties, text string) *rt.Element {
	return rt.El("pre", nil, rt.El("code", codeProps, rt.T(text)))
}

func firstPre(t *testing.T, n rt.Node) *rt.Element {
	t.Helper()
	pres := rt.FindAll(n, "pre")
	if len(pres) == 0 {
		t.Fatal("no pre element in tree")
	}
	return pres[0]
}

func TestAnnotate_LanguageFromClass(t *testing.T) {
	tree := rt.Root(preWith(rt.Properties{rt.PropClassName: rt.List("language-rust")}, "fn main() {}\n"))
	out := Annotate(tree)

	a, ok := Read(firstPre(t, out))
	if !ok {
		t.Fatal("pre not annotated")
	}
	if a.Language != "rust" {
		t.Errorf("language = %q, want rust", a.Language)
	}
	if a.RawText != "fn main() {}\n" {
		t.Errorf("rawText = %q", a.RawText)
	}
}

func TestAnnotate_FirstMatchingToken(t *testing.T) {
	tree := rt.Root(preWith(rt.Properties{rt.PropClassName: rt.List("hl", "language-go", "language-js")}, "x"))
	a, _ := Read(firstPre(t, Annotate(tree)))
	if a.Language != "go" {
		t.Errorf("language = %q, want go", a.Language)
	}
}

func TestAnnotate_LanguageAbsent(t *testing.T) {
	cases := map[string]*rt.Element{
		"no code child":     rt.El("pre", nil, rt.T("plain")),
		"no class":          preWith(nil, "plain"),
		"no matching token": preWith(rt.Properties{rt.PropClassName: rt.List("hl", "wide")}, "plain"),
		"class not a list":  preWith(rt.Properties{rt.PropClassName: rt.String("language-go")}, "plain"),
		"empty tag":         preWith(rt.Properties{rt.PropClassName: rt.List("language-")}, "plain"),
	}
	for name, pre := range cases {
		t.Run(name, func(t *testing.T) {
			out := Annotate(rt.Root(pre))
			p := firstPre(t, out)
			if _, has := p.Props.Get(rt.PropLanguage); has {
				t.Error("language should be absent")
			}
			a, ok := Read(p)
			if !ok {
				t.Fatal("pre not annotated")
			}
			if a.RawText != "plain" {
				t.Errorf("rawText = %q", a.RawText)
			}
			if a.LanguageOrDefault() != DefaultLanguage {
				t.Errorf("default language = %q", a.LanguageOrDefault())
			}
		})
	}
}

func TestAnnotate_RawTextHasNoMarkup(t *testing.T) {
	pre := rt.El("pre", nil, rt.El("code", rt.Properties{rt.PropClassName: rt.List("language-html")},
		rt.El("span", nil, rt.T("<b>")), rt.T("bold"), rt.El("span", nil, rt.T("</b>"))))
	a, _ := Read(firstPre(t, Annotate(rt.Root(pre))))
	if a.RawText != "<b>bold</b>" {
		t.Errorf("rawText = %q", a.RawText)
	}
}

func TestAnnotate_DoesNotMutateInput(t *testing.T) {
	pre := preWith(rt.Properties{rt.PropClassName: rt.List("language-go")}, "x")
	tree := rt.Root(pre)
	_ = Annotate(tree)
	if _, ok := pre.Props.Get(rt.PropRawText); ok {
		t.Error("input tree was mutated")
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	tree := rt.Root(
		preWith(rt.Properties{rt.PropClassName: rt.List("language-python")}, "print(1)"),
		rt.El("p", nil, rt.T("between")),
		rt.El("pre", nil, rt.T("bare")),
	)
	once := Annotate(tree)
	twice := Annotate(once)

	a1, a2 := Collect(once), Collect(twice)
	if len(a1) != 2 || len(a2) != 2 {
		t.Fatalf("collected %d and %d annotations, want 2", len(a1), len(a2))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Errorf("annotation %d changed: %+v -> %+v", i, a1[i], a2[i])
		}
	}
}

func TestAnnotate_NestedPre(t *testing.T) {
	tree := rt.Root(rt.El("div", nil, rt.El("section", nil,
		preWith(rt.Properties{rt.PropClassName: rt.List("language-sh")}, "ls"))))
	got := Collect(Annotate(tree))
	if len(got) != 1 || got[0].Language != "sh" || got[0].RawText != "ls" {
		t.Errorf("annotations = %+v", got)
	}
}
