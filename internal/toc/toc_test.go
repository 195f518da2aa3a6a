package toc

import (
	"slices"
	"testing"

	rt "github.com/adyingdeath/blog/internal/rendertree"
)

func TestExtract(t *testing.T) {
	tree := rt.Root(
		rt.El("h1", rt.Properties{"id": rt.String("intro")}, rt.T("Intro")),
		rt.El("p", nil, rt.T("text")),
		rt.El("h2", rt.Properties{"id": rt.String("setup")}, rt.T("Set "), rt.El("code", nil, rt.T("up"))),
		rt.El("h3", nil, rt.T("no id")),
	)
	got := Extract(tree)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Depth != 1 || got[0].URL != "#intro" || got[0].Value != "Intro" {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Depth != 2 || got[1].URL != "#setup" || got[1].Value != "Set up" {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

func TestActive_LastHeadingAboveTop(t *testing.T) {
	pos := []HeadingPosition{{"c", 300}, {"a", -200}, {"b", -10}, {"d", 900}}
	got := Active(pos, 800)
	want := []string{"b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("active = %v, want %v", got, want)
	}
}

func TestActive_NoneAboveTopUsesFirst(t *testing.T) {
	pos := []HeadingPosition{{"a", 50}, {"b", 400}, {"c", 1200}}
	got := Active(pos, 800)
	want := []string{"a", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("active = %v, want %v", got, want)
	}
}

func TestActive_ExactlyAtTop(t *testing.T) {
	got := Active([]HeadingPosition{{"a", 0}, {"b", 10}}, 5)
	if !slices.Equal(got, []string{"a"}) {
		t.Errorf("active = %v", got)
	}
}

func TestActive_Empty(t *testing.T) {
	if got := Active(nil, 800); got != nil {
		t.Errorf("active = %v, want nil", got)
	}
}
