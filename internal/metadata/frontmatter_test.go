package metadata

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSplitFrontmatter_ScalarListAndNull(t *testing.T) {
	raw := "---\ntitle: Hello\ntags:\n  - t1\n  - t2\ncount: 42\nempty:\n---\nBody text.\n"
	sp, err := SplitFrontmatter(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sp.Store.Keys(); !reflect.DeepEqual(got, []string{"title", "tags", "count", "empty"}) {
		t.Errorf("keys = %v", got)
	}
	if vals, _ := sp.Store.Get("title"); !reflect.DeepEqual(vals, []string{"Hello"}) {
		t.Errorf("title = %v", vals)
	}
	if vals, _ := sp.Store.Get("tags"); !reflect.DeepEqual(vals, []string{"t1", "t2"}) {
		t.Errorf("tags = %v", vals)
	}
	if vals, _ := sp.Store.Get("count"); !reflect.DeepEqual(vals, []string{"42"}) {
		t.Errorf("count = %v", vals)
	}
	if vals, ok := sp.Store.Get("empty"); !ok || len(vals) != 0 {
		t.Errorf("empty = %v ok=%v, want declared with no values", vals, ok)
	}
	if sp.Body != "Body text.\n" {
		t.Errorf("body = %q", sp.Body)
	}
	if !strings.HasPrefix(sp.Block, "---\n") || !strings.HasSuffix(sp.Block, "---\n") {
		t.Errorf("block = %q", sp.Block)
	}
}

func TestSplitFrontmatter_NoBlock(t *testing.T) {
	raw := "# Heading\nSome text.\n"
	sp, err := SplitFrontmatter(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp.Store.Len() != 0 || sp.Block != "" {
		t.Errorf("expected no frontmatter, got store=%v block=%q", sp.Store.Keys(), sp.Block)
	}
	if sp.Body != raw {
		t.Errorf("body = %q, want whole text", sp.Body)
	}
}

func TestSplitFrontmatter_DelimiterLaterInBodyIgnored(t *testing.T) {
	raw := "intro line\n---\nkey: value\n---\n"
	sp, err := SplitFrontmatter(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp.Store.Len() != 0 {
		t.Errorf("mid-document --- misdetected as frontmatter: %v", sp.Store.Keys())
	}
	if sp.Body != raw {
		t.Errorf("body = %q", sp.Body)
	}
}

func TestSplitFrontmatter_Unterminated(t *testing.T) {
	raw := "---\ntitle: Hello\nno closing delimiter here\n"
	sp, err := SplitFrontmatter(raw)
	var ife *InvalidFrontmatterError
	if !errors.As(err, &ife) {
		t.Fatalf("err = %v, want *InvalidFrontmatterError", err)
	}
	if sp.Store.Len() != 0 {
		t.Errorf("store should be empty on malformed block, got %v", sp.Store.Keys())
	}
	if sp.Block != raw {
		t.Errorf("malformed block not retained verbatim: %q", sp.Block)
	}
}

func TestSplitFrontmatter_NonMapping(t *testing.T) {
	raw := "---\n- just\n- a list\n---\nbody\n"
	_, err := SplitFrontmatter(raw)
	var ife *InvalidFrontmatterError
	if !errors.As(err, &ife) {
		t.Fatalf("err = %v, want *InvalidFrontmatterError", err)
	}
}

func TestSplitFrontmatter_NestedMappingInvalid(t *testing.T) {
	raw := "---\nouter:\n  inner: 1\n---\nbody\n"
	_, err := SplitFrontmatter(raw)
	var ife *InvalidFrontmatterError
	if !errors.As(err, &ife) {
		t.Fatalf("err = %v, want *InvalidFrontmatterError", err)
	}
}

func TestFrontmatterString_RenderForms(t *testing.T) {
	s := NewStore()
	s.Set("single", []string{"v"})
	s.Set("multi", []string{"a", "b"})
	s.Set("none", nil)
	want := "---\nsingle: v\nmulti:\n  - a\n  - b\nnone:\n---\n"
	if got := FrontmatterString(s); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestFrontmatterString_EmptyStoreEmitsNothing(t *testing.T) {
	if got := FrontmatterString(NewStore()); got != "" {
		t.Errorf("empty store rendered %q, want empty", got)
	}
}

func TestFrontmatter_RoundTrip(t *testing.T) {
	s := NewStore()
	s.Set("title", []string{"Hello"})
	s.Set("tags", []string{"t1", "t2", "t3"})
	s.Set("draft", nil)

	sp, err := SplitFrontmatter(FrontmatterString(s))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if !sp.Store.Equal(s) {
		t.Errorf("round-trip mismatch:\n got %v\nwant %v", sp.Store.Keys(), s.Keys())
	}
}

func TestHasFrontmatter(t *testing.T) {
	if !HasFrontmatter("---\nk: v\n---\nbody") {
		t.Error("valid block not detected")
	}
	if HasFrontmatter("plain body") {
		t.Error("detected frontmatter where none exists")
	}
	if HasFrontmatter("---\nunterminated") {
		t.Error("malformed block reported as existing")
	}
}

func TestSplitFrontmatter_LeadingBlankLinesPreamble(t *testing.T) {
	raw := "\n\n---\nk: v\n---\nbody\n"
	sp, err := SplitFrontmatter(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp.Preamble != "\n\n" {
		t.Errorf("preamble = %q", sp.Preamble)
	}
	if vals, _ := sp.Store.Get("k"); !reflect.DeepEqual(vals, []string{"v"}) {
		t.Errorf("k = %v", vals)
	}
}
