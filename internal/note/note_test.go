package note

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/metadata"
)

func TestParse_PopulatesStoresAndSegments(t *testing.T) {
	raw := "---\ntitle: Note\ntags:\n  - t1\n  - t2\n---\nIntro.\n\nstatus :: draft\n"
	n, err := Parse("notes/a.md", raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.HasFrontmatter() || !n.HasInline() {
		t.Error("frontmatter/inline presence not detected")
	}
	if vals, _ := n.Get("title", metadata.KindFrontmatter); !reflect.DeepEqual(vals, []string{"Note"}) {
		t.Errorf("title = %v", vals)
	}
	if vals, _ := n.Get("status", metadata.KindInline); !reflect.DeepEqual(vals, []string{"draft"}) {
		t.Errorf("status = %v", vals)
	}
	if n.Segments().Body != "Intro.\n\nstatus :: draft\n" {
		t.Errorf("body = %q", n.Segments().Body)
	}
	if n.Content() != raw {
		t.Error("content should stay the raw text until recompose")
	}
}

func TestParse_MalformedFrontmatterRetained(t *testing.T) {
	raw := "---\ntitle: Note\nno closing\n"
	n, err := Parse("bad.md", raw)
	var ife *metadata.InvalidFrontmatterError
	if !errors.As(err, &ife) {
		t.Fatalf("err = %v, want *InvalidFrontmatterError", err)
	}
	if n == nil {
		t.Fatal("note should be returned alongside the error")
	}
	if n.Meta().Frontmatter.Len() != 0 {
		t.Error("frontmatter store should be empty on malformed block")
	}
	if n.Segments().Frontmatter != raw {
		t.Errorf("malformed block not retained: %q", n.Segments().Frontmatter)
	}
	if n.Content() != raw {
		t.Error("no data may be silently discarded")
	}
}

func TestNote_DirtyLifecycle(t *testing.T) {
	n, err := Parse("", "---\nk: v\n---\nbody\n")
	if err != nil {
		t.Fatal(err)
	}
	if n.Dirty() {
		t.Error("freshly parsed note should be clean")
	}
	n.Add("k2", []string{"x"}, metadata.KindFrontmatter, false)
	if !n.Dirty() {
		t.Error("mutation should mark the note dirty")
	}
	cfg := ComposeConfig{}
	first := n.UpdateContent(cfg)
	if n.Dirty() {
		t.Error("recompose should return the note to clean")
	}
	if got := n.UpdateContent(cfg); got != first {
		t.Error("clean recompose must return the cached text")
	}
	n.Remove("k2", nil, metadata.KindFrontmatter)
	if !n.Dirty() {
		t.Error("mutation after recompose should re-dirty the note")
	}
}

func TestUpdateContent_GroupedBottomStandard(t *testing.T) {
	raw := "---\ntitle: Note\n---\nIntro.\n\nstatus :: draft\n\nOutro.\n"
	n, err := Parse("", raw)
	if err != nil {
		t.Fatal(err)
	}
	n.Add("status", []string{"done"}, metadata.KindInline, true)

	got := n.UpdateContent(ComposeConfig{Position: PositionBottom})
	want := "---\ntitle: Note\n---\nIntro.\n\nOutro.\n\nstatus :: done\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestUpdateContent_GroupedTop(t *testing.T) {
	raw := "body line\n\ntags :: t1\n"
	n, err := Parse("", raw)
	if err != nil {
		t.Fatal(err)
	}
	n.Add("tags", []string{"t2"}, metadata.KindInline, false)

	got := n.UpdateContent(ComposeConfig{Position: PositionTop})
	want := "tags :: t1, t2\n\nbody line\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestUpdateContent_CalloutTemplate(t *testing.T) {
	n, err := Parse("", "text\n\na :: 1\nb :: 2\n")
	if err != nil {
		t.Fatal(err)
	}
	n.Add("a", []string{"9"}, metadata.KindInline, false)

	got := n.UpdateContent(ComposeConfig{Template: metadata.TemplateCallout})
	want := "text\n\n> [!info]- metadata\n> a :: 1, 9\n> b :: 2\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestUpdateContent_GroupedIsIdempotent(t *testing.T) {
	raw := "---\ntitle: Note\n---\nIntro.\n\nstatus :: draft\ntags :: t1, t2\n\nOutro.\n"
	cfg := ComposeConfig{Position: PositionBottom, Template: metadata.TemplateStandard}

	n, err := Parse("", raw)
	if err != nil {
		t.Fatal(err)
	}
	n.Add("status", []string{"done"}, metadata.KindInline, true)
	first := n.UpdateContent(cfg)

	// Reparse the output and recompose with unchanged stores and config:
	// byte-identical, no growing blank runs, no duplicate blocks.
	n2, err := Parse("", first)
	if err != nil {
		t.Fatal(err)
	}
	second := n2.UpdateContent(cfg)
	if second != first {
		t.Errorf("not idempotent:\nfirst  %q\nsecond %q", first, second)
	}
	if strings.Contains(second, "\n\n\n") {
		t.Errorf("blank run grew: %q", second)
	}
}

func TestUpdateContent_InplaceRewrite(t *testing.T) {
	raw := "Intro.\nstatus :: draft\ntags :: t1\nOutro.\n"
	n, err := Parse("", raw)
	if err != nil {
		t.Fatal(err)
	}
	n.Remove("tags", nil, metadata.KindInline)
	n.Add("status", []string{"done"}, metadata.KindInline, true)
	n.Add("new", []string{"x"}, metadata.KindInline, false)

	got := n.UpdateContent(ComposeConfig{Inplace: true, Position: PositionBottom})
	want := "Intro.\nstatus :: done\nOutro.\n\nnew :: x\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestUpdateContent_InplaceKeepsCalloutPrefix(t *testing.T) {
	raw := "> [!info]- metadata\n> status :: draft\n\nbody\n"
	n, err := Parse("", raw)
	if err != nil {
		t.Fatal(err)
	}
	n.Add("status", []string{"done"}, metadata.KindInline, true)

	got := n.UpdateContent(ComposeConfig{Inplace: true})
	if !strings.Contains(got, "> status :: done") {
		t.Errorf("blockquote prefix lost: %q", got)
	}
}

func TestUpdateContent_EmptyFrontmatterOmitsBlock(t *testing.T) {
	raw := "---\nonly: field\n---\nbody\n"
	n, err := Parse("", raw)
	if err != nil {
		t.Fatal(err)
	}
	n.Remove("only", nil, metadata.KindFrontmatter)

	got := n.UpdateContent(ComposeConfig{})
	if got != "body\n" {
		t.Errorf("got %q, want %q", got, "body\n")
	}
}

func TestNote_MovePartitionThroughCompose(t *testing.T) {
	raw := "---\ntags:\n  - t1\n  - t2\n  - t3\n---\ntags :: t4, t5, t6\nbody\n"
	n, err := Parse("", raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Move([]string{"tags"}, metadata.KindFrontmatter, metadata.KindInline); err != nil {
		t.Fatal(err)
	}
	if n.Has("tags", nil, metadata.KindFrontmatter) {
		t.Error("tags still in frontmatter")
	}
	vals, _ := n.Get("tags", metadata.KindInline)
	if !reflect.DeepEqual(vals, []string{"t4", "t5", "t6", "t1", "t2", "t3"}) {
		t.Errorf("tags = %v", vals)
	}

	got := n.UpdateContent(ComposeConfig{Inplace: true})
	want := "tags :: t4, t5, t6, t1, t2, t3\nbody\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestNote_AppendAndSub(t *testing.T) {
	n, err := Parse("", "line one\n")
	if err != nil {
		t.Fatal(err)
	}
	n.Append("appended", false)
	n.Append("appended", false) // repeat suppressed
	if got := strings.Count(n.Segments().Body, "appended"); got != 1 {
		t.Errorf("appended %d times, want 1", got)
	}
	n.Append("appended", true)
	if got := strings.Count(n.Segments().Body, "appended"); got != 2 {
		t.Errorf("appended %d times, want 2", got)
	}

	if err := n.Sub("line", "row", false); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(n.Segments().Body, "row one") {
		t.Errorf("plain substitution failed: %q", n.Segments().Body)
	}
	if err := n.Sub(`r[a-z]+`, "X", true); err != nil {
		t.Fatal(err)
	}
	if err := n.Sub(`([`, "X", true); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestParsePosition(t *testing.T) {
	if p, err := ParsePosition(""); err != nil || p != PositionBottom {
		t.Errorf("default = %v, %v", p, err)
	}
	if _, err := ParsePosition("sideways"); err == nil {
		t.Error("expected error for unknown position")
	}
}
