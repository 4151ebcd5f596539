// Package note owns the parse, mutate, recompose lifecycle of a single
// Markdown note. A Note is parsed once, mutated through metadata
// operations that mark it dirty, and recomposed on demand; persisting the
// composed text is the storage layer's job. Instances are not safe for
// concurrent use: callers process many notes in parallel by giving each
// worker its own instances.
package note

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/metadata"
)

// Segments is the raw split of the parsed note: any blank-line preamble,
// the verbatim frontmatter block (retained even when malformed, for
// diagnostics), and the body text.
type Segments struct {
	Preamble    string
	Frontmatter string
	Body        string
}

type state int

const (
	// stateParsed: stores populated, text never recomposed yet.
	stateParsed state = iota
	// stateDirty: mutations happened since the last recompose.
	stateDirty
	// stateComposed: clean, with recomposed text cached.
	stateComposed
)

// Note is one Markdown note under edit.
type Note struct {
	path    string
	meta    *metadata.NoteMetadata
	segs    Segments
	hasFM   bool
	hasIL   bool
	content string
	st      state
}

// Parse builds a Note from raw text. When the frontmatter block is
// malformed the note is still returned (empty frontmatter store, the
// malformed block retained in Segments) and the *InvalidFrontmatterError
// is propagated so batch callers can isolate the failure per note.
func Parse(path, raw string) (*Note, error) {
	sp, err := metadata.SplitFrontmatter(raw)
	inline := metadata.ParseInline(sp.Body)
	n := &Note{
		path:    path,
		meta:    metadata.NewNoteMetadata(sp.Store, inline),
		segs:    Segments{Preamble: sp.Preamble, Frontmatter: sp.Block, Body: sp.Body},
		hasFM:   err == nil && sp.Block != "",
		hasIL:   inline.Len() > 0,
		content: raw,
		st:      stateParsed,
	}
	if err != nil {
		if path != "" {
			return n, fmt.Errorf("parse %s: %w", path, err)
		}
		return n, err
	}
	return n, nil
}

// Path returns the note's vault-relative path ("" for in-memory notes).
func (n *Note) Path() string { return n.path }

// Content returns the current note text: the original raw text until the
// first recompose, the cached composed text after.
func (n *Note) Content() string { return n.content }

// Segments returns the raw split captured at parse time.
func (n *Note) Segments() Segments { return n.segs }

// Meta exposes the aggregator for read-only queries. Mutations must go
// through the Note methods so the dirty state stays accurate.
func (n *Note) Meta() *metadata.NoteMetadata { return n.meta }

// HasFrontmatter reports whether the original text contained a
// structurally valid frontmatter block.
func (n *Note) HasFrontmatter() bool { return n.hasFM }

// HasInline reports whether the original body contained at least one
// inline field.
func (n *Note) HasInline() bool { return n.hasIL }

// Dirty reports whether mutations happened since the last recompose.
func (n *Note) Dirty() bool { return n.st == stateDirty }

func (n *Note) touch() { n.st = stateDirty }

// Add creates or extends a metadata field. See metadata.NoteMetadata.Add.
func (n *Note) Add(k string, values []string, kind metadata.Kind, overwrite bool) {
	n.meta.Add(k, values, kind, overwrite)
	n.touch()
}

// Remove deletes a key (nil values) or listed value occurrences.
func (n *Note) Remove(k string, values []string, kind metadata.Kind) {
	n.meta.Remove(k, values, kind)
	n.touch()
}

// RemoveEmpty deletes keys declared with no values.
func (n *Note) RemoveEmpty(kind metadata.Kind) {
	n.meta.RemoveEmpty(kind)
	n.touch()
}

// Move transfers fields between the frontmatter and inline stores.
func (n *Note) Move(keys []string, from, to metadata.Kind) error {
	if err := n.meta.Move(keys, from, to); err != nil {
		return err
	}
	n.touch()
	return nil
}

// DedupeValues collapses value sequences to first-occurrence uniques.
func (n *Note) DedupeValues(keys []string, kind metadata.Kind) {
	n.meta.DedupeValues(keys, kind)
	n.touch()
}

// SortValues sorts value sequences; ordinal, stable.
func (n *Note) SortValues(keys []string, how metadata.Order, kind metadata.Kind) {
	n.meta.SortValues(keys, how, kind)
	n.touch()
}

// SortKeys reorders key iteration order.
func (n *Note) SortKeys(how metadata.Order, kind metadata.Kind) {
	n.meta.SortKeys(how, kind)
	n.touch()
}

// Order composes key and value ordering; OrderNone skips a sub-order.
func (n *Note) Order(keys []string, oKeys, oValues metadata.Order, kind metadata.Kind) {
	n.meta.Order(keys, oKeys, oValues, kind)
	n.touch()
}

// Has delegates to the aggregator without changing state.
func (n *Note) Has(k string, values []string, kind metadata.Kind) bool {
	return n.meta.Has(k, values, kind)
}

// Get delegates to the aggregator without changing state.
func (n *Note) Get(k string, kind metadata.Kind) ([]string, bool) {
	return n.meta.Get(k, kind)
}

// Append adds text at the end of the note body. With allowRepeat false the
// text is only added when not already present somewhere in the body.
func (n *Note) Append(text string, allowRepeat bool) {
	if !allowRepeat && strings.Contains(n.segs.Body, text) {
		return
	}
	n.segs.Body += "\n" + text
	n.touch()
}

// Sub replaces pattern with replace throughout the note body. The pattern
// is plain text unless isRegex is set.
func (n *Note) Sub(pattern, replace string, isRegex bool) error {
	if !isRegex {
		n.segs.Body = strings.ReplaceAll(n.segs.Body, pattern, replace)
		n.touch()
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("note: compile pattern: %w", err)
	}
	n.segs.Body = re.ReplaceAllString(n.segs.Body, replace)
	n.touch()
	return nil
}

// UpdateContent recomposes the note text from the current stores and the
// original body, caches it, and returns it. Calling it again while clean
// is a no-op returning the cached text, which makes repeated recomposition
// byte-identical.
func (n *Note) UpdateContent(cfg ComposeConfig) string {
	if n.st == stateComposed {
		return n.content
	}
	n.content = compose(n.meta, n.segs.Body, cfg)
	n.st = stateComposed
	return n.content
}
