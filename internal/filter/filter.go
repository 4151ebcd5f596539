// Package filter selects notes by file name and metadata content.
// All clauses of a filter are ANDed together; a zero filter matches
// every note.
package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/metadata"
)

// MetaClause requires a key (optionally with specific values) to be
// present in the selected stores of a note.
type MetaClause struct {
	Key    string
	Values []string
	Kind   metadata.Kind
}

// Filter is a conjunction of note selection criteria. Name criteria
// apply to the file's base name without the .md extension; Paths pins
// the selection to exact vault-relative paths.
type Filter struct {
	Paths   []string
	Prefix  string
	Suffix  string
	Pattern string
	Meta    []MetaClause

	re *regexp.Regexp
}

// Compile validates the filter and precompiles its pattern. It must be
// called before Match.
func (f *Filter) Compile() error {
	if f.Pattern == "" {
		return nil
	}
	re, err := regexp.Compile(f.Pattern)
	if err != nil {
		return fmt.Errorf("filter: invalid pattern: %w", err)
	}
	f.re = re
	return nil
}

// Match reports whether a note at path with the given metadata passes
// every clause of the filter.
func (f *Filter) Match(path string, meta *metadata.NoteMetadata) bool {
	if len(f.Paths) > 0 {
		found := false
		for _, p := range f.Paths {
			if p == path {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), ".md")
	if f.Prefix != "" && !strings.HasPrefix(name, f.Prefix) {
		return false
	}
	if f.Suffix != "" && !strings.HasSuffix(name, f.Suffix) {
		return false
	}
	if f.re != nil && !f.re.MatchString(name) {
		return false
	}
	for _, c := range f.Meta {
		if meta == nil || !meta.Has(c.Key, c.Values, c.Kind) {
			return false
		}
	}
	return true
}

// ParseMetaClause parses a clause of the form "key", "key=v" or
// "key=v1,v2" with an optional "frontmatter:" or "inline:" prefix.
func ParseMetaClause(s string) (MetaClause, error) {
	c := MetaClause{Kind: metadata.KindAll}
	rest := s
	if k, v, ok := strings.Cut(rest, ":"); ok && !strings.Contains(k, "=") {
		kind, err := metadata.ParseKind(k)
		if err != nil {
			return c, fmt.Errorf("filter: clause %q: %w", s, err)
		}
		c.Kind = kind
		rest = v
	}
	key, vals, ok := strings.Cut(rest, "=")
	c.Key = strings.TrimSpace(key)
	if c.Key == "" {
		return c, fmt.Errorf("filter: clause %q has no key", s)
	}
	if ok {
		for _, v := range strings.Split(vals, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				c.Values = append(c.Values, v)
			}
		}
	}
	return c, nil
}
