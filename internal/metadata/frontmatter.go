package metadata

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// FrontmatterSplit is the outcome of splitting note text around its
// frontmatter block.
type FrontmatterSplit struct {
	// Store holds the parsed mapping. Empty when the note has no block or
	// the block is malformed.
	Store *Store
	// Preamble is the run of blank lines tolerated before the opening
	// delimiter. Recomposition drops it: the block always sits at the top.
	Preamble string
	// Block is the verbatim block text, delimiters included. It is
	// retained even when malformed so nothing is silently discarded.
	Block string
	// Body is everything after the closing delimiter line, byte-for-byte.
	Body string
}

// SplitFrontmatter parses the leading frontmatter block out of raw note
// text. A note without an opening "---" line at the very start has no
// frontmatter and its body is the whole text; a "---" line occurring later
// in the body is never treated as a delimiter. An opening delimiter
// without a closing one, or block content that is not a flat
// key-to-scalar/list mapping, yields an *InvalidFrontmatterError alongside
// the split (empty store, malformed block retained).
func SplitFrontmatter(raw string) (FrontmatterSplit, error) {
	sp := FrontmatterSplit{Store: NewStore(), Body: raw}

	i := 0
	for i < len(raw) && (raw[i] == '\n' || raw[i] == '\r') {
		i++
	}
	rest := raw[i:]

	first, afterFirst := splitLine(rest)
	if strings.TrimRight(first, "\r") != fmDelim {
		return sp, nil
	}
	sp.Preamble = raw[:i]

	// Scan for the closing delimiter line.
	pos := afterFirst
	for pos >= 0 && pos <= len(rest) {
		line, next := splitLineAt(rest, pos)
		if strings.TrimRight(line, "\r") == fmDelim {
			src := rest[afterFirst:pos]
			if next > len(rest) {
				sp.Block = rest
				sp.Body = ""
			} else {
				sp.Block = rest[:next]
				sp.Body = rest[next:]
			}
			if err := decodeFrontmatter(src, sp.Store); err != nil {
				sp.Store = NewStore()
				return sp, err
			}
			return sp, nil
		}
		if next > len(rest) {
			break
		}
		pos = next
	}

	// Opening delimiter with no closing line before content ends.
	sp.Block = rest
	sp.Body = ""
	return sp, &InvalidFrontmatterError{Reason: "unterminated frontmatter block"}
}

// HasFrontmatter reports whether raw contains a structurally valid
// frontmatter block.
func HasFrontmatter(raw string) bool {
	sp, err := SplitFrontmatter(raw)
	return err == nil && sp.Block != ""
}

// FrontmatterString renders the store as a frontmatter block. Keys render
// in store order: one value as "key: value", several as a block list, none
// as a bare "key:" line. An empty store renders nothing at all, not an
// empty delimiter pair.
func FrontmatterString(s *Store) string {
	if s.Len() == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmDelim + "\n")
	for _, k := range s.Keys() {
		vals, _ := s.Get(k)
		switch len(vals) {
		case 0:
			fmt.Fprintf(&b, "%s:\n", k)
		case 1:
			fmt.Fprintf(&b, "%s: %s\n", k, vals[0])
		default:
			fmt.Fprintf(&b, "%s:\n", k)
			for _, v := range vals {
				fmt.Fprintf(&b, "  - %s\n", v)
			}
		}
	}
	b.WriteString(fmDelim + "\n")
	return b.String()
}

// decodeFrontmatter parses the YAML between the delimiters into the store,
// preserving document key order via the yaml node API.
func decodeFrontmatter(src string, store *Store) error {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return &InvalidFrontmatterError{Reason: "malformed YAML", Err: err}
	}
	if len(doc.Content) == 0 {
		return nil // empty block is a valid, empty mapping
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &InvalidFrontmatterError{Reason: "top level is not a mapping"}
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		kn, vn := root.Content[i], root.Content[i+1]
		vals, err := scalarSequence(vn)
		if err != nil {
			return err
		}
		// A duplicate key keeps its first position; later values win.
		store.Set(kn.Value, vals)
	}
	return nil
}

// scalarSequence stringifies a value node: scalars become single-element
// sequences, lists of scalars become multi-element sequences, and null
// (a key with no value) becomes an empty sequence.
func scalarSequence(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return []string{}, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, &InvalidFrontmatterError{Reason: "list elements must be scalars"}
			}
			out = append(out, item.Value)
		}
		return out, nil
	default:
		return nil, &InvalidFrontmatterError{Reason: "values must be scalars or lists"}
	}
}

// splitLine returns the first line of s (without its newline) and the
// offset just past it.
func splitLine(s string) (string, int) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], i + 1
	}
	return s, len(s) + 1
}

// splitLineAt returns the line starting at pos and the offset of the line
// after it. The returned offset exceeds len(s) when the line is unterminated.
func splitLineAt(s string, pos int) (string, int) {
	if i := strings.IndexByte(s[pos:], '\n'); i >= 0 {
		return s[pos : pos+i], pos + i + 1
	}
	return s[pos:], len(s) + 1
}
