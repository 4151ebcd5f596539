package metadata

import (
	"fmt"
	"regexp"
	"strings"
)

// InlineTemplate selects how a group of inline fields renders.
type InlineTemplate string

const (
	// TemplateStandard renders one bare "key:: values" line per key.
	TemplateStandard InlineTemplate = "standard"
	// TemplateCallout renders the fields inside a quoted callout block.
	TemplateCallout InlineTemplate = "callout"
)

// ParseInlineTemplate converts a string flag value into an InlineTemplate.
// The empty string means TemplateStandard.
func ParseInlineTemplate(s string) (InlineTemplate, error) {
	switch s {
	case "standard", "":
		return TemplateStandard, nil
	case "callout":
		return TemplateCallout, nil
	}
	return TemplateStandard, fmt.Errorf("metadata: unknown inline template %q", s)
}

// calloutMarker opens the callout block holding inline fields.
const calloutMarker = "> [!info]- metadata"

var (
	// inlineRe matches an inline field line: optional prefix (blockquote
	// markers and the like), a key of letters/digits/spaces/hyphens, then
	// the first "::" and the values. The prefix group is non-greedy so the
	// key starts at the earliest plausible position.
	inlineRe = regexp.MustCompile(`^(.*?)([A-Za-z][A-Za-z0-9_ -]*)::(.*)$`)
	// inlineEnclosedRe matches bracket- or paren-enclosed tokens such as
	// "[key:: value]", which are display annotations, not fields.
	inlineEnclosedRe = regexp.MustCompile(`^.*?[(\[].*?::.*?[)\]]`)
)

// inlineMatch returns the prefix, key, and raw value text of an inline
// field line, or ok=false for ordinary body content.
func inlineMatch(line string) (prefix, key, rawValues string, ok bool) {
	m := inlineRe.FindStringSubmatch(line)
	if m == nil || inlineEnclosedRe.MatchString(line) {
		return "", "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), m[3], true
}

// splitInlineValues splits a field's raw value text on commas, trimming
// each element and dropping empties.
func splitInlineValues(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseInline scans body text for "key :: value[, value...]" lines and
// collects them into a store. First-seen key order and within-key
// occurrence order are preserved across the document; a field line with no
// values declares its key with an empty sequence. Lines without a "::" are
// ordinary content and never an error.
func ParseInline(body string) *Store {
	store := NewStore()
	for _, line := range strings.Split(body, "\n") {
		_, key, raw, ok := inlineMatch(line)
		if !ok {
			continue
		}
		store.Append(key, splitInlineValues(raw))
	}
	return store
}

// HasInline reports whether body contains at least one inline field line.
func HasInline(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		if _, _, _, ok := inlineMatch(line); ok {
			return true
		}
	}
	return false
}

// InlineString renders the store as inline field lines, one key per line
// in store order with comma-joined values. The callout template prefixes
// every line to sit inside a quoted callout block, opened by a marker
// line. An empty store renders nothing.
func InlineString(s *Store, tml InlineTemplate) string {
	if s.Len() == 0 {
		return ""
	}
	var lines []string
	if tml == TemplateCallout {
		lines = append(lines, calloutMarker)
	}
	for _, k := range s.Keys() {
		vals, _ := s.Get(k)
		lines = append(lines, renderInlineField(k, vals, tml))
	}
	return strings.Join(lines, "\n")
}

func renderInlineField(key string, vals []string, tml InlineTemplate) string {
	line := key + " ::"
	if len(vals) > 0 {
		line += " " + strings.Join(vals, ", ")
	}
	if tml == TemplateCallout {
		line = "> " + line
	}
	return line
}

// EraseInline removes every recognized inline field line (and any callout
// marker line) from body. A run of blank lines left adjacent by a removal
// collapses to at most one blank line; blank runs elsewhere are untouched.
func EraseInline(body string) string {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	removed := false
	for _, line := range lines {
		if _, _, _, ok := inlineMatch(line); ok || isCalloutMarker(line) {
			removed = true
			continue
		}
		blank := strings.TrimSpace(line) == ""
		if removed && blank && len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
			continue
		}
		if !blank {
			removed = false
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isCalloutMarker(line string) bool {
	return strings.TrimRight(line, " \t") == calloutMarker
}

// RewriteInline rewrites each originally matched inline field line in its
// original position using the key's current values in the store. Lines
// whose key is no longer declared disappear, as does every occurrence of a
// key after its first. The returned set holds the keys that were rewritten
// in place; keys declared in the store but absent from the body are the
// caller's to place. Blank runs left by removed lines collapse like
// EraseInline.
func RewriteInline(body string, s *Store) (string, map[string]bool) {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	written := make(map[string]bool)
	removed := false
	for _, line := range lines {
		prefix, key, _, ok := inlineMatch(line)
		if !ok {
			blank := strings.TrimSpace(line) == ""
			if removed && blank && len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
				continue
			}
			if !blank {
				removed = false
			}
			kept = append(kept, line)
			continue
		}
		vals, declared := s.Get(key)
		if !declared || written[key] {
			removed = true
			continue
		}
		written[key] = true
		removed = false
		kept = append(kept, prefix+renderInlineField(key, vals, TemplateStandard))
	}
	return strings.Join(kept, "\n"), written
}
