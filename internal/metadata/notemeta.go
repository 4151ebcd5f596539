package metadata

import "fmt"

// NoteMetadata is the uniform operation surface over a note's two metadata
// stores. Every operation takes a Kind selector; KindAll applies the
// operation to both stores independently, never to a merged view.
type NoteMetadata struct {
	Frontmatter *Store
	Inline      *Store
}

// NewNoteMetadata wraps the two stores. Nil stores are replaced with empty
// ones.
func NewNoteMetadata(frontmatter, inline *Store) *NoteMetadata {
	if frontmatter == nil {
		frontmatter = NewStore()
	}
	if inline == nil {
		inline = NewStore()
	}
	return &NoteMetadata{Frontmatter: frontmatter, Inline: inline}
}

// store resolves a concrete (non-ALL) kind to its store.
func (m *NoteMetadata) store(kind Kind) (*Store, error) {
	switch kind {
	case KindFrontmatter:
		return m.Frontmatter, nil
	case KindInline:
		return m.Inline, nil
	}
	return nil, fmt.Errorf("metadata: kind %s does not name a single store", kind)
}

func (m *NoteMetadata) stores(kind Kind) []*Store {
	switch kind {
	case KindFrontmatter:
		return []*Store{m.Frontmatter}
	case KindInline:
		return []*Store{m.Inline}
	default:
		return []*Store{m.Frontmatter, m.Inline}
	}
}

// Add creates or extends a metadata field. A nil values argument declares
// the key with an empty sequence. On a present key, overwrite replaces the
// sequence; otherwise values are appended as-is, duplicates included.
// KindAll touches the stores where the key is already declared; a key
// absent from both stores is created in the frontmatter.
func (m *NoteMetadata) Add(k string, values []string, kind Kind, overwrite bool) {
	if kind == KindAll {
		inFM := m.Frontmatter.Has(k, nil)
		inIL := m.Inline.Has(k, nil)
		if !inFM && !inIL {
			addToStore(m.Frontmatter, k, values, overwrite)
			return
		}
		if inFM {
			addToStore(m.Frontmatter, k, values, overwrite)
		}
		if inIL {
			addToStore(m.Inline, k, values, overwrite)
		}
		return
	}
	for _, s := range m.stores(kind) {
		addToStore(s, k, values, overwrite)
	}
}

func addToStore(s *Store, k string, values []string, overwrite bool) {
	if overwrite {
		s.Set(k, values)
		return
	}
	s.Append(k, values)
}

// Remove deletes a key entirely when values is nil, or removes every
// occurrence of each listed value while keeping the key declared (possibly
// empty). Absent keys are a no-op.
func (m *NoteMetadata) Remove(k string, values []string, kind Kind) {
	for _, s := range m.stores(kind) {
		if values == nil {
			s.Delete(k)
		} else {
			s.RemoveValues(k, values)
		}
	}
}

// RemoveEmpty deletes every key declared with no values.
func (m *NoteMetadata) RemoveEmpty(kind Kind) {
	for _, s := range m.stores(kind) {
		s.RemoveEmpty()
	}
}

// Move transfers fields between the two stores: the source sequence is
// appended onto the destination's existing sequence for that key, then the
// key is deleted from the source. A nil keys argument moves every key of
// the source. Missing keys are a no-op.
func (m *NoteMetadata) Move(keys []string, from, to Kind) error {
	src, err := m.store(from)
	if err != nil {
		return err
	}
	dst, err := m.store(to)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	if keys == nil {
		keys = src.Keys()
	}
	for _, k := range keys {
		vals, ok := src.Get(k)
		if !ok {
			continue
		}
		dst.Append(k, vals)
		src.Delete(k)
	}
	return nil
}

// DedupeValues collapses each targeted key's sequence to
// first-occurrence-unique values. A nil keys argument targets every key.
func (m *NoteMetadata) DedupeValues(keys []string, kind Kind) {
	for _, s := range m.stores(kind) {
		for _, k := range targetKeys(s, keys) {
			s.Dedupe(k)
		}
	}
}

// SortValues sorts each targeted key's value sequence. A nil keys argument
// targets every key. OrderNone defaults to ascending.
func (m *NoteMetadata) SortValues(keys []string, how Order, kind Kind) {
	if how == OrderNone {
		how = OrderAsc
	}
	for _, s := range m.stores(kind) {
		for _, k := range targetKeys(s, keys) {
			s.SortValues(k, how)
		}
	}
}

// SortKeys reorders key iteration order; values are untouched. OrderNone
// defaults to ascending.
func (m *NoteMetadata) SortKeys(how Order, kind Kind) {
	if how == OrderNone {
		how = OrderAsc
	}
	for _, s := range m.stores(kind) {
		s.SortKeys(how)
	}
}

// Order composes SortKeys and SortValues; either sub-order is skipped when
// its direction is OrderNone.
func (m *NoteMetadata) Order(keys []string, oKeys, oValues Order, kind Kind) {
	if oKeys != OrderNone {
		m.SortKeys(oKeys, kind)
	}
	if oValues != OrderNone {
		m.SortValues(keys, oValues, kind)
	}
}

// Has reports whether the key is declared in at least one selected store
// holding every listed value. An empty values argument checks declaration
// only.
func (m *NoteMetadata) Has(k string, values []string, kind Kind) bool {
	for _, s := range m.stores(kind) {
		if s.Has(k, values) {
			return true
		}
	}
	return false
}

// Get returns the key's values concatenated across the selected stores,
// frontmatter first. The second return is false when the key is declared
// in none of them.
func (m *NoteMetadata) Get(k string, kind Kind) ([]string, bool) {
	var out []string
	found := false
	for _, s := range m.stores(kind) {
		if vals, ok := s.Get(k); ok {
			found = true
			out = append(out, vals...)
		}
	}
	if !found {
		return nil, false
	}
	if out == nil {
		out = []string{}
	}
	return out, true
}

// Keys returns the union of declared keys across the selected stores,
// frontmatter order first, without repeats.
func (m *NoteMetadata) Keys(kind Kind) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range m.stores(kind) {
		for _, k := range s.Keys() {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

func targetKeys(s *Store, keys []string) []string {
	if keys == nil {
		return s.Keys()
	}
	return keys
}
