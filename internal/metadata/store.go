package metadata

import "sort"

// Store is an ordered mapping from metadata key to a sequence of string
// values. Key insertion order is meaningful and survives every operation
// except an explicit SortKeys. A key holding an empty sequence is distinct
// from an absent key: the field is declared but carries no values.
// Repeated identical values are legal until Dedupe runs.
type Store struct {
	keys []string
	vals map[string][]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{vals: make(map[string][]string)}
}

// Len returns the number of keys.
func (s *Store) Len() int { return len(s.keys) }

// Keys returns the keys in their current iteration order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Get returns a copy of the key's value sequence and whether the key is
// declared. A declared key with no values yields an empty non-nil slice.
func (s *Store) Get(k string) ([]string, bool) {
	v, ok := s.vals[k]
	if !ok {
		return nil, false
	}
	out := make([]string, len(v))
	copy(out, v)
	return out, true
}

// Set replaces the key's value sequence, declaring the key at the end of
// the iteration order when it is new. A nil values argument declares the
// key with an empty sequence.
func (s *Store) Set(k string, values []string) {
	if _, ok := s.vals[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.vals[k] = append([]string{}, values...)
}

// Append appends values to the key's sequence, declaring the key first if
// absent. No deduplication happens here.
func (s *Store) Append(k string, values []string) {
	if _, ok := s.vals[k]; !ok {
		s.keys = append(s.keys, k)
		s.vals[k] = []string{}
	}
	s.vals[k] = append(s.vals[k], values...)
}

// Delete removes the key entirely. Deleting an absent key is a no-op.
func (s *Store) Delete(k string) {
	if _, ok := s.vals[k]; !ok {
		return
	}
	delete(s.vals, k)
	for i, key := range s.keys {
		if key == k {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Has reports whether the key is declared and, when values is non-empty,
// whether every listed value occurs in the key's sequence. An empty values
// argument checks declaration only, independent of the value count.
func (s *Store) Has(k string, values []string) bool {
	seq, ok := s.vals[k]
	if !ok {
		return false
	}
	for _, want := range values {
		found := false
		for _, v := range seq {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// RemoveValues removes every occurrence of each listed value from the
// key's sequence. The key stays declared even when emptied; only Delete
// removes a key. Absent keys are a no-op.
func (s *Store) RemoveValues(k string, values []string) {
	seq, ok := s.vals[k]
	if !ok {
		return
	}
	drop := make(map[string]struct{}, len(values))
	for _, v := range values {
		drop[v] = struct{}{}
	}
	kept := seq[:0]
	for _, v := range seq {
		if _, del := drop[v]; !del {
			kept = append(kept, v)
		}
	}
	s.vals[k] = kept
}

// RemoveEmpty deletes every key declared with an empty value sequence.
func (s *Store) RemoveEmpty() {
	for _, k := range s.Keys() {
		if len(s.vals[k]) == 0 {
			s.Delete(k)
		}
	}
}

// Dedupe collapses the key's sequence to first-occurrence-unique values,
// preserving relative order. Absent keys are a no-op.
func (s *Store) Dedupe(k string) {
	seq, ok := s.vals[k]
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(seq))
	kept := seq[:0]
	for _, v := range seq {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		kept = append(kept, v)
	}
	s.vals[k] = kept
}

// SortValues sorts the key's value sequence in the given direction.
// The sort is stable and ordinal.
func (s *Store) SortValues(k string, how Order) {
	seq, ok := s.vals[k]
	if !ok {
		return
	}
	sort.SliceStable(seq, func(i, j int) bool {
		if how == OrderDesc {
			return seq[i] > seq[j]
		}
		return seq[i] < seq[j]
	})
}

// SortKeys reorders the key iteration order in the given direction.
// Value sequences are untouched.
func (s *Store) SortKeys(how Order) {
	sort.SliceStable(s.keys, func(i, j int) bool {
		if how == OrderDesc {
			return s.keys[i] > s.keys[j]
		}
		return s.keys[i] < s.keys[j]
	})
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	out := NewStore()
	for _, k := range s.keys {
		out.Set(k, s.vals[k])
	}
	return out
}

// Equal reports whether both stores hold the same keys in the same order
// with identical value sequences.
func (s *Store) Equal(o *Store) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for i, k := range s.keys {
		if o.keys[i] != k {
			return false
		}
		a, b := s.vals[k], o.vals[k]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}
