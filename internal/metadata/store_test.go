package metadata

import (
	"reflect"
	"testing"
)

func TestStore_InsertionOrderPreserved(t *testing.T) {
	s := NewStore()
	s.Set("c", []string{"1"})
	s.Set("a", []string{"2"})
	s.Set("b", []string{"3"})
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("keys = %v, want [c a b]", got)
	}
	// Re-setting an existing key keeps its position.
	s.Set("a", []string{"9"})
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("keys after re-set = %v, want [c a b]", got)
	}
}

func TestStore_EmptyVsAbsent(t *testing.T) {
	s := NewStore()
	s.Set("declared", nil)

	vals, ok := s.Get("declared")
	if !ok {
		t.Fatal("declared key reported absent")
	}
	if len(vals) != 0 {
		t.Errorf("vals = %v, want empty", vals)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("missing key reported declared")
	}
	if !s.Has("declared", nil) || !s.Has("declared", []string{}) {
		t.Error("Has with no values should succeed for a declared key")
	}
	if s.Has("missing", nil) {
		t.Error("Has should fail for an absent key")
	}
}

func TestStore_HasValues(t *testing.T) {
	s := NewStore()
	s.Set("tags", []string{"t1", "t2", "t3"})

	tests := []struct {
		name   string
		values []string
		want   bool
	}{
		{"all present", []string{"t1", "t3"}, true},
		{"one missing", []string{"t1", "t9"}, false},
		{"empty always succeeds", []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Has("tags", tt.values); got != tt.want {
				t.Errorf("Has(tags, %v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestStore_RemoveValuesKeepsKey(t *testing.T) {
	s := NewStore()
	s.Set("tags", []string{"t1", "t2", "t3", "t1"})
	s.RemoveValues("tags", []string{"t1", "t3"})

	vals, ok := s.Get("tags")
	if !ok {
		t.Fatal("key removed by value removal")
	}
	if !reflect.DeepEqual(vals, []string{"t2"}) {
		t.Errorf("vals = %v, want [t2]", vals)
	}

	// Removing every value still keeps the key declared.
	s.RemoveValues("tags", []string{"t2"})
	if vals, ok := s.Get("tags"); !ok || len(vals) != 0 {
		t.Errorf("key should stay declared empty, got vals=%v ok=%v", vals, ok)
	}
}

func TestStore_Dedupe(t *testing.T) {
	s := NewStore()
	s.Set("k", []string{"b", "a", "b", "c", "a"})
	s.Dedupe("k")
	vals, _ := s.Get("k")
	if !reflect.DeepEqual(vals, []string{"b", "a", "c"}) {
		t.Errorf("vals = %v, want [b a c]", vals)
	}
}

func TestStore_SortValuesAndKeys(t *testing.T) {
	s := NewStore()
	s.Set("f2", []string{"3", "1", "2"})
	s.Set("f0", []string{"a"})
	s.Set("f1", []string{"z", "a"})

	s.SortValues("f2", OrderAsc)
	if vals, _ := s.Get("f2"); !reflect.DeepEqual(vals, []string{"1", "2", "3"}) {
		t.Errorf("asc vals = %v", vals)
	}
	s.SortValues("f1", OrderDesc)
	if vals, _ := s.Get("f1"); !reflect.DeepEqual(vals, []string{"z", "a"}) {
		t.Errorf("desc vals = %v", vals)
	}

	s.SortKeys(OrderAsc)
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"f0", "f1", "f2"}) {
		t.Errorf("keys = %v, want [f0 f1 f2]", got)
	}
	// Values untouched by key ordering.
	if vals, _ := s.Get("f2"); !reflect.DeepEqual(vals, []string{"1", "2", "3"}) {
		t.Errorf("values changed by SortKeys: %v", vals)
	}
}

func TestStore_DeleteAndClone(t *testing.T) {
	s := NewStore()
	s.Set("a", []string{"1"})
	s.Set("b", []string{"2"})

	c := s.Clone()
	s.Delete("a")
	if s.Has("a", nil) {
		t.Error("deleted key still declared")
	}
	if !c.Has("a", nil) {
		t.Error("clone affected by delete on original")
	}
	s.Delete("never-there") // no-op
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("keys = %v, want [b]", got)
	}
}
