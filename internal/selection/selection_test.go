package selection

import (
	"math/rand"
	"slices"
	"testing"
)

func TestToggleRequiresSelecting(t *testing.T) {
	s := New().Toggle("a")
	if s.Mode() != Browsing || s.Len() != 0 {
		t.Errorf("Toggle while browsing should do nothing, got %v with %d", s.Mode(), s.Len())
	}
}

func TestLongPressAndToggle(t *testing.T) {
	s := New().LongPress("a")
	if s.Mode() != Selecting || !s.Contains("a") {
		t.Fatalf("Expected selecting with a, got %v %v", s.Mode(), s.IDs())
	}

	s = s.Toggle("b")
	if !slices.Equal(s.IDs(), []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", s.IDs())
	}

	s = s.Toggle("a").Toggle("b")
	if s.Mode() != Browsing {
		t.Errorf("Removing the last id should return to browsing, got %v", s.Mode())
	}
}

func TestTransitionsArePure(t *testing.T) {
	a := New().LongPress("a")
	b := a.Toggle("b")

	if a.Contains("b") {
		t.Error("Toggle mutated its receiver")
	}
	if !b.Contains("a") || !b.Contains("b") {
		t.Errorf("Expected [a b], got %v", b.IDs())
	}
}

func TestSelectAll(t *testing.T) {
	all := []string{"a", "b", "c"}

	s := New().SelectAll(all)
	if !s.IsAll(all) || s.Mode() != Selecting {
		t.Fatalf("Expected all selected, got %v", s.IDs())
	}

	s = s.SelectAll(all)
	if s.Len() != 0 || s.Mode() != Browsing {
		t.Errorf("Second select-all should clear, got %v", s.IDs())
	}

	partial := New().LongPress("a")
	if partial.IsAll(all) {
		t.Error("Partial selection is not all")
	}
	if got := partial.SelectAll(all); !got.IsAll(all) {
		t.Errorf("Select-all from partial should select all, got %v", got.IDs())
	}

	if New().SelectAll(nil).Mode() != Browsing {
		t.Error("Select-all on an empty listing should stay browsing")
	}
}

func TestIsAll(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		all      []string
		want     bool
	}{
		{"exact", []string{"a", "b"}, []string{"a", "b"}, true},
		{"order independent", []string{"b", "a"}, []string{"a", "b"}, true},
		{"subset", []string{"a"}, []string{"a", "b"}, false},
		{"superset", []string{"a", "b", "c"}, []string{"a", "b"}, false},
		{"empty selection", nil, nil, false},
		{"duplicates in listing", []string{"a"}, []string{"a", "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if len(tt.selected) > 0 {
				s = s.SelectAll(tt.selected)
			}
			if got := s.IsAll(tt.all); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClearAndCancel(t *testing.T) {
	s := New().SelectAll([]string{"a", "b"})
	if s.Clear().Mode() != Browsing || s.Cancel().Len() != 0 {
		t.Error("Clear and Cancel should empty the selection")
	}
}

func TestReconcile(t *testing.T) {
	s := New().SelectAll([]string{"a", "b", "c"})

	s = s.Reconcile([]string{"b", "c", "d"})
	if !slices.Equal(s.IDs(), []string{"b", "c"}) {
		t.Errorf("Expected [b c], got %v", s.IDs())
	}

	s = s.Reconcile([]string{"x"})
	if s.Mode() != Browsing {
		t.Errorf("Reconciling everything away should return to browsing, got %v", s.Mode())
	}
}

// Random walks over the transitions never leave a selected id outside the
// listing, and the mode always follows the set size.
func TestRandomWalkConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	listing := []string{"a", "b", "c", "d", "e"}

	s := New()
	for step := 0; step < 2000; step++ {
		id := listing[rng.Intn(len(listing))]
		switch rng.Intn(6) {
		case 0:
			s = s.Toggle(id)
		case 1:
			s = s.LongPress(id)
		case 2:
			s = s.SelectAll(listing)
		case 3:
			s = s.Clear()
		case 4:
			shrunk := listing[:1+rng.Intn(len(listing))]
			s = s.Reconcile(shrunk)
		case 5:
			s = s.Reconcile(listing)
		}

		for _, sel := range s.IDs() {
			if !slices.Contains(listing, sel) {
				t.Fatalf("step %d: %q selected but not listed", step, sel)
			}
		}
		if (s.Len() > 0) != (s.Mode() == Selecting) {
			t.Fatalf("step %d: mode %v with %d selected", step, s.Mode(), s.Len())
		}
		if s.IsAll(listing) != (s.Len() == len(listing)) {
			t.Fatalf("step %d: IsAll disagrees with size %d", step, s.Len())
		}
	}
}
