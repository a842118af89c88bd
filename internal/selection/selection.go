// Package selection tracks multi-select over a listing of entry ids.
//
// A Selection is an immutable value: every transition returns a new one.
// It is Selecting exactly when at least one id is selected.
package selection

import (
	"slices"
)

// Mode of the tracker
type Mode int

const (
	Browsing Mode = iota
	Selecting
)

func (m Mode) String() string {
	if m == Selecting {
		return "selecting"
	}
	return "browsing"
}

// Selection is the current multi-select state
type Selection struct {
	set map[string]struct{}
}

// New returns an empty Selection in Browsing mode
func New() Selection {
	return Selection{}
}

func (s Selection) Mode() Mode {
	if len(s.set) > 0 {
		return Selecting
	}
	return Browsing
}

func (s Selection) Len() int {
	return len(s.set)
}

func (s Selection) Contains(id string) bool {
	_, ok := s.set[id]
	return ok
}

// IDs returns the selected ids, sorted
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s.set))
	for id := range s.set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s Selection) clone() map[string]struct{} {
	set := make(map[string]struct{}, len(s.set)+1)
	for id := range s.set {
		set[id] = struct{}{}
	}
	return set
}

// Toggle adds or removes id. It does nothing while Browsing.
func (s Selection) Toggle(id string) Selection {
	if s.Mode() != Selecting {
		return s
	}
	return s.toggle(id)
}

func (s Selection) toggle(id string) Selection {
	set := s.clone()
	if _, ok := set[id]; ok {
		delete(set, id)
	} else {
		set[id] = struct{}{}
	}
	return Selection{set: set}
}

// LongPress enters Selecting and toggles id
func (s Selection) LongPress(id string) Selection {
	return s.toggle(id)
}

// SelectAll selects exactly all. If exactly all is already selected the
// selection is cleared instead.
func (s Selection) SelectAll(all []string) Selection {
	if s.IsAll(all) {
		return Selection{}
	}
	set := make(map[string]struct{}, len(all))
	for _, id := range all {
		set[id] = struct{}{}
	}
	return Selection{set: set}
}

// Clear empties the selection and returns to Browsing
func (s Selection) Clear() Selection {
	return Selection{}
}

// Cancel is Clear, bound to the cancel action
func (s Selection) Cancel() Selection {
	return s.Clear()
}

// IsAll reports whether the selection is exactly the ids in all.
// An empty selection is never "all".
func (s Selection) IsAll(all []string) bool {
	if len(s.set) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(all))
	for _, id := range all {
		if _, ok := s.set[id]; !ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return len(seen) == len(s.set)
}

// Reconcile drops ids that are not in the new listing
func (s Selection) Reconcile(ids []string) Selection {
	if len(s.set) == 0 {
		return s
	}
	present := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		present[id] = struct{}{}
	}
	set := make(map[string]struct{}, len(s.set))
	for id := range s.set {
		if _, ok := present[id]; ok {
			set[id] = struct{}{}
		}
	}
	return Selection{set: set}
}
