package conversation

import "slices"

// Ring is a bounded list that keeps the most recent items, evicting the
// oldest first.
type Ring struct {
	limit int
	items []string
}

// NewRing creates a Ring holding at most limit items.
func NewRing(limit int) *Ring {
	return &Ring{limit: limit}
}

// Push appends s, evicting the oldest item when full.
func (r *Ring) Push(s string) {
	if r.limit <= 0 {
		return
	}
	if len(r.items) == r.limit {
		r.items = append(r.items[:0], r.items[1:]...)
	}
	r.items = append(r.items, s)
}

// Items returns a copy of the items, oldest first.
func (r *Ring) Items() []string {
	return slices.Clone(r.items)
}

// Contains reports whether s is among the retained items.
func (r *Ring) Contains(s string) bool {
	return slices.Contains(r.items, s)
}

// Last returns the newest item.
func (r *Ring) Last() (string, bool) {
	if len(r.items) == 0 {
		return "", false
	}
	return r.items[len(r.items)-1], true
}

// Len returns the number of retained items.
func (r *Ring) Len() int {
	return len(r.items)
}

// BoundedSet is a set of at most limit distinct strings with FIFO eviction.
type BoundedSet struct {
	ring *Ring
}

// NewBoundedSet creates a BoundedSet of the given capacity.
func NewBoundedSet(limit int) *BoundedSet {
	return &BoundedSet{ring: NewRing(limit)}
}

// Add inserts s unless present. It reports whether s was new.
func (b *BoundedSet) Add(s string) bool {
	if b.ring.Contains(s) {
		return false
	}
	b.ring.Push(s)
	return true
}

// Contains reports whether s is in the set.
func (b *BoundedSet) Contains(s string) bool {
	return b.ring.Contains(s)
}

// Len returns the number of members.
func (b *BoundedSet) Len() int {
	return b.ring.Len()
}

// Items returns the members in insertion order.
func (b *BoundedSet) Items() []string {
	return b.ring.Items()
}
