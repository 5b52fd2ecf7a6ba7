// Package visited tracks which graph nodes a search has already expanded.
package visited

import "github.com/bits-and-blooms/bitset"

// Set is a reusable visited set backed by a bitset.
// Reset only clears the bits touched since the previous Reset.
type Set struct {
	bits  *bitset.BitSet
	dirty []uint32
}

// New returns a set sized for capacity nodes. It grows on demand.
func New(capacity int) *Set {
	return &Set{
		bits:  bitset.New(uint(capacity)),
		dirty: make([]uint32, 0, 64),
	}
}

// Visit marks id as visited and reports whether it was newly marked.
func (s *Set) Visit(id uint32) bool {
	if s.bits.Test(uint(id)) {
		return false
	}
	s.bits.Set(uint(id))
	s.dirty = append(s.dirty, id)
	return true
}

// Visited reports whether id has been visited since the last Reset.
func (s *Set) Visited(id uint32) bool {
	return s.bits.Test(uint(id))
}

// Len returns the number of visited ids.
func (s *Set) Len() int { return len(s.dirty) }

// Reset clears the set for reuse.
func (s *Set) Reset() {
	for _, id := range s.dirty {
		s.bits.Clear(uint(id))
	}
	s.dirty = s.dirty[:0]
}
