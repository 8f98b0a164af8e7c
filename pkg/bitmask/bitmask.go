// Package bitmask implements the BitSet2N abstraction described in the
// design notes: a fixed-width, word-array-backed set of assignment indices
// over [0, 2^N). It is the single representation used for truth masks,
// per-speaker compatibility masks, and the generator's shrinking "remaining"
// set.
package bitmask

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Set is an assignment-space bitmask over [0, domain). domain is normally
// 2^N (or 2^N*N in shill mode, where an element encodes an (assignment,
// shill) pair — see Pair/DecodePair).
type Set struct {
	bits   *bitset.BitSet
	domain uint
}

// New returns an empty Set over [0, domain).
func New(domain uint) *Set {
	return &Set{bits: bitset.New(domain), domain: domain}
}

// Full returns a Set with every element of [0, domain) present.
func Full(domain uint) *Set {
	s := New(domain)
	for i := uint(0); i < domain; i++ {
		s.bits.Set(i)
	}
	return s
}

// Domain reports the size of the universe this set is defined over.
func (s *Set) Domain() uint { return s.domain }

// Test reports whether i is a member.
func (s *Set) Test(i uint) bool { return s.bits.Test(i) }

// SetBit adds i to the set and returns the receiver for chaining.
func (s *Set) SetBit(i uint) *Set {
	s.bits.Set(i)
	return s
}

// ClearBit removes i from the set and returns the receiver for chaining.
func (s *Set) ClearBit(i uint) *Set {
	s.bits.Clear(i)
	return s
}

// Popcount returns the number of members.
func (s *Set) Popcount() uint { return s.bits.Count() }

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{bits: s.bits.Clone(), domain: s.domain}
}

// And returns the intersection of s and other as a new Set.
func (s *Set) And(other *Set) *Set {
	return &Set{bits: s.bits.Intersection(other.bits), domain: s.domain}
}

// AndInPlace intersects other into s.
func (s *Set) AndInPlace(other *Set) {
	s.bits.InPlaceIntersection(other.bits)
}

// SetFromAnd overwrites s's contents with a ∩ b, avoiding an allocation.
// Used by the generator's candidate-evaluation loop together with a
// internal/pool.ScratchPool-provided s.
func (s *Set) SetFromAnd(a, b *Set) {
	for i := uint(0); i < s.domain; i++ {
		s.bits.SetTo(i, a.bits.Test(i) && b.bits.Test(i))
	}
}

// Or returns the union of s and other as a new Set.
func (s *Set) Or(other *Set) *Set {
	return &Set{bits: s.bits.Union(other.bits), domain: s.domain}
}

// Not returns the complement of s within [0, domain). Complement is taken
// explicitly against domain rather than via the library's own Complement,
// which flips out to the underlying word boundary rather than to domain.
func (s *Set) Not() *Set {
	c := bitset.New(s.domain)
	for i := uint(0); i < s.domain; i++ {
		if !s.bits.Test(i) {
			c.Set(i)
		}
	}
	return &Set{bits: c, domain: s.domain}
}

// Equal reports whether s and other have identical membership.
func (s *Set) Equal(other *Set) bool {
	return s.bits.Equal(other.bits)
}

// SoleMember returns the single member of s and true, if Popcount()==1.
// Otherwise it returns (0, false).
func (s *Set) SoleMember() (uint, bool) {
	if s.bits.Count() != 1 {
		return 0, false
	}
	i, ok := s.bits.NextSet(0)
	return i, ok
}

// Members returns every member index in ascending order. Intended for
// tests and small diagnostic domains; not used on generator hot paths.
func (s *Set) Members() []uint {
	out := make([]uint, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, i)
	}
	return out
}

func (s *Set) String() string {
	return fmt.Sprintf("Set{domain=%d, popcount=%d}", s.domain, s.bits.Count())
}

// Pair encodes an (assignment, shill) pair into the flattened index space
// used by shill-mode masks: index = assignment*N + shill.
func Pair(assignment uint, shill uint, n int) uint {
	return assignment*uint(n) + shill
}

// DecodePair is the inverse of Pair.
func DecodePair(index uint, n int) (assignment uint, shill uint) {
	return index / uint(n), index % uint(n)
}
