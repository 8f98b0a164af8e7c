package pool

import (
	"sync"

	"github.com/asv/wolfpuzzle/pkg/bitmask"
)

// ScratchPool hands out reusable assignment-space bitmasks of a fixed
// domain, avoiding a fresh allocation on every candidate-statement trial in
// the generator's greedy selection loop.
type ScratchPool struct {
	domain uint
	sets   sync.Pool
}

// NewScratchPool creates a pool of scratch bitmasks over [0, domain).
func NewScratchPool(domain uint) *ScratchPool {
	p := &ScratchPool{domain: domain}
	p.sets = sync.Pool{
		New: func() interface{} {
			return bitmask.New(domain)
		},
	}
	return p
}

// Get returns a scratch Set with unspecified prior contents; callers must
// overwrite it (e.g. via SetFromAnd) before reading.
func (p *ScratchPool) Get() *bitmask.Set {
	return p.sets.Get().(*bitmask.Set)
}

// Put returns a scratch Set to the pool for reuse.
func (p *ScratchPool) Put(s *bitmask.Set) {
	if s != nil && s.Domain() == p.domain {
		p.sets.Put(s)
	}
}
