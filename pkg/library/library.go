// Package library enumerates the finite set of candidate statements for a
// given N and configuration: which variants are enabled, which scopes are
// allowed, and the self-reference policy. The library is purely a function
// of (N, config) — deterministic and side-effect free.
package library

import (
	"fmt"
	"sort"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/pkg/statement"
)

// Config controls which statement variants and scopes the library
// enumerates.
type Config struct {
	// EnablePairVariants lists which of I,B,A,X,T,F,N to include. Nil means
	// all seven.
	EnablePairVariants []statement.Code

	// EnableCountVariants lists which of E,M,L to include. Nil means none
	// (count statements are opt-in since they are more verbose to read).
	EnableCountVariants []statement.Code

	// EnableParityVariants lists which of V,O to include. Nil means none.
	EnableParityVariants []statement.Code

	// MaxScopeSize bounds the size of a count/parity scope. 0 means
	// "all villagers" (scope size N) is the only scope considered; a
	// positive value additionally enumerates every contiguous-index
	// subset of that size (kept small deliberately — scope enumeration is
	// combinatorial).
	MaxScopeSize int

	// AllowSpeakerExcludedCounts enables the SUPPLEMENTED ES/MS/LS variants
	// (scope-excludes-speaker count statements). Off by default: spec.md's
	// baseline scenarios never reference them.
	AllowSpeakerExcludedCounts bool
}

// DefaultConfig returns the baseline configuration: all seven pair variants,
// no count or parity variants, full-village scope only.
func DefaultConfig() Config {
	return Config{
		EnablePairVariants: []statement.Code{
			statement.Implication, statement.Equivalence, statement.Disjunction,
			statement.ExclusiveOne, statement.AtMostOne, statement.ConverseImplication,
			statement.Neither,
		},
	}
}

// Entry pairs a library statement with its canonical code, computed once at
// build time since both the cache and the generator key off the code.
type Entry struct {
	Statement statement.Statement
	Code      string
}

// Library is the enumerated, deterministically-ordered candidate set for a
// given N and Config.
type Library struct {
	N       int
	Entries []Entry
}

// Build enumerates the statement library for N under cfg. Deterministic:
// identical (N, cfg) always yields entries in identical order.
func Build(n int, cfg Config) (*Library, error) {
	if n < common.MinN || n > common.MaxN {
		return nil, fmt.Errorf("%w: N=%d outside supported range [%d,%d]", common.ErrInvalidParameter, n, common.MinN, common.MaxN)
	}

	lib := &Library{N: n}

	pairVariants := cfg.EnablePairVariants
	if pairVariants == nil {
		pairVariants = DefaultConfig().EnablePairVariants
	}
	for _, code := range pairVariants {
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a == b {
					continue
				}
				if isCommutative(code) && a > b {
					continue
				}
				st, err := statement.NewPair(code, a, b)
				if err != nil {
					return nil, err
				}
				lib.add(st)
			}
		}
	}

	fullScope := make([]int, n)
	for i := range fullScope {
		fullScope[i] = i
	}

	for _, code := range cfg.EnableCountVariants {
		for _, scope := range scopesFor(n, cfg.MaxScopeSize, fullScope) {
			for k := 0; k <= len(scope); k++ {
				st, err := statement.NewCount(code, scope, k)
				if err != nil {
					return nil, err
				}
				lib.add(st)
			}
			if cfg.AllowSpeakerExcludedCounts {
				for speaker := 0; speaker < n; speaker++ {
					for k := 0; k <= len(scope); k++ {
						st, err := statement.NewSpeakerExcludedCount(code, scope, k, speaker)
						if err != nil {
							continue // k may exceed scope size once speaker excluded
						}
						lib.add(st)
					}
				}
			}
		}
	}

	for _, code := range cfg.EnableParityVariants {
		for _, scope := range scopesFor(n, cfg.MaxScopeSize, fullScope) {
			st, err := statement.NewParity(code, scope)
			if err != nil {
				return nil, err
			}
			lib.add(st)
		}
	}

	sort.Slice(lib.Entries, func(i, j int) bool { return lib.Entries[i].Code < lib.Entries[j].Code })
	return lib, nil
}

func (lib *Library) add(st statement.Statement) {
	lib.Entries = append(lib.Entries, Entry{Statement: st, Code: st.Encode()})
}

func isCommutative(code statement.Code) bool {
	switch code {
	case statement.Equivalence, statement.Disjunction, statement.ExclusiveOne,
		statement.AtMostOne, statement.Neither:
		return true
	default:
		return false
	}
}

// scopesFor returns the scopes to enumerate for a count/parity variant:
// always the full village, plus every contiguous window of size
// maxScopeSize if that is smaller than N (kept deliberately narrow —
// arbitrary subset enumeration is combinatorial and not needed by any
// spec.md scenario).
func scopesFor(n, maxScopeSize int, fullScope []int) [][]int {
	scopes := [][]int{fullScope}
	if maxScopeSize <= 0 || maxScopeSize >= n {
		return scopes
	}
	for start := 0; start+maxScopeSize <= n; start++ {
		window := make([]int, maxScopeSize)
		for i := 0; i < maxScopeSize; i++ {
			window[i] = start + i
		}
		scopes = append(scopes, window)
	}
	return scopes
}

// Lookup returns the entry for a canonical code, if present.
func (lib *Library) Lookup(code string) (Entry, bool) {
	for _, e := range lib.Entries {
		if e.Code == code {
			return e, true
		}
	}
	return Entry{}, false
}
