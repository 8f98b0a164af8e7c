// Package verifier implements the independent-double-check layer (L5):
// mask-replay against the truth cache, and an exhaustive re-derivation
// straight from each speaker's statements that never touches the cache.
// Both must agree, and both must agree with any solution the puzzle
// already claims, or the result is ErrVerifierInconsistency — a bug, not a
// retryable condition.
package verifier

import (
	"fmt"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/pkg/bitmask"
	"github.com/asv/wolfpuzzle/pkg/cache"
	"github.com/asv/wolfpuzzle/pkg/puzzle"
	"github.com/asv/wolfpuzzle/pkg/semantics"
)

// Verify runs the mask-replay check and the exhaustive statement-level check
// and requires them to agree. shill is -1 when the unique solution is a
// baseline (non-shill) assignment; the puzzle code itself carries no mode
// flag (spec.md §6), so the baseline mode is tried first and the shill mode
// only when the baseline has no unique model. If p.Solution names a target
// (W != 0; the generator never chooses the all-human assignment, so a zero W
// means no stored solution), the derived solution must match it exactly.
// The all-human assignment itself is not excluded: a puzzle whose unique
// model is W=0 verifies with w=0.
func Verify(p *puzzle.Puzzle, tc *cache.TruthCache) (w uint64, shill int, err error) {
	replayW, replayShill, err := maskReplay(p, tc)
	if err != nil {
		return 0, -1, err
	}

	bruteW, bruteShill, err := bruteForce(p)
	if err != nil {
		return 0, -1, err
	}

	if replayW != bruteW || replayShill != bruteShill {
		return 0, -1, fmt.Errorf(
			"%w: mask-replay found (W=%d,S=%d), independent check found (W=%d,S=%d)",
			common.ErrVerifierInconsistency, replayW, replayShill, bruteW, bruteShill,
		)
	}

	if p.Solution.W != 0 {
		wantShill := -1
		if p.Solution.HasShill {
			wantShill = p.Solution.Shill
		}
		if p.Solution.W != replayW || wantShill != replayShill {
			return 0, -1, fmt.Errorf(
				"%w: stored solution (W=%d,S=%d) disagrees with verified (W=%d,S=%d)",
				common.ErrVerifierInconsistency, p.Solution.W, wantShill, replayW, replayShill,
			)
		}
	}

	return replayW, replayShill, nil
}

// maskReplay recomputes "remaining" by intersecting each speaker's cached
// compatibility mask, per spec.md §4.5 check 1. It tries the baseline
// (non-shill) assignment space first, then the flattened (assignment,
// shill) pair space.
func maskReplay(p *puzzle.Puzzle, tc *cache.TruthCache) (uint64, int, error) {
	n := p.N
	domain := uint(1) << uint(n)
	codes := p.Codes()

	allTrue := make([]*bitmask.Set, n)
	for i, bundleCodes := range codes {
		mask, ok := semantics.BundleAllTrueMask(tc, domain, bundleCodes)
		if !ok {
			return 0, -1, fmt.Errorf("%w: speaker %d references a code absent from the cache", common.ErrCacheIncompatible, i)
		}
		allTrue[i] = mask
	}

	remaining := bitmask.Full(domain)
	for i, mask := range allTrue {
		remaining = remaining.And(semantics.SpeakerCompat(domain, i, mask))
	}
	if remaining.Popcount() == 1 {
		sole, _ := remaining.SoleMember()
		return uint64(sole), -1, nil
	}

	pairDomain := domain * uint(n)
	pairRemaining := bitmask.Full(pairDomain)
	for i, mask := range allTrue {
		baseline := semantics.SpeakerCompat(domain, i, mask)
		shillRule := semantics.ShillCompat(domain, i, mask)
		speakerMask := bitmask.New(pairDomain)
		for a := uint(0); a < domain; a++ {
			for s := 0; s < n; s++ {
				ok := baseline.Test(a)
				if s == i {
					ok = shillRule.Test(a)
				}
				if ok {
					speakerMask.SetBit(bitmask.Pair(a, uint(s), n))
				}
			}
		}
		pairRemaining = pairRemaining.And(speakerMask)
	}
	if pairRemaining.Popcount() == 1 {
		sole, _ := pairRemaining.SoleMember()
		w, s := bitmask.DecodePair(sole, n)
		return uint64(w), int(s), nil
	}

	return 0, -1, fmt.Errorf("%w: mask-replay finds no unique solution in either mode", common.ErrVerifierInconsistency)
}

// bruteForce re-derives the solution by evaluating each speaker's bundle
// directly against every candidate assignment, never touching the cache —
// the independent check spec.md §4.5 requires alongside mask-replay. For
// N within the supported bitmask range this exhaustive scan plays the role
// spec.md assigns to an SMT solve-and-block loop: it enumerates every model,
// which is equivalent to checking SAT-with-expected-model followed by
// UNSAT-after-blocking it, without depending on an external solver.
func bruteForce(p *puzzle.Puzzle) (uint64, int, error) {
	n := p.N
	domain := uint64(1) << uint(n)

	var baselineSolutions []uint64
	for w := uint64(0); w < domain; w++ {
		if consistent(p, w, -1) {
			baselineSolutions = append(baselineSolutions, w)
		}
	}
	if len(baselineSolutions) == 1 {
		return baselineSolutions[0], -1, nil
	}

	type pair struct {
		w uint64
		s int
	}
	var shillSolutions []pair
	for w := uint64(0); w < domain; w++ {
		for s := 0; s < n; s++ {
			if w&(uint64(1)<<uint(s)) != 0 {
				continue // the shill can never be a werewolf
			}
			if consistent(p, w, s) {
				shillSolutions = append(shillSolutions, pair{w, s})
			}
		}
	}
	if len(shillSolutions) == 1 {
		return shillSolutions[0].w, shillSolutions[0].s, nil
	}

	return 0, -1, fmt.Errorf(
		"%w: independent check finds no unique model (baseline candidates=%d, shill candidates=%d)",
		common.ErrVerifierInconsistency, len(baselineSolutions), len(shillSolutions),
	)
}

// consistent reports whether assignment w (with candidate shill, or -1 for
// baseline mode) satisfies every speaker's role-semantics constraint
// (spec.md §4.3): a liar's bundle has at least one false statement; a
// truth-teller's bundle is all true.
func consistent(p *puzzle.Puzzle, w uint64, shill int) bool {
	for i, bundle := range p.Bundles {
		isWerewolf := w&(uint64(1)<<uint(i)) != 0
		isLiar := isWerewolf || i == shill

		allTrue := true
		for _, st := range bundle {
			if !st.Evaluate(w) {
				allTrue = false
				break
			}
		}
		if isLiar == allTrue {
			return false
		}
	}
	return true
}
