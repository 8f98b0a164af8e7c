// Package generator implements the synthesis engine (L4): choose a target
// assignment, then greedily assign statement bundles to speakers so the
// remaining-compatible assignment mask shrinks to exactly the target.
// Backtrack by restarting on dead ends, up to a configured attempt budget.
package generator

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/internal/pool"
	"github.com/asv/wolfpuzzle/pkg/bitmask"
	"github.com/asv/wolfpuzzle/pkg/cache"
	"github.com/asv/wolfpuzzle/pkg/library"
	"github.com/asv/wolfpuzzle/pkg/puzzle"
	"github.com/asv/wolfpuzzle/pkg/semantics"
	"github.com/asv/wolfpuzzle/pkg/statement"
)

// Config controls generation policy.
type Config struct {
	// MinStatements and MaxStatements bound the bundle size per speaker.
	// MinStatements defaults to 1 if zero; MaxStatements defaults to
	// MinStatements if zero, so leaving both zero gives single-statement mode.
	MinStatements, MaxStatements int

	// HasShill enables shill mode (spec.md §4.3).
	HasShill bool

	// ForbidSelfReference excludes candidates where the speaker appears in
	// VariablesInvolved(candidate).
	ForbidSelfReference bool

	// DiversityNoDuplicateCodes rejects reusing an already-assigned
	// statement code for a different speaker.
	DiversityNoDuplicateCodes bool

	// MaxAttempts bounds restarts from Step 1 before failing with
	// common.ErrGenerationExhausted.
	MaxAttempts int

	// RequireAtLeastTwoWerewolves biases target sampling per spec.md §4.4
	// Step 1's default distribution (2 <= |werewolves| <= floor(N/2)+1).
	RequireAtLeastTwoWerewolves bool

	// RequireWerewolfPartialTruth is the SUPPLEMENTED open-question
	// extension: intersect each werewolf speaker's post-mask with
	// semantics.SomeTrueMask, so a werewolf's bundle must contain at least
	// one true statement as well as at least one false one.
	RequireWerewolfPartialTruth bool

	// DifficultyBias is the SUPPLEMENTED tie-break extension: among
	// candidates of equal post-mask popcount, prefer complexity costs
	// closer to this value instead of simply the lowest. Zero disables it
	// (falls back to spec.md's plain lowest-complexity-cost tie-break).
	DifficultyBias int

	// RejectUniformStatementTypes rejects puzzles whose bundle statements
	// are all the same variant code (spec.md §4.4 diversity/difficulty
	// knobs).
	RejectUniformStatementTypes bool
}

func (c Config) normalized() Config {
	if c.MinStatements == 0 {
		c.MinStatements = 1
	}
	if c.MaxStatements == 0 {
		c.MaxStatements = c.MinStatements
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 100
	}
	return c
}

// Generate runs the generation algorithm of spec.md §4.4 and returns a
// Puzzle whose statement bundles admit exactly one (W, shill) solution. A
// run fails only once MaxAttempts is exhausted, returning
// common.ErrGenerationExhausted.
func Generate(n int, cfg Config, lib *library.Library, tc *cache.TruthCache, seed int64) (*puzzle.Puzzle, error) {
	cfg = cfg.normalized()
	if n < common.MinN || n > common.MaxN {
		return nil, fmt.Errorf("%w: N=%d outside supported range", common.ErrInvalidParameter, n)
	}
	if lib.N != n {
		return nil, fmt.Errorf("%w: library built for N=%d, requested N=%d", common.ErrInvalidParameter, lib.N, n)
	}
	if tc.N != n {
		return nil, fmt.Errorf("%w: cache built for N=%d, requested N=%d", common.ErrInvalidParameter, tc.N, n)
	}
	rng := rand.New(rand.NewSource(seed))
	domain := uint(1) << uint(n)

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		p, ok := attemptOnce(n, domain, cfg, lib, tc, rng)
		if ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: after %d attempts", common.ErrGenerationExhausted, cfg.MaxAttempts)
}

func attemptOnce(n int, domain uint, cfg Config, lib *library.Library, tc *cache.TruthCache, rng *rand.Rand) (*puzzle.Puzzle, bool) {
	target, shillTarget := chooseTarget(n, cfg, rng)

	type speakerState struct {
		idx       int
		candidates []library.Entry
	}

	speakers := make([]speakerState, n)
	for i := 0; i < n; i++ {
		speakers[i] = speakerState{idx: i, candidates: candidatesFor(lib, target, shillTarget, cfg, i)}
	}
	// Most-constrained-first: process the speaker with fewest candidates
	// next, recomputed is unnecessary since candidate sets don't change as
	// other speakers are assigned (only the post-mask comparison does).
	sort.SliceStable(speakers, func(a, b int) bool {
		return len(speakers[a].candidates) < len(speakers[b].candidates)
	})

	remaining := initialRemaining(n, domain, cfg)
	bundles := make([][]statement.Statement, n)
	usedCodes := make(map[string]bool)
	scratchPool := pool.NewScratchPool(remaining.Domain())

	for _, sp := range speakers {
		bundle, newRemaining, ok := assignSpeaker(n, domain, cfg, tc, sp.idx, sp.candidates, remaining, target, shillTarget, usedCodes, scratchPool)
		if !ok {
			return nil, false
		}
		bundles[sp.idx] = bundle
		remaining = newRemaining
		for _, st := range bundle {
			usedCodes[st.Encode()] = true
		}
	}

	if cfg.RejectUniformStatementTypes && allSameVariant(bundles) {
		return nil, false
	}

	if remainingPopcount(remaining) != 1 {
		return nil, false
	}

	// remaining was shrunk inside the restricted "at least one werewolf"
	// subspace (initialRemaining excludes assignment 0), so popcount==1
	// there only proves uniqueness among W>=1 candidates. Recompute the
	// unrestricted full-domain intersection — the same per-speaker-compat
	// arithmetic verifier.maskReplay uses independently — and require it to
	// collapse to exactly the chosen target before declaring success;
	// otherwise W=0 may be a second, unchecked solution and this attempt
	// must be retried rather than returned.
	if !fullDomainUniqueSolution(n, domain, tc, bundles, target, shillTarget) {
		return nil, false
	}

	sol := puzzle.Solution{W: target}
	if cfg.HasShill {
		sol.HasShill = true
		sol.Shill = shillTarget
	}
	p, err := puzzle.New(n, bundles, sol)
	if err != nil {
		return nil, false
	}
	return p, true
}

// chooseTarget samples W* (and, in shill mode, S*) per spec.md §4.4 Step 1.
func chooseTarget(n int, cfg Config, rng *rand.Rand) (uint64, int) {
	domain := uint64(1) << uint(n)
	for {
		w := uint64(rng.Int63n(int64(domain)))
		count := popcountU64(w)
		if count == 0 {
			continue
		}
		if cfg.RequireAtLeastTwoWerewolves {
			upper := n/2 + 1
			if count < 2 || int(count) > upper {
				continue
			}
		}
		shill := -1
		if cfg.HasShill {
			nonWerewolves := make([]int, 0, n)
			for i := 0; i < n; i++ {
				if w&(1<<uint(i)) == 0 {
					nonWerewolves = append(nonWerewolves, i)
				}
			}
			if len(nonWerewolves) == 0 {
				continue
			}
			shill = nonWerewolves[rng.Intn(len(nonWerewolves))]
		}
		return w, shill
	}
}

// candidatesFor enumerates library statements consistent with (target,
// shillTarget) for a given speaker, per spec.md §4.4 Step 2.
func candidatesFor(lib *library.Library, target uint64, shillTarget int, cfg Config, speaker int) []library.Entry {
	isLiar := target&(1<<uint(speaker)) != 0 || speaker == shillTarget
	out := make([]library.Entry, 0, len(lib.Entries))
	for _, e := range lib.Entries {
		if e.Statement.Evaluate(target) == isLiar {
			continue // must be false for a liar, true for a truth-teller
		}
		if cfg.ForbidSelfReference {
			selfRef := false
			for _, v := range e.Statement.VariablesInvolved() {
				if v == speaker {
					selfRef = true
					break
				}
			}
			if selfRef {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// initialRemaining is the union of per-shill possibilities consistent with
// "at least one werewolf" (spec.md §4.4 Step 3). In baseline mode it is the
// flat assignment-space mask; in shill mode it is the (assignment, shill)
// pair space, flattened via bitmask.Pair.
func initialRemaining(n int, domain uint, cfg Config) *bitmask.Set {
	if !cfg.HasShill {
		m := bitmask.Full(domain)
		m.ClearBit(0) // assignment 0 has no werewolf at all
		return m
	}
	pairDomain := domain * uint(n)
	m := bitmask.New(pairDomain)
	for a := uint(1); a < domain; a++ { // a==0 has no werewolf
		for s := 0; s < n; s++ {
			if a&(1<<uint(s)) == 0 { // shill must be a non-werewolf
				m.SetBit(bitmask.Pair(a, uint(s), n))
			}
		}
	}
	return m
}

// trial is one candidate statement's effect on a speaker's bundle-in-progress.
type trial struct {
	entry library.Entry
	post  *bitmask.Set
}

// assignSpeaker implements spec.md §4.4 Step 3 for one speaker: grow a
// bundle one statement at a time, each time picking the candidate
// minimizing popcount(post-mask) while keeping the target in it, tied-broken
// by complexity cost then code order. The bundle stops growing once
// MinStatements is satisfied and either MaxStatements is reached or no
// candidate shrinks the mask any further.
func assignSpeaker(n int, domain uint, cfg Config, tc *cache.TruthCache, speaker int, candidates []library.Entry, remaining *bitmask.Set, target uint64, shillTarget int, usedCodes map[string]bool, scratchPool *pool.ScratchPool) ([]statement.Statement, *bitmask.Set, bool) {
	var bundle []statement.Statement
	var bundleCodes []string
	cur := remaining

	for len(bundle) < cfg.MaxStatements {
		best := bestTrial(n, domain, cfg, tc, speaker, candidates, bundleCodes, cur, target, shillTarget, usedCodes, scratchPool)
		if best == nil {
			if len(bundle) >= cfg.MinStatements {
				break
			}
			return nil, nil, false
		}
		if len(bundle) >= cfg.MinStatements && best.post.Popcount() == cur.Popcount() {
			break // no further shrink available; stop once the minimum is met
		}

		bundle = append(bundle, best.entry.Statement)
		bundleCodes = append(bundleCodes, best.entry.Code)
		cur = best.post
	}
	if len(bundle) < cfg.MinStatements {
		return nil, nil, false
	}
	return bundle, cur, true
}

// bestTrial scans every viable candidate statement for extending
// bundleCodes by one more, and returns the one minimizing popcount(post-mask)
// (keeping target in the post-mask), tie-broken by DifficultyBias distance
// (if set) or plain lowest complexity cost, then by lowest code.
func bestTrial(n int, domain uint, cfg Config, tc *cache.TruthCache, speaker int, candidates []library.Entry, bundleCodes []string, cur *bitmask.Set, target uint64, shillTarget int, usedCodes map[string]bool, scratchPool *pool.ScratchPool) *trial {
	scratch := scratchPool.Get()
	defer scratchPool.Put(scratch)

	var best *trial
	for _, cand := range candidates {
		if cfg.DiversityNoDuplicateCodes && usedCodes[cand.Code] {
			continue
		}
		if containsCode(bundleCodes, cand.Code) {
			continue
		}

		trialCodes := append(append([]string(nil), bundleCodes...), cand.Code)
		allTrue, ok := semantics.BundleAllTrueMask(tc, domain, trialCodes)
		if !ok {
			continue
		}
		compat := compatMask(n, domain, cfg, speaker, allTrue, shillTarget)
		if cfg.RequireWerewolfPartialTruth && speakerIsWerewolf(target, speaker) {
			if some, ok := semantics.SomeTrueMask(tc, domain, trialCodes); ok {
				if cfg.HasShill {
					// compat lives in the (assignment, shill) pair space.
					lifted := bitmask.New(domain * uint(n))
					for a := uint(0); a < domain; a++ {
						if some.Test(a) {
							for s := 0; s < n; s++ {
								lifted.SetBit(bitmask.Pair(a, uint(s), n))
							}
						}
					}
					some = lifted
				}
				compat = compat.And(some)
			}
		}
		scratch.SetFromAnd(cur, compat)
		if !keepsTarget(n, cfg, scratch, target, shillTarget) {
			continue
		}

		t := &trial{entry: cand, post: scratch}
		if best == nil || betterTrial(cfg, t, best) {
			best = &trial{entry: cand, post: scratch.Clone()}
		}
	}
	return best
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// betterTrial reports whether a should be preferred over b: first by
// smaller post-mask popcount (spec.md §4.4 Step 3's "maximises elimination"
// rule), then by the configured tie-break, then by code for determinism.
func betterTrial(cfg Config, a, b *trial) bool {
	ap, bp := a.post.Popcount(), b.post.Popcount()
	if ap != bp {
		return ap < bp
	}
	if cfg.DifficultyBias > 0 {
		ad := absInt(a.entry.Statement.ComplexityCost() - cfg.DifficultyBias)
		bd := absInt(b.entry.Statement.ComplexityCost() - cfg.DifficultyBias)
		if ad != bd {
			return ad < bd
		}
	} else {
		ac, bc := a.entry.Statement.ComplexityCost(), b.entry.Statement.ComplexityCost()
		if ac != bc {
			return ac < bc
		}
	}
	return a.entry.Code < b.entry.Code
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func speakerIsWerewolf(target uint64, speaker int) bool {
	return target&(1<<uint(speaker)) != 0
}

// compatMask computes the per-speaker compatibility mask for a candidate
// bundle's all-true mask, accounting for shill mode: in shill mode the
// mask lives in the flattened (assignment, shill) pair space, and the
// speaker's rule differs depending on whether they are the candidate
// shill.
func compatMask(n int, domain uint, cfg Config, speaker int, allTrue *bitmask.Set, shillTarget int) *bitmask.Set {
	if !cfg.HasShill {
		return semantics.SpeakerCompat(domain, speaker, allTrue)
	}
	pairDomain := domain * uint(n)
	out := bitmask.New(pairDomain)
	baseline := semantics.SpeakerCompat(domain, speaker, allTrue)
	shillRule := semantics.ShillCompat(domain, speaker, allTrue)
	for a := uint(0); a < domain; a++ {
		for s := 0; s < n; s++ {
			var ok bool
			if s == speaker {
				ok = shillRule.Test(a)
			} else {
				ok = baseline.Test(a)
			}
			if ok {
				out.SetBit(bitmask.Pair(a, uint(s), n))
			}
		}
	}
	return out
}

func keepsTarget(n int, cfg Config, mask *bitmask.Set, target uint64, shillTarget int) bool {
	if !cfg.HasShill {
		return mask.Test(uint(target))
	}
	return mask.Test(bitmask.Pair(uint(target), uint(shillTarget), n))
}

func remainingPopcount(remaining *bitmask.Set) uint {
	return remaining.Popcount()
}

// fullDomainUniqueSolution recomputes speaker compatibility over the
// unrestricted domain [0, 2^n) — including assignment 0, which
// initialRemaining excludes from the greedy loop's working mask — and
// requires it to collapse to exactly the chosen target (or (target,
// shillTarget) pair in shill mode). This is the same per-speaker-compat
// intersection verifier.maskReplay performs independently; it is
// duplicated here so a collision can be caught and retried before a
// puzzle is ever returned, rather than surfacing later as
// ErrVerifierInconsistency.
func fullDomainUniqueSolution(n int, domain uint, tc *cache.TruthCache, bundles [][]statement.Statement, target uint64, shillTarget int) bool {
	allTrue := make([]*bitmask.Set, n)
	for i, bundle := range bundles {
		codes := make([]string, len(bundle))
		for j, st := range bundle {
			codes[j] = st.Encode()
		}
		mask, ok := semantics.BundleAllTrueMask(tc, domain, codes)
		if !ok {
			return false
		}
		allTrue[i] = mask
	}

	full := bitmask.Full(domain)
	for i, mask := range allTrue {
		full = full.And(semantics.SpeakerCompat(domain, i, mask))
	}
	if shillTarget < 0 {
		if full.Popcount() != 1 {
			return false
		}
		sole, _ := full.SoleMember()
		return uint64(sole) == target
	}

	pairDomain := domain * uint(n)
	pairFull := bitmask.Full(pairDomain)
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
		pairFull = pairFull.And(speakerMask)
	}
	if pairFull.Popcount() != 1 {
		return false
	}
	sole, _ := pairFull.SoleMember()
	w, s := bitmask.DecodePair(sole, n)
	return uint64(w) == target && int(s) == shillTarget
}

func allSameVariant(bundles [][]statement.Statement) bool {
	var first statement.Code
	set := false
	for _, b := range bundles {
		for _, st := range b {
			if !set {
				first = st.Code()
				set = true
				continue
			}
			if st.Code() != first {
				return false
			}
		}
	}
	return true
}

func popcountU64(w uint64) int {
	n := 0
	for w != 0 {
		w &= w - 1
		n++
	}
	return n
}
