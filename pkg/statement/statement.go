// Package statement implements the finite library of boolean predicates a
// villager can utter about the role vector W (L1 in the design: the
// statement model). Each predicate is a tagged variant — no virtual
// dispatch, no heap allocation per statement — supporting evaluation on an
// assignment, a compact canonical code, and a display form.
package statement

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/asv/wolfpuzzle/internal/common"
)

// Code identifies a statement variant.
type Code byte

// The closed set of statement variants. See the data-model table: pair
// variants (I,B,A,X,T,F,N) take two villager indices; count variants
// (E,M,L,V,O) take a scope and, except for parity, a threshold k.
const (
	Implication          Code = 'I' // W[a] => W[b]
	Equivalence          Code = 'B' // W[a] = W[b]
	Disjunction          Code = 'A' // W[a] v W[b]
	ExclusiveOne         Code = 'X' // W[a] xor W[b]
	AtMostOne            Code = 'T' // not (W[a] and W[b])
	ConverseImplication  Code = 'F' // not W[a] => W[b]
	Neither              Code = 'N' // not W[a] and not W[b]
	ExactCount           Code = 'E' // sum(scope) = k
	UpperBoundCount      Code = 'M' // sum(scope) <= k
	LowerBoundCount      Code = 'L' // sum(scope) >= k
	EvenParity           Code = 'V' // sum(scope) mod 2 == 0
	OddParity            Code = 'O' // sum(scope) mod 2 == 1
)

// pairCodes are the two-index, commutative-canonical-order variants.
var pairCodes = map[Code]bool{
	Equivalence: true, Disjunction: true, ExclusiveOne: true,
	AtMostOne: true, Neither: true,
}

// countCodes are the scope+threshold variants.
var countCodes = map[Code]bool{
	ExactCount: true, UpperBoundCount: true, LowerBoundCount: true,
}

// parityCodes are the scope-only (no threshold) variants.
var parityCodes = map[Code]bool{
	EvenParity: true, OddParity: true,
}

// Statement is a single boolean predicate over a role vector. The zero value
// is not meaningful; construct via the New* functions or Decode.
type Statement struct {
	code           Code
	a, b           int   // pair variants
	scope          []int // count/parity variants, sorted ascending, distinct
	k              int   // threshold for E/M/L
	speakerExclude bool  // ES/MS/LS: scope excludes the speaker
	speaker        int   // only meaningful when speakerExclude
}

// NewPair constructs a pair-variant statement (I, B, A, X, T, F, N).
// For commutative variants (B, A, X, T, N), a and b are canonicalized to
// a<b; for I and F, order is meaningful and preserved.
func NewPair(code Code, a, b int) (Statement, error) {
	if a == b {
		return Statement{}, fmt.Errorf("%w: pair statement with a==b", common.ErrInvalidParameter)
	}
	if a < 0 || b < 0 {
		return Statement{}, fmt.Errorf("%w: negative villager index", common.ErrOutOfRangeIndex)
	}
	switch code {
	case Implication, ConverseImplication:
		// order carries meaning; do not canonicalize
	case Equivalence, Disjunction, ExclusiveOne, AtMostOne, Neither:
		if a > b {
			a, b = b, a
		}
	default:
		return Statement{}, fmt.Errorf("%w: code %q is not a pair variant", common.ErrMalformedCode, string(code))
	}
	return Statement{code: code, a: a, b: b}, nil
}

// NewCount constructs a count-variant statement (E, M, L). scope is copied,
// sorted, and deduplicated; duplicates collapse silently the way a set
// would, since the canonical form never distinguishes multiplicity.
func NewCount(code Code, scope []int, k int) (Statement, error) {
	if code != ExactCount && code != UpperBoundCount && code != LowerBoundCount {
		return Statement{}, fmt.Errorf("%w: code %q is not a count variant", common.ErrMalformedCode, string(code))
	}
	sc := canonicalScope(scope)
	if len(sc) == 0 {
		return Statement{}, fmt.Errorf("%w: empty scope", common.ErrInvalidParameter)
	}
	if k < 0 || k > len(sc) {
		return Statement{}, fmt.Errorf("%w: threshold %d out of range for scope size %d", common.ErrInvalidParameter, k, len(sc))
	}
	return Statement{code: code, scope: sc, k: k}, nil
}

// NewParity constructs a parity-variant statement (V, O). No threshold.
func NewParity(code Code, scope []int) (Statement, error) {
	if code != EvenParity && code != OddParity {
		return Statement{}, fmt.Errorf("%w: code %q is not a parity variant", common.ErrMalformedCode, string(code))
	}
	sc := canonicalScope(scope)
	if len(sc) == 0 {
		return Statement{}, fmt.Errorf("%w: empty scope", common.ErrInvalidParameter)
	}
	return Statement{code: code, scope: sc}, nil
}

// NewSpeakerExcludedCount constructs one of the SUPPLEMENTED scope-excludes-
// speaker variants (ES, MS, LS). scope is the full named set; speaker is
// removed from it before evaluation if present.
func NewSpeakerExcludedCount(code Code, scope []int, k int, speaker int) (Statement, error) {
	if code != ExactCount && code != UpperBoundCount && code != LowerBoundCount {
		return Statement{}, fmt.Errorf("%w: code %q is not a count variant", common.ErrMalformedCode, string(code))
	}
	sc := canonicalScope(scope)
	eff := make([]int, 0, len(sc))
	for _, v := range sc {
		if v != speaker {
			eff = append(eff, v)
		}
	}
	if len(eff) == 0 {
		return Statement{}, fmt.Errorf("%w: empty scope after excluding speaker", common.ErrInvalidParameter)
	}
	if k < 0 || k > len(eff) {
		return Statement{}, fmt.Errorf("%w: threshold %d out of range for scope size %d", common.ErrInvalidParameter, k, len(eff))
	}
	return Statement{code: code, scope: sc, k: k, speakerExclude: true, speaker: speaker}, nil
}

func canonicalScope(scope []int) []int {
	seen := make(map[int]bool, len(scope))
	out := make([]int, 0, len(scope))
	for _, v := range scope {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// Code returns the statement's variant code.
func (s Statement) Code() Code { return s.code }

// effectiveScope returns the scope actually summed over, honoring
// speakerExclude.
func (s Statement) effectiveScope() []int {
	if !s.speakerExclude {
		return s.scope
	}
	out := make([]int, 0, len(s.scope))
	for _, v := range s.scope {
		if v != s.speaker {
			out = append(out, v)
		}
	}
	return out
}

// Evaluate reports whether the statement holds for role vector w (bit i of
// w is W[i], villager i is a werewolf). Pure, total, constant-time for pair
// variants, O(|scope|) for count/parity variants.
func (s Statement) Evaluate(w uint64) bool {
	bit := func(i int) bool { return w&(uint64(1)<<uint(i)) != 0 }
	switch s.code {
	case Implication:
		return !bit(s.a) || bit(s.b)
	case Equivalence:
		return bit(s.a) == bit(s.b)
	case Disjunction:
		return bit(s.a) || bit(s.b)
	case ExclusiveOne:
		return bit(s.a) != bit(s.b)
	case AtMostOne:
		return !(bit(s.a) && bit(s.b))
	case ConverseImplication:
		return bit(s.a) || bit(s.b)
	case Neither:
		return !bit(s.a) && !bit(s.b)
	case ExactCount, UpperBoundCount, LowerBoundCount:
		n := s.countTrue(bit)
		switch s.code {
		case ExactCount:
			return n == s.k
		case UpperBoundCount:
			return n <= s.k
		default:
			return n >= s.k
		}
	case EvenParity, OddParity:
		n := s.countTrue(bit)
		if s.code == EvenParity {
			return n%2 == 0
		}
		return n%2 == 1
	default:
		panic(fmt.Sprintf("statement: unknown code %q", string(s.code)))
	}
}

func (s Statement) countTrue(bit func(int) bool) int {
	n := 0
	for _, i := range s.effectiveScope() {
		if bit(i) {
			n++
		}
	}
	return n
}

// VariablesInvolved returns the set of villager indices the statement
// references, used by generation policy (e.g. forbid self-reference).
func (s Statement) VariablesInvolved() []int {
	switch {
	case pairCodes[s.code] || s.code == Implication || s.code == ConverseImplication:
		return []int{s.a, s.b}
	default:
		out := append([]int(nil), s.effectiveScope()...)
		if s.speakerExclude {
			out = append(out, s.speaker)
		}
		return out
	}
}

// ComplexityCost is a small positive integer biasing search toward simpler
// puzzles; used only as a tie-breaker in the generator.
func (s Statement) ComplexityCost() int {
	switch s.code {
	case Implication, Equivalence, Disjunction, ConverseImplication:
		return 1
	case ExclusiveOne, AtMostOne:
		return 2
	case Neither:
		return 3
	case EvenParity, OddParity:
		return 2*len(s.effectiveScope()) + 1
	case ExactCount, UpperBoundCount, LowerBoundCount:
		return 2*len(s.effectiveScope()) + s.k
	default:
		return 1
	}
}

// Encode renders the statement's canonical code: CODE-ARG[-ARG], pair args
// "a-b", scope a dot-joined sorted list, count a decimal integer. Parity
// variants omit the count field. Speaker-excluded count variants append the
// speaker index as a trailing field.
func (s Statement) Encode() string {
	var sb strings.Builder
	code := string(s.code)
	if s.speakerExclude {
		code += "S"
	}
	sb.WriteString(code)
	switch {
	case pairCodes[s.code] || s.code == Implication || s.code == ConverseImplication:
		fmt.Fprintf(&sb, "-%d-%d", s.a, s.b)
	case parityCodes[s.code]:
		sb.WriteString("-")
		sb.WriteString(joinInts(s.scope))
	case countCodes[s.code]:
		sb.WriteString("-")
		sb.WriteString(joinInts(s.scope))
		fmt.Fprintf(&sb, "-%d", s.k)
		if s.speakerExclude {
			fmt.Fprintf(&sb, "-%d", s.speaker)
		}
	}
	return sb.String()
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Display renders a short human-readable rendition of the statement, used
// only for debugging; natural-language rendering proper is an external
// collaborator's concern (spec §1).
func (s Statement) Display() string {
	name := func(i int) string { return fmt.Sprintf("villager %d", i) }
	switch s.code {
	case Implication:
		return fmt.Sprintf("if %s is a werewolf, then %s is a werewolf", name(s.a), name(s.b))
	case Equivalence:
		return fmt.Sprintf("%s and %s are the same (both werewolves or both not)", name(s.a), name(s.b))
	case Disjunction:
		return fmt.Sprintf("%s or %s is a werewolf (or both)", name(s.a), name(s.b))
	case ExclusiveOne:
		return fmt.Sprintf("exactly one of %s and %s is a werewolf", name(s.a), name(s.b))
	case AtMostOne:
		return fmt.Sprintf("at most one of %s and %s is a werewolf", name(s.a), name(s.b))
	case ConverseImplication:
		return fmt.Sprintf("if %s is not a werewolf, then %s is a werewolf", name(s.a), name(s.b))
	case Neither:
		return fmt.Sprintf("neither %s nor %s is a werewolf", name(s.a), name(s.b))
	case ExactCount:
		return fmt.Sprintf("exactly %d of %v are werewolves", s.k, s.effectiveScope())
	case UpperBoundCount:
		return fmt.Sprintf("at most %d of %v are werewolves", s.k, s.effectiveScope())
	case LowerBoundCount:
		return fmt.Sprintf("at least %d of %v are werewolves", s.k, s.effectiveScope())
	case EvenParity:
		return fmt.Sprintf("an even number of %v are werewolves", s.effectiveScope())
	case OddParity:
		return fmt.Sprintf("an odd number of %v are werewolves", s.effectiveScope())
	default:
		return s.Encode()
	}
}
