// Package puzzle defines the Puzzle data type — a vector of one statement
// bundle per speaker, plus optional solution metadata — and its compact
// wire encoding (spec.md §6): speakers separated by "_", a speaker's
// bundle statements separated by "+", statement fields separated by "-",
// scope elements by ".". Puzzles are immutable once constructed.
package puzzle

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/pkg/statement"
)

// Solution records the ground-truth role vector and, in shill mode, the
// shill index. It is metadata: the puzzle's meaning is defined entirely by
// its statement bundles and N; Solution is what the generator claims and
// the verifier checks.
type Solution struct {
	W uint64

	// HasShill reports whether Shill is meaningful.
	HasShill bool
	Shill    int
}

// Puzzle is a vector of length N where entry i is the bundle of statements
// spoken by villager i. Single-statement puzzles are the bundle-size-1
// case.
type Puzzle struct {
	N       int
	Bundles [][]statement.Statement

	// ID is an opaque identifier useful to a caller building share URLs; it
	// plays no role in puzzle semantics or in EncodePuzzle/DecodePuzzle.
	ID string

	Solution Solution
}

// New constructs an immutable Puzzle from per-speaker bundles. len(bundles)
// must equal n.
func New(n int, bundles [][]statement.Statement, sol Solution) (*Puzzle, error) {
	if len(bundles) != n {
		return nil, fmt.Errorf("%w: have %d speaker bundles, want %d", common.ErrInvalidParameter, len(bundles), n)
	}
	for _, b := range bundles {
		if len(b) == 0 {
			return nil, fmt.Errorf("%w: a speaker has an empty bundle", common.ErrInvalidParameter)
		}
	}
	cp := make([][]statement.Statement, n)
	for i, b := range bundles {
		cp[i] = append([]statement.Statement(nil), b...)
	}
	return &Puzzle{N: n, Bundles: cp, ID: uuid.NewString(), Solution: sol}, nil
}

// Codes returns, per speaker, the canonical codes of their bundle.
func (p *Puzzle) Codes() [][]string {
	out := make([][]string, len(p.Bundles))
	for i, b := range p.Bundles {
		codes := make([]string, len(b))
		for j, st := range b {
			codes[j] = st.Encode()
		}
		out[i] = codes
	}
	return out
}

// Encode renders the compact puzzle code from spec.md §6: one segment per
// speaker, speakers joined by "_". A speaker with a single statement
// renders as that statement's own code; with multiple statements (a
// bundle), the statements are joined by "+" within the speaker's segment.
func Encode(p *Puzzle) string {
	segments := make([]string, len(p.Bundles))
	for i, b := range p.Bundles {
		codes := make([]string, len(b))
		for j, st := range b {
			codes[j] = st.Encode()
		}
		segments[i] = strings.Join(codes, "+")
	}
	return strings.Join(segments, "_")
}

// Decode parses a compact puzzle code for a village of size n. It fails
// with common.ErrMalformedPuzzle if the number of underscore-separated
// segments does not equal n, or if any segment's statement codes fail to
// parse.
func Decode(s string, n int) (*Puzzle, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty puzzle code", common.ErrMalformedPuzzle)
	}
	segments := strings.Split(s, "_")
	if len(segments) != n {
		return nil, fmt.Errorf("%w: %d speaker segments, want %d", common.ErrMalformedPuzzle, len(segments), n)
	}
	bundles := make([][]statement.Statement, n)
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: speaker %d has an empty segment", common.ErrMalformedPuzzle, i)
		}
		codes := strings.Split(seg, "+")
		bundle := make([]statement.Statement, len(codes))
		for j, code := range codes {
			st, err := statement.Decode(code, n)
			if err != nil {
				return nil, fmt.Errorf("%w: speaker %d statement %d: %v", common.ErrMalformedPuzzle, i, j, err)
			}
			bundle[j] = st
		}
		bundles[i] = bundle
	}
	// Decode carries no solution metadata: the compact code does not encode
	// W* or the shill identity (spec.md §6); callers recover it via Verify.
	return &Puzzle{N: n, Bundles: bundles, ID: uuid.NewString()}, nil
}
