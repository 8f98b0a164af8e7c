// Package puzzleapi is the thin façade spec.md §6 describes as the core's
// programmatic surface: the CLI front ends and the HTTP collaborator call
// these functions for library, cache, generation, verification and puzzle
// code operations. They still import pkg/library and pkg/generator for
// configuration types (and cmd/wolfgen pkg/cache and pkg/puzzle for types),
// and pkg/batch calls pkg/generator.Generate directly.
package puzzleapi

import (
	"fmt"
	"io"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/pkg/cache"
	"github.com/asv/wolfpuzzle/pkg/generator"
	"github.com/asv/wolfpuzzle/pkg/library"
	"github.com/asv/wolfpuzzle/pkg/puzzle"
	"github.com/asv/wolfpuzzle/pkg/statement"
	"github.com/asv/wolfpuzzle/pkg/verifier"
)

// BuildLibrary enumerates the candidate statement library for a village of
// size n under cfg.
func BuildLibrary(n int, cfg library.Config) (*library.Library, error) {
	return library.Build(n, cfg)
}

// BuildCache precomputes the truth mask of every statement in lib. n must
// equal lib.N; it is accepted explicitly (rather than inferred) to match
// spec.md §6's build_cache(Library, N) signature.
func BuildCache(lib *library.Library, n int) (*cache.TruthCache, error) {
	if lib.N != n {
		return nil, fmt.Errorf("%w: library built for N=%d, requested N=%d", common.ErrInvalidParameter, lib.N, n)
	}
	return cache.Build(lib)
}

// SaveCache serializes tc to the self-describing text format (spec.md §6).
func SaveCache(tc *cache.TruthCache, w io.Writer) error {
	return tc.Save(w)
}

// LoadCache parses a truth-cache file, validating it against n and lib.
func LoadCache(r io.Reader, n int, lib *library.Library) (*cache.TruthCache, error) {
	return cache.Load(r, n, lib)
}

// Generate runs the generator and returns a puzzle with a guaranteed unique
// solution, or common.ErrGenerationExhausted once cfg.MaxAttempts restarts
// are spent.
func Generate(n int, cfg generator.Config, tc *cache.TruthCache, seed int64) (*puzzle.Puzzle, error) {
	lib, err := library.Build(n, library.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return generator.Generate(n, cfg, lib, tc, seed)
}

// GenerateWithLibrary is Generate for a caller that already built (and may
// reuse) a specific library rather than the default configuration.
func GenerateWithLibrary(n int, cfg generator.Config, lib *library.Library, tc *cache.TruthCache, seed int64) (*puzzle.Puzzle, error) {
	return generator.Generate(n, cfg, lib, tc, seed)
}

// Verify runs both independent verification checks (spec.md §4.5) and
// returns the puzzle's unique solution. shill is -1 outside shill mode.
func Verify(p *puzzle.Puzzle, tc *cache.TruthCache) (w uint64, shill int, err error) {
	return verifier.Verify(p, tc)
}

// EncodePuzzle renders the compact puzzle code (spec.md §6).
func EncodePuzzle(p *puzzle.Puzzle) string {
	return puzzle.Encode(p)
}

// DecodePuzzle parses a compact puzzle code for a village of size n.
func DecodePuzzle(s string, n int) (*puzzle.Puzzle, error) {
	return puzzle.Decode(s, n)
}

// EvaluateStatement evaluates a single statement against assignment w.
func EvaluateStatement(s statement.Statement, w uint64) bool {
	return s.Evaluate(w)
}
