package statement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asv/wolfpuzzle/internal/common"
)

// Decode parses a canonical statement code, the inverse of Encode. It is
// strict: unknown codes, wrong arity, out-of-range indices, duplicate scope
// members, and non-canonical ordering all fail.
func Decode(code string, n int) (Statement, error) {
	parts := strings.Split(code, "-")
	if len(parts) < 2 {
		return Statement{}, fmt.Errorf("%w: %q has too few fields", common.ErrMalformedCode, code)
	}
	tag := parts[0]
	speakerExclude := false
	if len(tag) == 2 && tag[1] == 'S' {
		speakerExclude = true
		tag = tag[:1]
	}
	if len(tag) != 1 {
		return Statement{}, fmt.Errorf("%w: %q has an invalid tag", common.ErrMalformedCode, code)
	}
	c := Code(tag[0])

	switch {
	case pairCodes[c] || c == Implication || c == ConverseImplication:
		if speakerExclude {
			return Statement{}, fmt.Errorf("%w: %q is not a count variant, cannot be speaker-excluded", common.ErrMalformedCode, code)
		}
		return decodePair(c, parts, n, code)
	case parityCodes[c]:
		if speakerExclude {
			return Statement{}, fmt.Errorf("%w: %q is not a count variant, cannot be speaker-excluded", common.ErrMalformedCode, code)
		}
		return decodeParity(c, parts, n, code)
	case countCodes[c]:
		return decodeCount(c, parts, n, code, speakerExclude)
	default:
		return Statement{}, fmt.Errorf("%w: %q names an unknown variant %q", common.ErrMalformedCode, code, tag)
	}
}

func decodePair(c Code, parts []string, n int, original string) (Statement, error) {
	if len(parts) != 3 {
		return Statement{}, fmt.Errorf("%w: %q wrong arity for pair variant", common.ErrMalformedCode, original)
	}
	a, err := parseIndex(parts[1], n)
	if err != nil {
		return Statement{}, err
	}
	b, err := parseIndex(parts[2], n)
	if err != nil {
		return Statement{}, err
	}
	if a == b {
		return Statement{}, fmt.Errorf("%w: %q has a==b", common.ErrMalformedCode, original)
	}
	if (c == Equivalence || c == Disjunction || c == ExclusiveOne || c == AtMostOne || c == Neither) && a > b {
		return Statement{}, fmt.Errorf("%w: %q is not in canonical a<b order", common.ErrNonCanonicalPair, original)
	}
	return Statement{code: c, a: a, b: b}, nil
}

func decodeParity(c Code, parts []string, n int, original string) (Statement, error) {
	if len(parts) != 2 {
		return Statement{}, fmt.Errorf("%w: %q wrong arity for parity variant", common.ErrMalformedCode, original)
	}
	scope, err := parseScope(parts[1], n, original)
	if err != nil {
		return Statement{}, err
	}
	return Statement{code: c, scope: scope}, nil
}

func decodeCount(c Code, parts []string, n int, original string, speakerExclude bool) (Statement, error) {
	wantParts := 3
	if speakerExclude {
		wantParts = 4
	}
	if len(parts) != wantParts {
		return Statement{}, fmt.Errorf("%w: %q wrong arity for count variant", common.ErrMalformedCode, original)
	}
	scope, err := parseScope(parts[1], n, original)
	if err != nil {
		return Statement{}, err
	}
	k, err := strconv.Atoi(parts[2])
	if err != nil {
		return Statement{}, fmt.Errorf("%w: %q has invalid threshold", common.ErrMalformedCode, original)
	}
	st := Statement{code: c, scope: scope, k: k}
	if speakerExclude {
		speaker, err := parseIndex(parts[3], n)
		if err != nil {
			return Statement{}, err
		}
		st.speakerExclude = true
		st.speaker = speaker

		effLen := len(scope)
		for _, v := range scope {
			if v == speaker {
				effLen--
				break
			}
		}
		if effLen == 0 {
			return Statement{}, fmt.Errorf("%w: %q has an empty scope after excluding speaker", common.ErrMalformedCode, original)
		}
		if k < 0 || k > effLen {
			return Statement{}, fmt.Errorf("%w: %q has invalid threshold", common.ErrMalformedCode, original)
		}
		return st, nil
	}
	if k < 0 || k > len(scope) {
		return Statement{}, fmt.Errorf("%w: %q has invalid threshold", common.ErrMalformedCode, original)
	}
	return st, nil
}

func parseIndex(s string, n int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", common.ErrMalformedCode, s)
	}
	if v < 0 || v >= n {
		return 0, fmt.Errorf("%w: index %d outside [0,%d)", common.ErrOutOfRangeIndex, v, n)
	}
	return v, nil
}

func parseScope(s string, n int, original string) ([]int, error) {
	fields := strings.Split(s, ".")
	scope := make([]int, 0, len(fields))
	seen := make(map[int]bool, len(fields))
	prev := -1
	for _, f := range fields {
		v, err := parseIndex(f, n)
		if err != nil {
			return nil, err
		}
		if seen[v] {
			return nil, fmt.Errorf("%w: %q has duplicate scope member %d", common.ErrMalformedCode, original, v)
		}
		if v <= prev {
			return nil, fmt.Errorf("%w: %q scope not in ascending canonical order", common.ErrNonCanonicalPair, original)
		}
		seen[v] = true
		prev = v
		scope = append(scope, v)
	}
	if len(scope) == 0 {
		return nil, fmt.Errorf("%w: %q has an empty scope", common.ErrMalformedCode, original)
	}
	return scope, nil
}
