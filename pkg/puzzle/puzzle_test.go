package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/pkg/statement"
)

func mustPair(t *testing.T, code statement.Code, a, b int) statement.Statement {
	t.Helper()
	st, err := statement.NewPair(code, a, b)
	require.NoError(t, err)
	return st
}

func TestEncodeMatchesSpecExample(t *testing.T) {
	const n = 6
	bundles := [][]statement.Statement{
		{mustPair(t, statement.Implication, 3, 1)},
		{mustPair(t, statement.Neither, 0, 2)},
		{mustPair(t, statement.ExclusiveOne, 1, 3)},
		{mustPair(t, statement.ConverseImplication, 5, 0)},
		{mustCount(t, []int{0, 1, 2, 3, 5}, 4)},
		{mustPair(t, statement.Equivalence, 0, 3)},
	}
	p, err := New(n, bundles, Solution{})
	require.NoError(t, err)

	got := Encode(p)
	want := "I-3-1_N-0-2_X-1-3_F-5-0_E-0.1.2.3.5-4_B-0-3"
	assert.Equal(t, want, got)
}

func mustCount(t *testing.T, scope []int, k int) statement.Statement {
	t.Helper()
	st, err := statement.NewCount(statement.ExactCount, scope, k)
	require.NoError(t, err)
	return st
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	const n = 6
	code := "I-3-1_N-0-2_X-1-3_F-5-0_E-0.1.2.3.5-4_B-0-3"
	p, err := Decode(code, n)
	require.NoError(t, err)
	assert.Equal(t, code, Encode(p))
}

func TestDecodeRejectsWrongSegmentCount(t *testing.T) {
	_, err := Decode("I-3-1_N-0-2", 6)
	assert.ErrorIs(t, err, common.ErrMalformedPuzzle)
}

func TestDecodeMultiStatementBundle(t *testing.T) {
	const n = 4
	code := "I-0-1+B-2-3_N-0-2_X-1-3_F-2-0"
	p, err := Decode(code, n)
	require.NoError(t, err)
	require.Len(t, p.Bundles[0], 2)
	assert.Equal(t, code, Encode(p))
}

func TestNewAndDecodeAssignDistinctIDs(t *testing.T) {
	const n = 6
	bundles := [][]statement.Statement{
		{mustPair(t, statement.Implication, 3, 1)},
		{mustPair(t, statement.Neither, 0, 2)},
		{mustPair(t, statement.ExclusiveOne, 1, 3)},
		{mustPair(t, statement.ConverseImplication, 5, 0)},
		{mustCount(t, []int{0, 1, 2, 3, 5}, 4)},
		{mustPair(t, statement.Equivalence, 0, 3)},
	}
	p1, err := New(n, bundles, Solution{})
	require.NoError(t, err)
	p2, err := New(n, bundles, Solution{})
	require.NoError(t, err)

	assert.NotEmpty(t, p1.ID)
	assert.NotEmpty(t, p2.ID)
	assert.NotEqual(t, p1.ID, p2.ID)

	decoded, err := Decode(Encode(p1), n)
	require.NoError(t, err)
	assert.NotEmpty(t, decoded.ID)
	assert.NotEqual(t, p1.ID, decoded.ID)
}
