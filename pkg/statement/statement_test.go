package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	// W = (T,T,T,F,F,F) packed as bits 0,1,2 set.
	w := uint64(0b000111)

	tests := []struct {
		name string
		st   Statement
		want bool
	}{
		{"exact count 3 of all six is true", mustCount(t, ExactCount, []int{0, 1, 2, 3, 4, 5}, 3), true},
		{"exact count 3 of first five villagers is true", mustCount(t, ExactCount, []int{0, 1, 2, 3, 4}, 3), true},
		{"xor villager 2 and 4 with 2 werewolf 4 not", mustPair(t, ExclusiveOne, 2, 4), true},
		{"neither 3 nor 4 (both non-werewolves)", mustPair(t, Neither, 3, 4), true},
		{"neither 0 nor 1 (both werewolves)", mustPair(t, Neither, 0, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.st.Evaluate(w))
		})
	}
}

func TestEvaluateXorBothTrue(t *testing.T) {
	w := uint64(0b010100) // bits 2 and 4 set
	st := mustPair(t, ExclusiveOne, 2, 4)
	assert.False(t, st.Evaluate(w), "exclusive-one must be false when both are werewolves")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const n = 6
	sts := []Statement{
		mustPair(t, Implication, 3, 1),
		mustPair(t, Neither, 0, 2),
		mustPair(t, ExclusiveOne, 1, 3),
		mustPair(t, ConverseImplication, 5, 0),
		mustCount(t, ExactCount, []int{0, 1, 2, 3, 5}, 4),
		mustPair(t, Equivalence, 0, 3),
	}
	for _, st := range sts {
		code := st.Encode()
		decoded, err := Decode(code, n)
		require.NoError(t, err)
		assert.Equal(t, code, decoded.Encode(), "round trip must preserve canonical code")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []string{
		"Z-0-1",         // unknown code
		"I-0",           // wrong arity
		"B-2-0",         // non-canonical pair order
		"I-0-9",         // out of range
		"E-0.0.1-2",     // duplicate scope member
		"ES-0.1.2.3-4-0", // k=4 exceeds the speaker-excluded effective scope size (3)
	}
	for _, c := range cases {
		_, err := Decode(c, 6)
		assert.Error(t, err, "expected decode error for %q", c)
	}
}

func TestDecodeSpeakerExcludedCountValidatesEffectiveScope(t *testing.T) {
	// Speaker 0 is a member of the named scope, so the effective
	// (speaker-excluded) scope has 3 members; k=3 is the max valid
	// threshold and k=4 (the full named scope's size) must be rejected.
	_, err := Decode("ES-0.1.2.3-3-0", 6)
	require.NoError(t, err)

	_, err = Decode("ES-0.1.2.3-4-0", 6)
	assert.Error(t, err)
}

func TestSpeakerExcludedCountEncodeDecodeRoundTrip(t *testing.T) {
	const n = 6
	st, err := NewSpeakerExcludedCount(ExactCount, []int{0, 1, 2, 3}, 2, 0)
	require.NoError(t, err)

	code := st.Encode()
	decoded, err := Decode(code, n)
	require.NoError(t, err)
	assert.Equal(t, code, decoded.Encode())
}

func TestExactCountExampleFromSpec(t *testing.T) {
	st := mustCount(t, ExactCount, []int{0, 1, 2, 3, 4, 5}, 3)
	assert.True(t, st.Evaluate(uint64(0b000111)))  // (T,T,T,F,F,F)
	assert.False(t, st.Evaluate(uint64(0b000011))) // (T,T,F,F,F,F)
}

func mustPair(t *testing.T, code Code, a, b int) Statement {
	t.Helper()
	st, err := NewPair(code, a, b)
	require.NoError(t, err)
	return st
}

func mustCount(t *testing.T, code Code, scope []int, k int) Statement {
	t.Helper()
	st, err := NewCount(code, scope, k)
	require.NoError(t, err)
	return st
}
