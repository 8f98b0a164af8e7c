package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asv/wolfpuzzle/pkg/bitmask"
	"github.com/asv/wolfpuzzle/pkg/cache"
	"github.com/asv/wolfpuzzle/pkg/library"
)

func TestHumanWolfMasksComplementary(t *testing.T) {
	const n = 5
	domain := uint(1) << n
	for i := 0; i < n; i++ {
		human := HumanMask(domain, i)
		wolf := WolfMask(domain, i)
		assert.Equal(t, domain, human.Popcount()+wolf.Popcount())
		assert.Equal(t, uint(0), human.And(wolf).Popcount())
	}
}

// TestSpeakerCompatIsSingleRemainingWhenAllSpeakersPinTarget hand-builds a
// puzzle (one statement per speaker, each consistent with a fixed target)
// and checks that intersecting every speaker's compatibility mask narrows
// "remaining" down to exactly the target assignment — the same replay the
// verifier's mask-replay check performs (spec.md §4.5 / §8 T4).
func TestSpeakerCompatIsSingleRemainingWhenAllSpeakersPinTarget(t *testing.T) {
	const n = 4
	domain := uint(1) << n
	lib, err := library.Build(n, library.DefaultConfig())
	require.NoError(t, err)
	tc, err := cache.Build(lib)
	require.NoError(t, err)

	target := uint64(0b0111) // villagers 0, 1 and 2 are werewolves

	remaining := bitmask.Full(domain)
	var codes []string
	for i := 0; i < n; i++ {
		entry := pickNonSelfReferentialTrueStatement(t, lib, target, i)
		codes = append(codes, entry.Code)
		mask, ok := tc.Mask(entry.Code)
		require.True(t, ok)
		remaining = remaining.And(SpeakerCompat(domain, i, mask))
	}
	require.Equal(t, uint(1), remaining.Popcount(), "codes=%v", codes)
	sole, ok := remaining.SoleMember()
	require.True(t, ok)
	assert.Equal(t, uint(target), sole)
}

// pickNonSelfReferentialTrueStatement finds a library statement that does
// not reference speaker, and whose truth value under target matches what a
// truthful (human) or lying (werewolf) speaker at that index would need.
func pickNonSelfReferentialTrueStatement(t *testing.T, lib *library.Library, target uint64, speaker int) library.Entry {
	t.Helper()
	speakerIsHuman := target&(1<<uint(speaker)) == 0
	for _, e := range lib.Entries {
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
		if e.Statement.Evaluate(target) == speakerIsHuman {
			return e
		}
	}
	t.Fatalf("no usable statement found for speaker %d", speaker)
	return library.Entry{}
}
