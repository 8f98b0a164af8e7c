package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/pkg/library"
)

func TestBuildMatchesEvaluate(t *testing.T) {
	lib, err := library.Build(5, library.DefaultConfig())
	require.NoError(t, err)

	tc, err := Build(lib)
	require.NoError(t, err)

	for _, entry := range lib.Entries {
		mask, ok := tc.Mask(entry.Code)
		require.True(t, ok)
		for j := uint(0); j < tc.Domain; j++ {
			want := entry.Statement.Evaluate(uint64(j))
			assert.Equal(t, want, mask.Test(j), "code=%s assignment=%d", entry.Code, j)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	lib, err := library.Build(4, library.DefaultConfig())
	require.NoError(t, err)
	tc, err := Build(lib)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tc.Save(&buf))

	loaded, err := Load(&buf, 4, lib)
	require.NoError(t, err)
	assert.Equal(t, tc.Len(), loaded.Len())

	for _, entry := range lib.Entries {
		want, _ := tc.Mask(entry.Code)
		got, ok := loaded.Mask(entry.Code)
		require.True(t, ok)
		assert.True(t, want.Equal(got), "mask mismatch for %s", entry.Code)
	}
}

func TestLoadRejectsMismatchedN(t *testing.T) {
	lib6, err := library.Build(6, library.DefaultConfig())
	require.NoError(t, err)
	tc, err := Build(lib6)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tc.Save(&buf))

	lib5, err := library.Build(5, library.DefaultConfig())
	require.NoError(t, err)

	_, err = Load(&buf, 5, lib5)
	assert.ErrorIs(t, err, common.ErrCacheIncompatible)
}
