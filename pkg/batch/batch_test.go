package batch

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asv/wolfpuzzle/pkg/cache"
	"github.com/asv/wolfpuzzle/pkg/generator"
	"github.com/asv/wolfpuzzle/pkg/library"
)

func TestRunProducesPuzzlesFromEveryWorker(t *testing.T) {
	const n = 4
	lib, err := library.Build(n, library.DefaultConfig())
	require.NoError(t, err)
	tc, err := cache.Build(lib)
	require.NoError(t, err)

	cfg := Config{Workers: 3, PuzzlesPerWorker: 2, BaseSeed: 100}
	summary := Run(n, generator.Config{MinStatements: 1, MaxStatements: 1}, lib, tc, cfg, nil, nil)

	require.Len(t, summary.Workers, 3)
	assert.NotEmpty(t, summary.BatchID)
	for _, wr := range summary.Workers {
		assert.Len(t, wr.Puzzles, 2)
		assert.False(t, wr.Cancelled)
	}
	assert.Len(t, summary.Puzzles(), 6)
}

func TestRunHonoursPreSetCancelFlag(t *testing.T) {
	const n = 4
	lib, err := library.Build(n, library.DefaultConfig())
	require.NoError(t, err)
	tc, err := cache.Build(lib)
	require.NoError(t, err)

	var cancel atomic.Bool
	cancel.Store(true)

	cfg := Config{Workers: 2, PuzzlesPerWorker: 5, BaseSeed: 1}
	summary := Run(n, generator.Config{MinStatements: 1, MaxStatements: 1}, lib, tc, cfg, &cancel, nil)

	for _, wr := range summary.Workers {
		assert.True(t, wr.Cancelled)
		assert.Empty(t, wr.Puzzles)
	}
}

func TestRunIsDeterministicGivenBaseSeed(t *testing.T) {
	const n = 4
	lib, err := library.Build(n, library.DefaultConfig())
	require.NoError(t, err)
	tc, err := cache.Build(lib)
	require.NoError(t, err)

	cfg := Config{Workers: 2, PuzzlesPerWorker: 2, BaseSeed: 55}
	a := Run(n, generator.Config{MinStatements: 1, MaxStatements: 1}, lib, tc, cfg, nil, nil)
	b := Run(n, generator.Config{MinStatements: 1, MaxStatements: 1}, lib, tc, cfg, nil, nil)

	for w := range a.Workers {
		require.Len(t, b.Workers[w].Puzzles, len(a.Workers[w].Puzzles))
		for i := range a.Workers[w].Puzzles {
			assert.Equal(t, a.Workers[w].Puzzles[i].Solution.W, b.Workers[w].Puzzles[i].Solution.W)
		}
	}
}
