// Package batch implements the coarse-grained worker fan-out spec.md §5
// describes for bulk generation: N independent workers share an immutable
// truth cache and each produce their own puzzles, with no cross-worker
// ordering guarantee. Cancellation is cooperative — a worker checks a
// shared atomic flag between puzzles and returns whatever it produced so
// far, never mid-puzzle.
package batch

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/asv/wolfpuzzle/pkg/cache"
	"github.com/asv/wolfpuzzle/pkg/generator"
	"github.com/asv/wolfpuzzle/pkg/library"
	"github.com/asv/wolfpuzzle/pkg/puzzle"
)

// Config controls a batch run.
type Config struct {
	// Workers is the number of independent goroutines to fan out across.
	Workers int

	// PuzzlesPerWorker bounds how many puzzles each worker attempts to
	// produce before returning.
	PuzzlesPerWorker int

	// BaseSeed seeds every worker deterministically: worker w's puzzle i
	// uses seed BaseSeed + int64(w)*1_000_000 + int64(i), so a batch run is
	// reproducible given (N, genCfg, cfg) even though goroutine completion
	// order is not.
	BaseSeed int64
}

// WorkerResult is one worker's contribution to a batch.
type WorkerResult struct {
	WorkerIndex int
	Puzzles     []*puzzle.Puzzle

	// Cancelled reports whether the worker stopped early because the
	// shared cancel flag was observed set, rather than because it reached
	// PuzzlesPerWorker.
	Cancelled bool

	// FirstErr records the first generation error a worker hit (typically
	// common.ErrGenerationExhausted for one puzzle); the worker continues
	// to the next puzzle rather than aborting the whole batch.
	FirstErr error
}

// Summary is the result of a full batch run.
type Summary struct {
	BatchID string
	Workers []WorkerResult
}

// Puzzles flattens every successfully generated puzzle across all workers,
// in no particular cross-worker order.
func (s Summary) Puzzles() []*puzzle.Puzzle {
	var out []*puzzle.Puzzle
	for _, wr := range s.Workers {
		out = append(out, wr.Puzzles...)
	}
	return out
}

// Run fans cfg.Workers goroutines out over the generator, sharing lib and tc
// read-only, and blocks until every worker returns. cancel, if non-nil, lets
// a caller request early termination; Run itself never sets it.
func Run(n int, genCfg generator.Config, lib *library.Library, tc *cache.TruthCache, cfg Config, cancel *atomic.Bool, logger hclog.Logger) Summary {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cancel == nil {
		cancel = new(atomic.Bool)
	}

	batchID := uuid.NewString()
	results := make([]WorkerResult, cfg.Workers)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(workerIndex int) {
			defer wg.Done()
			results[workerIndex] = runWorker(n, genCfg, lib, tc, cfg, workerIndex, cancel, logger)
		}(w)
	}
	wg.Wait()

	logger.Info("batch complete", "batch_id", batchID, "workers", cfg.Workers)
	return Summary{BatchID: batchID, Workers: results}
}

func runWorker(n int, genCfg generator.Config, lib *library.Library, tc *cache.TruthCache, cfg Config, workerIndex int, cancel *atomic.Bool, logger hclog.Logger) WorkerResult {
	res := WorkerResult{WorkerIndex: workerIndex}
	for i := 0; i < cfg.PuzzlesPerWorker; i++ {
		if cancel.Load() {
			res.Cancelled = true
			logger.Debug("worker cancelled", "worker", workerIndex, "produced", len(res.Puzzles))
			return res
		}

		seed := cfg.BaseSeed + int64(workerIndex)*1_000_000 + int64(i)
		p, err := generator.Generate(n, genCfg, lib, tc, seed)
		if err != nil {
			if res.FirstErr == nil {
				res.FirstErr = err
			}
			logger.Warn("worker generation failed", "worker", workerIndex, "seed", seed, "err", err)
			continue
		}
		res.Puzzles = append(res.Puzzles, p)
	}
	return res
}
