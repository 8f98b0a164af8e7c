// Command wolfbatch exercises pkg/batch: it fans generation out across
// workers and reports how many puzzles each produced.
package main

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/asv/wolfpuzzle/pkg/batch"
	"github.com/asv/wolfpuzzle/pkg/generator"
	"github.com/asv/wolfpuzzle/pkg/library"
	"github.com/asv/wolfpuzzle/pkg/puzzleapi"
)

var logger = hclog.New(&hclog.LoggerOptions{
	Name:  "wolfbatch",
	Level: hclog.Info,
})

var (
	flagN                int
	flagWorkers          int
	flagPuzzlesPerWorker int
	flagBaseSeed         int64
	flagHasShill         bool
)

var rootCmd = &cobra.Command{
	Use:           "wolfbatch",
	Short:         "Generate a batch of Werewolf puzzles across concurrent workers",
	RunE:          runBatch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().IntVar(&flagN, "N", 4, "village size")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 4, "number of concurrent workers")
	rootCmd.Flags().IntVar(&flagPuzzlesPerWorker, "puzzles-per-worker", 10, "puzzles each worker attempts")
	rootCmd.Flags().Int64Var(&flagBaseSeed, "base-seed", 1, "deterministic base seed for the whole batch")
	rootCmd.Flags().BoolVar(&flagHasShill, "has-shill", false, "enable shill mode")
}

func runBatch(cmd *cobra.Command, args []string) error {
	lib, err := puzzleapi.BuildLibrary(flagN, library.DefaultConfig())
	if err != nil {
		return err
	}
	tc, err := puzzleapi.BuildCache(lib, flagN)
	if err != nil {
		return err
	}

	genCfg := generator.Config{MinStatements: 1, MaxStatements: 1, HasShill: flagHasShill}
	batchCfg := batch.Config{
		Workers:          flagWorkers,
		PuzzlesPerWorker: flagPuzzlesPerWorker,
		BaseSeed:         flagBaseSeed,
	}

	var cancel atomic.Bool
	summary := batch.Run(flagN, genCfg, lib, tc, batchCfg, &cancel, logger)

	total := 0
	for _, wr := range summary.Workers {
		total += len(wr.Puzzles)
		logger.Info("worker finished", "worker", wr.WorkerIndex, "puzzles", len(wr.Puzzles))
		if wr.FirstErr != nil {
			logger.Warn("worker hit a generation error", "worker", wr.WorkerIndex, "err", wr.FirstErr)
		}
	}

	fmt.Printf("batch %s: %d puzzles from %d workers\n", summary.BatchID, total, len(summary.Workers))
	for _, wr := range summary.Workers {
		for _, p := range wr.Puzzles {
			fmt.Println(puzzleapi.EncodePuzzle(p))
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wolfbatch:", err)
		os.Exit(2)
	}
}
