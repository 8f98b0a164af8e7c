package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asv/wolfpuzzle/internal/common"
	"github.com/asv/wolfpuzzle/pkg/cache"
	"github.com/asv/wolfpuzzle/pkg/generator"
	"github.com/asv/wolfpuzzle/pkg/library"
	"github.com/asv/wolfpuzzle/pkg/puzzle"
	"github.com/asv/wolfpuzzle/pkg/puzzleapi"
)

var (
	flagN             int
	flagStatementsMin int
	flagStatementsMax int
	flagHasShill      bool
	flagMaxAttempts   int
	flagCacheFile     string
	flagRebuildCache  bool
	flagSeed          int64
	flagOutput        string
)

func init() {
	rootCmd.Flags().IntVar(&flagN, "N", 4, "village size")
	rootCmd.Flags().IntVar(&flagStatementsMin, "statements-min", 1, "minimum statements per speaker")
	rootCmd.Flags().IntVar(&flagStatementsMax, "statements-max", 1, "maximum statements per speaker")
	rootCmd.Flags().BoolVar(&flagHasShill, "has-shill", false, "enable shill mode")
	rootCmd.Flags().IntVar(&flagMaxAttempts, "max-attempts", 100, "restart budget before giving up")
	rootCmd.Flags().StringVar(&flagCacheFile, "cache-file", "", "truth-cache file to load/save (empty: build in memory only)")
	rootCmd.Flags().BoolVar(&flagRebuildCache, "rebuild-cache", false, "rebuild the cache even if --cache-file exists")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 1, "generator RNG seed")
	rootCmd.Flags().StringVar(&flagOutput, "output", "compact", "output form: compact or human")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	lib, err := puzzleapi.BuildLibrary(flagN, library.DefaultConfig())
	if err != nil {
		return err
	}

	tc, err := loadOrBuildCache(lib)
	if err != nil {
		return err
	}

	genCfg := generator.Config{
		MinStatements: flagStatementsMin,
		MaxStatements: flagStatementsMax,
		HasShill:      flagHasShill,
		MaxAttempts:   flagMaxAttempts,
	}

	p, err := puzzleapi.GenerateWithLibrary(flagN, genCfg, lib, tc, flagSeed)
	if err != nil {
		return err
	}

	w, shill, err := puzzleapi.Verify(p, tc)
	if err != nil {
		return err
	}
	logger.Info("generated puzzle", "N", flagN, "seed", flagSeed, "W", w, "shill", shill)

	switch flagOutput {
	case "human":
		printHuman(p)
	default:
		fmt.Println(puzzleapi.EncodePuzzle(p))
	}
	return nil
}

func printHuman(p *puzzle.Puzzle) {
	for i, bundle := range p.Bundles {
		fmt.Printf("villager %d says:\n", i)
		for _, st := range bundle {
			fmt.Printf("  %s\n", st.Display())
		}
	}
	if p.Solution.W != 0 {
		fmt.Printf("solution W=%d", p.Solution.W)
		if p.Solution.HasShill {
			fmt.Printf(" shill=%d", p.Solution.Shill)
		}
		fmt.Println()
	}
}

func loadOrBuildCache(lib *library.Library) (*cache.TruthCache, error) {
	if flagCacheFile != "" && !flagRebuildCache {
		if f, err := os.Open(flagCacheFile); err == nil {
			defer f.Close()
			tc, err := puzzleapi.LoadCache(f, flagN, lib)
			if err == nil {
				return tc, nil
			}
			logger.Warn("cache load failed, rebuilding", "file", flagCacheFile, "err", err)
		}
	}

	tc, err := puzzleapi.BuildCache(lib, flagN)
	if err != nil {
		return nil, err
	}

	if flagCacheFile != "" {
		f, err := os.Create(flagCacheFile)
		if err != nil {
			logger.Warn("could not persist cache", "file", flagCacheFile, "err", err)
			return tc, nil
		}
		defer f.Close()
		if err := puzzleapi.SaveCache(tc, f); err != nil {
			logger.Warn("could not write cache", "file", flagCacheFile, "err", err)
		}
	}
	return tc, nil
}

// exitCodeFor maps a run error to the process exit code spec.md §6 fixes:
// 0 success, 1 GenerationExhausted, 2 any other error.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, common.ErrGenerationExhausted) {
		return 1
	}
	return 2
}
