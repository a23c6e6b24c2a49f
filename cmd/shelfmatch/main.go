package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/backend/config"
	"github.com/shelfwatch/backend/internal/infrastructure/catalog"
	"github.com/shelfwatch/backend/internal/usecase"
)

var (
	matchDryRun  bool
	matchWorkers int
	matchSource  string
)

var rootCmd = &cobra.Command{
	Use:   "shelfmatch",
	Short: "Batch matching for shelf photo archives",
	Long: `Resolves archived product photos against the catalog using their
filenames, and records the resulting assets.`,
	SilenceUsage: true,
}

var matchCmd = &cobra.Command{
	Use:   "match [dir]",
	Short: "Match image filenames in a directory against the catalog",
	Long: `Walks a directory of product images and resolves each filename stem
to a catalog product. Confident matches are recorded as assets; ambiguous
filenames are reported for manual review instead of guessed at.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().BoolVar(&matchDryRun, "dry-run", false, "resolve filenames without recording assets")
	matchCmd.Flags().IntVar(&matchWorkers, "workers", 4, "number of files processed concurrently")
	matchCmd.Flags().StringVar(&matchSource, "source", "filename-import", "source label recorded on created assets")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := catalog.NewStore(cfg.Storage.DatabasePath, cfg.Storage.AssetsDir)
	if err != nil {
		return fmt.Errorf("opening catalog store: %w", err)
	}
	defer store.Close()

	tokenizer := usecase.NewTokenizer(usecase.Vocabulary{
		BrandExpansions: cfg.Matching.BrandExpansions,
	})
	matcher := usecase.NewFilenameMatcher(store, store, tokenizer, usecase.FilenameMatcherConfig{
		Thresholds: usecase.Thresholds{
			MinScore:      cfg.Matching.FilenameMinScore,
			MinSeparation: cfg.Matching.FilenameMinSeparation,
		},
		Source:             matchSource,
		Workers:            matchWorkers,
		DryRun:             matchDryRun,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	summary, err := matcher.Run(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	for _, outcome := range summary.Outcomes {
		printOutcome(cmd, outcome)
	}

	cmd.Printf("\n%d created, %d existing, %d no match, %d ambiguous, %d failed\n",
		summary.Created, summary.Existing, summary.NoMatch, summary.Ambiguous, summary.Failed)

	if matchDryRun {
		cmd.Println("dry run: no assets were recorded")
	}

	return nil
}

func printOutcome(cmd *cobra.Command, outcome usecase.FileOutcome) {
	switch outcome.Status {
	case usecase.StatusCreated:
		cmd.Printf("created    %s -> %s (score %.0f)\n", outcome.File, outcome.Product.DisplayName(), outcome.Score)
	case usecase.StatusSkippedExisting:
		cmd.Printf("existing   %s -> %s\n", outcome.File, outcome.Product.DisplayName())
	case usecase.StatusSkippedNoMatch:
		cmd.Printf("no match   %s\n", outcome.File)
	case usecase.StatusAmbiguous:
		cmd.Printf("ambiguous  %s\n", outcome.File)
		for _, candidate := range outcome.Candidates {
			cmd.Printf("           candidate: %s (score %.0f)\n", candidate.Product.DisplayName(), candidate.Score)
		}
	case usecase.StatusFailed:
		cmd.Printf("failed     %s: %v\n", outcome.File, outcome.Err)
	}
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
