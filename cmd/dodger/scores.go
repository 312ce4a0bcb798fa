package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/reflex-dodger/internal/platform/tui"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

var (
	flagScoresScope string
	flagScoresLimit int
	flagScoresPlain bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the run history",
	Long: `Display the best runs. On a terminal this opens a browser over every
player's runs; otherwise, or with --plain, it prints the top runs of one
scope.

Examples:
  dodger scores
  dodger scores --scope alice
  dodger scores --plain --limit 20
  dodger scores --scope alice --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresScope, "scope", "", "SSH user whose runs to show (default: local play)")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to print with --plain")
	scoresCmd.Flags().BoolVar(&flagScoresPlain, "plain", false, "Print instead of opening the browser")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the run history of the scope")
}

// scopeFor maps a --scope value to a storage scope.
func scopeFor(user string) string {
	if user == "" {
		return ""
	}
	return storage.UserScope(user)
}

func runScores(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	scope := scopeFor(flagScoresScope)

	if flagScoresClear {
		if err := store.ClearRuns(scope); err != nil {
			return err
		}
		fmt.Printf("Run history cleared for %s.\n", tui.ScopeLabel(scope))
		return nil
	}

	fd := int(os.Stdout.Fd())
	if !flagScoresPlain && term.IsTerminal(fd) {
		width, height, sizeErr := term.GetSize(fd)
		if sizeErr != nil {
			width, height = 80, 24
		}
		return tui.RunScoreboard(store, scope, width, height)
	}

	runs, err := store.TopRuns(scope, flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Best runs - %s\n", tui.ScopeLabel(scope))
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'dodger play' to set the first score!")
		return nil
	}

	fmt.Printf("  %-5s  %-8s  %-22s  %s\n", "Rank", "Score", "Survived", "When")
	fmt.Printf("  %-5s  %-8s  %-22s  %s\n", "----", "-----", "--------", "----")

	now := time.Now()
	for i, r := range runs {
		row := tui.RunRow(i+1, r, now)
		fmt.Printf("  %-5s  %-8s  %-22s  %s\n", row[0], row[1], row[2], row[3])
	}
	return nil
}
