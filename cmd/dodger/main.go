// dodger is a falling-obstacle dodge game for the terminal with a built-in
// fair-play monitor that locks out tampered sessions.
//
// Usage:
//
//	dodger play              - Play locally
//	dodger serve             - Start SSH server for remote play
//	dodger scores            - Browse the run history
//	dodger probes            - List the fair-play probes
//	dodger ban show          - Show the ban record of a scope
//	dodger ban list          - List the banned scopes
//	dodger ban clear         - Lift the ban of a scope
//
// Global flags:
//
//	--config <path> - Game config YAML (default: ~/.dodger/configs/dodger.yaml)
//	--db <path>     - Database path (default: from config, ~/.dodger/dodger.db)
//	--fps <rate>    - Frame rate (default: 60)
//	--seed <value>  - RNG seed for reproducible obstacle patterns
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/reflex-dodger/internal/config"
)

var (
	// Global flags
	flagConfig  string
	flagDBPath  string
	flagFPS     int
	flagSeed    int64
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dodger",
	Short: "Reflex Dodger - dodge falling blocks in your terminal",
	Long: `Reflex Dodger is a terminal game: steer your block around the obstacles
falling down the screen and score for every second you survive.

A fair-play monitor watches the session. Inspection shortcuts, injected
scripts, a swapped random source or rapid restarts raise suspicion, and
enough suspicion locks the session for good.

Available commands:
  play     - Play locally
  serve    - Start SSH server for remote play
  scores   - Browse the run history
  probes   - List the fair-play probes
  ban      - Inspect or lift bans

Examples:
  dodger play
  dodger play --seed 42 --fps 30
  dodger serve --ssh :2222
  dodger scores --scope alice
  dodger ban show`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Frame rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(probesCmd)
	rootCmd.AddCommand(banCmd)
}

// loadConfig loads the game config and applies the global overrides.
func loadConfig() (config.DodgerConfig, error) {
	cfg, err := config.LoadDodger(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	return cfg, nil
}
