package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/reflex-dodger/internal/platform/tui"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

var (
	flagScripts   string
	flagExtended  bool
	flagMasked    bool
	flagDebugAddr string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Reflex Dodger",
	Long: `Start a local game.

Controls:
  Arrows/WASD  - Move
  Enter/Space  - Start a run
  R            - Reset (also clears the best score)
  :            - Developer console
  Q/Ctrl+C     - Quit

The fair-play monitor runs for the whole session. The extended monitor
also watches for injection tooling, scripts dropped into the scripts
directory and use of the developer console.

Logs are written to ~/.dodger/logs/play.log.

Examples:
  dodger play
  dodger play --extended
  dodger play --scripts ./scripts --masked
  dodger play --config ./my-dodger.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagScripts, "scripts", "", "Scripts directory to watch (enables the extended monitor)")
	playCmd.Flags().BoolVar(&flagExtended, "extended", false, "Enable the extended fair-play probes")
	playCmd.Flags().BoolVar(&flagMasked, "masked", false, "Mask reasons in the security log")
	playCmd.Flags().StringVar(&flagDebugAddr, "debug-addr", "", "Serve /debug/vars on this address")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagScripts != "" {
		cfg.Sentinel.ScriptsDir = flagScripts
		cfg.Sentinel.Extended = true
	}
	if flagExtended {
		cfg.Sentinel.Extended = true
	}
	if flagMasked {
		cfg.Sentinel.MaskLog = true
	}

	logger, closeLog, err := openLogFile("play")
	if err != nil {
		return err
	}
	defer closeLog()
	serveDebug(flagDebugAddr, logger)

	opts := tui.SessionOptions{
		Config:    cfg,
		Seed:      flagSeed,
		OuterSize: tui.TermSize,
		Logger:    logger,
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		// Play on without persistence.
		logger.Warn("could not open database", "error", err)
		opts.Store = storage.NewMemory()
	} else {
		defer store.Close()
		opts.Store = store
		opts.Runs = store
	}

	cols, rows, ok := tui.TermSize()
	if !ok {
		cols, rows = 80, 24
	}
	opts.Cols, opts.Rows = cols, rows

	sess, err := tui.NewSession(opts)
	if err != nil {
		return err
	}
	logger.Info("session started", "extended", cfg.Sentinel.Extended, "masked", cfg.Sentinel.MaskLog)
	return tui.Run(sess, cols, rows, tui.WithFPS(flagFPS))
}
