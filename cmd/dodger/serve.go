package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/reflex-dodger/internal/platform/tui"
)

var (
	flagSSHAddr        string
	flagHostKey        string
	flagIdleTimeout    int
	flagServeDebugAddr string
)

const serveDebugUsage = "Serve /debug/vars on this address (reading it raises suspicion in every connected session)"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Reflex Dodger SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH user gets their own storage scope: their own ban record, best
score and run history. A ban only locks out the user it was issued to.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.dodger/host_key

Examples:
  dodger serve                           # Listen on :23234 with auto-generated key
  dodger serve --ssh :2222               # Listen on port 2222
  dodger serve --host-key ./my_host_key  # Use specific host key
  dodger serve --db ./dodger.db          # Use specific database

Users can connect with:
  ssh localhost -p 23234

Debug endpoint:
  --debug-addr exposes /debug/vars for the whole server. The fair-play
  monitor treats a read of its telemetry variable as inspection, and every
  connected session shares that variable: one request raises suspicion in
  all of them. Keep the address private to the operator.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeDebugAddr, "debug-addr", "", serveDebugUsage)
}

func runServe(_ *cobra.Command, _ []string) error {
	game, err := loadConfig()
	if err != nil {
		return err
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = game.Storage.Path
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.FPS = flagFPS
	cfg.Game = game

	logger := newLogger(os.Stderr, "dodger")
	if flagServeDebugAddr != "" {
		logger.Warn("debug endpoint is shared by all sessions; reading /debug/vars raises suspicion in each of them",
			"address", flagServeDebugAddr)
	}
	serveDebug(flagServeDebugAddr, logger)

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Starting Reflex Dodger SSH server on %s\n", cfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", port(cfg.Address))
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}

// port returns the port part of a listen address.
func port(addr string) string {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return p
}
