package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/reflex-dodger/internal/config"
)

// openLogFile points the default logger at ~/.dodger/logs/<name>.log so
// log lines do not tear the alt-screen. The returned func closes the file.
func openLogFile(name string) (*log.Logger, func(), error) {
	dir := filepath.Join(config.DataDir(), "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := newLogger(f, "dodger")
	log.SetDefault(logger)
	return logger, func() {
		//nolint:errcheck // Best-effort close on exit
		f.Close()
	}, nil
}

func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// serveDebug exposes the default mux, including /debug/vars, on addr.
func serveDebug(addr string, logger *log.Logger) {
	if addr == "" {
		return
	}
	go func() {
		logger.Info("debug endpoint listening", "address", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Warn("debug endpoint stopped", "error", err)
		}
	}()
}
