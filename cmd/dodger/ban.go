package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/reflex-dodger/internal/ban"
	"github.com/vovakirdan/reflex-dodger/internal/platform/tui"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

var flagBanScope string

var banCmd = &cobra.Command{
	Use:   "ban",
	Short: "Inspect or lift bans",
}

var banShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the ban record of a scope",
	Long: `Render the lockout screen the banned player sees, including the
security log that led to the ban.

Examples:
  dodger ban show
  dodger ban show --scope alice
  dodger ban list`,
	Args: cobra.NoArgs,
	RunE: runBanShow,
}

var banListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scopes that are banned",
	Args:  cobra.NoArgs,
	RunE:  runBanList,
}

var banClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Lift the ban of a scope",
	Args:  cobra.NoArgs,
	RunE:  runBanClear,
}

func init() {
	banCmd.PersistentFlags().StringVar(&flagBanScope, "scope", "", "SSH user to inspect (default: local play)")
	banCmd.AddCommand(banShowCmd)
	banCmd.AddCommand(banListCmd)
	banCmd.AddCommand(banClearCmd)
}

func openScope() (*storage.Store, storage.KV, bool, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, false, err
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, false, err
	}
	return store, storage.Scope(store, scopeFor(flagBanScope)), cfg.Sentinel.MaskLog, nil
}

func runBanShow(_ *cobra.Command, _ []string) error {
	store, kv, masked, err := openScope()
	if err != nil {
		return err
	}
	defer store.Close()

	label := tui.ScopeLabel(scopeFor(flagBanScope))
	bans := ban.NewManager(kv, nil, ban.WithMasking(masked))
	if !bans.IsBanned() {
		fmt.Printf("No ban in effect for %s.\n", label)
		return nil
	}

	width := 80
	if w, _, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil {
		width = w
	}
	fmt.Println(bans.Lockout(width, 0))
	return nil
}

func runBanList(_ *cobra.Command, _ []string) error {
	store, _, _, err := openScope()
	if err != nil {
		return err
	}
	defer store.Close()

	scopes, err := storage.ScopesWith(store, storage.KeyBan)
	if err != nil {
		return err
	}
	printBanList(os.Stdout, scopes)
	return nil
}

func printBanList(w io.Writer, scopes []string) {
	if len(scopes) == 0 {
		fmt.Fprintln(w, "No bans in effect.")
		return
	}
	for _, scope := range scopes {
		fmt.Fprintln(w, tui.ScopeLabel(scope))
	}
}

func runBanClear(_ *cobra.Command, _ []string) error {
	store, kv, _, err := openScope()
	if err != nil {
		return err
	}
	defer store.Close()

	label := tui.ScopeLabel(scopeFor(flagBanScope))
	if err := kv.Delete(storage.KeyBan); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	fmt.Printf("Ban lifted for %s.\n", label)
	return nil
}
