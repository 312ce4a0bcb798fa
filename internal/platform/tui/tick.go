// Package tui provides the Bubble Tea host for Reflex Dodger.
// It runs the frame loop, maps input, and swaps to the lockout view on ban.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// BannedMsg is sent once the session is banned.
type BannedMsg struct{}

// waitForBan returns a command that fires BannedMsg when banned closes.
// It returns nil when done closes first.
func waitForBan(banned, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-banned:
			return BannedMsg{}
		case <-done:
			return nil
		}
	}
}
