package ban

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Lockout layout constants
const (
	lockoutMinWidth = 48
	// lockoutChrome is the height of everything around the log table.
	lockoutChrome = 16
	minLogRows    = 3
)

var (
	lockoutBox = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(1, 2)
	lockoutTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
	lockoutHeading = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			MarginTop(1)
	lockoutLabel = lipgloss.NewStyle().Bold(true)
	lockoutNote  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			MarginTop(1)
)

// lockoutText holds the wording for the plain and masked variants.
type lockoutText struct {
	title, body, details, reason, issued, log, note, severity string
}

var (
	plainText = lockoutText{
		title:    "Session Banned",
		body:     "Your client has been permanently locked for violating the fair play policy.",
		details:  "Ban Details",
		reason:   "Reason",
		issued:   "Issued",
		log:      "Security Log",
		note:     "Restarting or reconnecting will not lift the ban.",
		severity: "Severity",
	}
	maskedText = lockoutText{
		title:    "Session Locked",
		body:     "This session has been permanently restricted due to irregular activity.",
		details:  "Lock Details",
		reason:   "Lock Code",
		issued:   "Issued",
		log:      "Event Log",
		note:     "Restarting or reconnecting will not lift the lock.",
		severity: "Weight",
	}
)

// Lockout renders the lockout view that replaces the game once banned.
// Returns an empty string when no ban is in effect. A height of zero lists
// every log entry; otherwise older entries that do not fit are collapsed
// into a single summary row.
func (m *Manager) Lockout(width, height int) string {
	rec, ok := m.Record()
	if !ok {
		return ""
	}
	text := plainText
	if m.masked {
		text = maskedText
	}
	return renderLockout(rec, text, width, height, m.now())
}

func renderLockout(rec Record, text lockoutText, width, height int, now time.Time) string {
	if width < lockoutMinWidth {
		width = lockoutMinWidth
	}
	inner := width - 8 // border + padding

	reason := rec.Reason
	if reason == "" {
		reason = "Security policy violation"
	}

	var sb strings.Builder
	sb.WriteString(lockoutTitle.Render(text.title))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Width(inner).Render(text.body))
	sb.WriteString("\n")
	sb.WriteString(lockoutHeading.Render(text.details))
	sb.WriteString("\n")
	sb.WriteString(lockoutLabel.Render(text.reason+": ") + reason)
	sb.WriteString("\n")
	sb.WriteString(lockoutLabel.Render(text.issued+": ") + formatWhen(rec.Timestamp, now))

	if len(rec.Log) > 0 {
		sb.WriteString("\n")
		sb.WriteString(lockoutHeading.Render(text.log))
		sb.WriteString("\n")
		sb.WriteString(logTable(rec.Log, text, inner, height))
	}

	sb.WriteString("\n")
	sb.WriteString(lockoutNote.Render(text.note))

	return lockoutBox.Width(width - 2).Render(sb.String())
}

// logTable lays out the log entries.
func logTable(entries []Entry, text lockoutText, width, height int) string {
	hidden := 0
	if height > 0 {
		fit := max(minLogRows, height-lockoutChrome)
		if len(entries) > fit {
			hidden = len(entries) - (fit - 1)
			entries = entries[hidden:]
		}
	}

	timeW, sevW := 19, 9
	rest := max(20, width-timeW-sevW-8)
	eventW := rest / 2
	detailW := rest - eventW

	columns := []table.Column{
		{Title: "Time", Width: timeW},
		{Title: "Event", Width: eventW},
		{Title: text.severity, Width: sevW},
		{Title: "Details", Width: detailW},
	}

	rows := make([]table.Row, 0, len(entries)+1)
	if hidden > 0 {
		rows = append(rows, table.Row{"", earlierEntries(hidden), "", ""})
	}
	for _, e := range entries {
		rows = append(rows, table.Row{
			formatTime(e.Timestamp),
			e.Label(),
			e.SeverityText(),
			e.Details(),
		})
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
		table.WithStyles(s),
	)
	return t.View()
}

func earlierEntries(n int) string {
	if n == 1 {
		return "... 1 earlier entry"
	}
	return fmt.Sprintf("... %d earlier entries", n)
}

// formatTime renders an entry timestamp in local time, falling back to the
// raw value when it cannot be parsed.
func formatTime(ts string) string {
	t := parseTimestamp(ts)
	if t.IsZero() {
		if ts == "" {
			return "Unknown time"
		}
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatWhen renders the issue time with a relative suffix.
func formatWhen(ts string, now time.Time) string {
	t := parseTimestamp(ts)
	if t.IsZero() {
		return formatTime(ts)
	}
	return fmt.Sprintf("%s (%s)", formatTime(ts), humanize.RelTime(t, now, "ago", "from now"))
}
