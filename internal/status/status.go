// Package status renders the combined game and security status line.
package status

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Tone is the security state shown by the indicator.
type Tone int

const (
	ToneOK Tone = iota
	ToneWarning
	ToneAlert
)

// Class returns the state class for the tone. Exactly one class is
// applied to the line at a time.
func (t Tone) Class() string {
	switch t {
	case ToneWarning:
		return "status-warning"
	case ToneAlert:
		return "status-alert"
	default:
		return "status-ok"
	}
}

// String returns a human-readable name for the tone.
func (t Tone) String() string {
	switch t {
	case ToneWarning:
		return "warning"
	case ToneAlert:
		return "alert"
	default:
		return "ok"
	}
}

var toneStyles = map[Tone]lipgloss.Style{
	ToneOK: lipgloss.NewStyle().
		Foreground(lipgloss.Color("79")),
	ToneWarning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true),
	ToneAlert: lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("160")).
		Bold(true),
}

// Indicator holds the game and security messages and re-renders the
// combined line on every change. Safe for concurrent use: probes report
// from timer goroutines while the host renders.
type Indicator struct {
	mu       sync.RWMutex
	game     string
	security string
	tone     Tone
	masked   bool
	text     string
	class    string
}

// Option configures an Indicator.
type Option func(*Indicator)

// WithMasking keeps the security message off the visible line. Only the
// tone shows; the message is still available through Echo.
func WithMasking(masked bool) Option {
	return func(i *Indicator) {
		i.masked = masked
	}
}

// New creates an indicator in its initial state.
func New(opts ...Option) *Indicator {
	i := &Indicator{
		game:     "Ready",
		security: "Secure",
		tone:     ToneOK,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.render()
	return i
}

// SetGame replaces the game message.
func (i *Indicator) SetGame(message string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.game = message
	i.render()
}

// SetSecurity replaces the security message and tone.
func (i *Indicator) SetSecurity(message string, tone Tone) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.security = message
	i.tone = tone
	i.render()
}

// render must be called with mu held.
func (i *Indicator) render() {
	if i.masked {
		i.text = i.game
	} else {
		i.text = "Game: " + i.game + " • Security: " + i.security
	}
	i.class = i.tone.Class()
}

// Text returns the rendered line without styling.
func (i *Indicator) Text() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.text
}

// Class returns the state class currently applied.
func (i *Indicator) Class() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.class
}

// Tone returns the current security tone.
func (i *Indicator) Tone() Tone {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.tone
}

// Echo returns the security message, visible or not.
func (i *Indicator) Echo() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.security
}

// View renders the styled line, padded or truncated to width.
func (i *Indicator) View(width int) string {
	i.mu.RLock()
	text, tone := i.text, i.tone
	i.mu.RUnlock()

	style := toneStyles[tone]
	if width > 0 {
		style = style.Width(width).MaxWidth(width)
	}
	return style.Render(text)
}
