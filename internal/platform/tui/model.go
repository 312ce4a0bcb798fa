package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/reflex-dodger/internal/core"
)

// DefaultFPS is the frame rate requested when none is configured.
const DefaultFPS = 60

// maxFrameDelta caps a single frame so a stalled terminal does not move
// obstacles through the player.
const maxFrameDelta = 250 * time.Millisecond

var (
	hudStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	hudBestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	consoleOut   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	consoleErr   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Model is the Bubble Tea model for one play session.
type Model struct {
	sess    *Session
	keys    *KeyMapper
	help    help.Model
	console textinput.Model
	screen  *core.Screen
	fps     int

	width, height int
	lastTick      time.Time
	consoleOpen   bool
	consoleResult string
	consoleFailed bool
	banned        bool
	quitting      bool
}

// Option configures a Model.
type Option func(*Model)

// WithFPS sets the frame rate.
func WithFPS(fps int) Option {
	return func(m *Model) {
		if fps > 0 {
			m.fps = fps
		}
	}
}

// NewModel creates the model for sess sized cols x rows.
func NewModel(sess *Session, cols, rows int, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "help"
	ti.CharLimit = 64

	m := Model{
		sess:    sess,
		keys:    NewKeyMapper(),
		help:    help.New(),
		console: ti,
		fps:     DefaultFPS,
		width:   cols,
		height:  rows,
		banned:  sess.Banned(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.screen = core.NewScreen(cols, m.canvasRows())
	return m
}

func (m Model) canvasRows() int {
	return max(m.height-m.sess.cfg.Canvas.HUDRows, 0)
}

// Init starts the frame loop and the ban watch.
func (m Model) Init() tea.Cmd {
	if m.banned {
		return nil
	}
	return tea.Batch(
		tickCmd(m.fps),
		waitForBan(m.sess.Bans.Banned(), m.sess.Done()),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BannedMsg:
		m.banned = true
		m.consoleOpen = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.banned || m.sess.Banned() {
		m.banned = true
		if key.Matches(msg, m.keys.Keys().Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if m.consoleOpen {
		return m.handleConsoleKey(msg)
	}

	if m.sess.Monitor.HandleKey(SentinelKey(msg)) {
		m.banned = m.sess.Banned()
		return m, nil
	}

	switch action := m.keys.MapKey(msg); action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionStart:
		m.sess.Game.Start()
	case core.ActionReset:
		m.sess.Game.ResetGameState(true)
	case core.ActionConsole:
		m.consoleOpen = true
		m.sess.held.Release()
		m.console.Reset()
		return m, m.console.Focus()
	default:
		if action.IsDirection() {
			m.sess.held.Press(action, time.Now())
		}
	}
	return m, nil
}

func (m Model) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.consoleOpen = false
		m.console.Blur()
		return m, nil
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		out, err := m.sess.Console.Eval(m.console.Value())
		m.consoleFailed = err != nil
		m.consoleResult = out
		if err != nil {
			m.consoleResult = err.Error()
		}
		m.console.Reset()
		m.banned = m.sess.Banned()
		return m, nil
	}

	var cmd tea.Cmd
	m.console, cmd = m.console.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.banned {
		return m, nil
	}
	if msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress {
		m.sess.Monitor.HandleContextMenu()
		m.banned = m.sess.Banned()
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.help.Width = msg.Width
	m.console.Width = max(msg.Width-len(m.console.Prompt)-1, 1)
	m.screen.Resize(msg.Width, m.canvasRows())
	if !m.banned {
		m.sess.Resize(msg.Width, msg.Height)
		m.banned = m.sess.Banned()
	}
	return m, nil
}

// handleTick advances the game by the time since the previous tick. The
// loop stops for good once the session is banned.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.banned || m.sess.Banned() {
		m.banned = true
		return m, nil
	}

	var delta time.Duration
	if !m.lastTick.IsZero() {
		delta = min(now.Sub(m.lastTick), maxFrameDelta)
	}
	m.lastTick = now
	m.sess.Game.Update(delta.Seconds(), m.sess.held.Frame(now))

	return m, tickCmd(m.fps)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.banned || m.sess.Banned() {
		return m.sess.Bans.Lockout(m.width, m.height)
	}

	st := m.sess.Game.State()
	hud := hudStyle.Render(fmt.Sprintf("Score %d", st.Score)) + "  " +
		hudBestStyle.Render(fmt.Sprintf("Best %d", st.Best))

	m.sess.Game.Render(m.screen)

	return lipgloss.JoinVertical(lipgloss.Left,
		hud,
		RenderScreen(m.screen),
		m.sess.Status.View(m.width),
		m.footer(),
	)
}

func (m Model) footer() string {
	if !m.consoleOpen {
		return m.help.View(m.keys.Keys())
	}
	line := m.console.View()
	if m.consoleResult != "" {
		style := consoleOut
		if m.consoleFailed {
			style = consoleErr
		}
		line += "  " + style.Render(m.consoleResult)
	}
	return line
}

// Run starts the Bubble Tea program for sess and closes the session when
// the program exits.
func Run(sess *Session, cols, rows int, opts ...Option) error {
	defer sess.Close()

	p := tea.NewProgram(
		NewModel(sess, cols, rows, opts...),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
