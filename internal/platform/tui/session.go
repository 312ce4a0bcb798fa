package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hako/durafmt"

	"github.com/vovakirdan/reflex-dodger/internal/ban"
	"github.com/vovakirdan/reflex-dodger/internal/config"
	"github.com/vovakirdan/reflex-dodger/internal/core"
	"github.com/vovakirdan/reflex-dodger/internal/games/dodger"
	"github.com/vovakirdan/reflex-dodger/internal/sentinel"
	"github.com/vovakirdan/reflex-dodger/internal/status"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

// RunSaver appends finished runs to the run history.
type RunSaver interface {
	SaveRun(scope string, score int, duration time.Duration) (string, error)
}

// SessionOptions configures one play session.
type SessionOptions struct {
	Config config.DodgerConfig
	// Store is the session's key-value store, already scoped.
	Store storage.KV
	Runs  RunSaver
	// Scope labels the run history rows. Empty for local play.
	Scope string
	Seed  int64
	// Cols and Rows are the initial terminal size in cells.
	Cols, Rows int
	// OuterSize reports the real terminal size. Nil when unknown.
	OuterSize SizeFunc
	// Scripts overrides the scripts directory source.
	Scripts   sentinel.ScriptSource
	Scheduler sentinel.Scheduler
	Logger    *log.Logger
}

// Session wires the status line, ban manager, fair-play monitor and game
// for one player. A session that starts banned has no monitor and no game.
type Session struct {
	Status  *status.Indicator
	Bans    *ban.Manager
	Monitor *sentinel.Monitor
	Game    *dodger.Game
	Entropy *core.EntropyRef
	// Console is the developer console as exposed to the player.
	Console sentinel.Evaluator

	cfg      config.DodgerConfig
	held     *core.HeldKeys
	viewport *cellViewport
	logger   *log.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewSession initializes a session. A banned scope yields a lockout-only
// session; an empty terminal yields ErrNoCanvas.
func NewSession(opts SessionOptions) (*Session, error) {
	cfg := opts.Config
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = log.WithPrefix("dodger")
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	masked := cfg.Sentinel.MaskLog

	s := &Session{
		cfg:    cfg,
		logger: opts.Logger,
		done:   make(chan struct{}),
	}
	s.Status = status.New(status.WithMasking(masked))
	s.Bans = ban.NewManager(opts.Store, s.Status,
		ban.WithLogger(opts.Logger.WithPrefix("ban")),
		ban.WithMasking(masked),
	)
	if s.Bans.IsBanned() {
		s.logger.Info("session is banned, showing lockout")
		return s, nil
	}

	canvasW, canvasH := s.canvasSize(opts.Cols, opts.Rows)
	if canvasW <= 0 || canvasH <= 0 {
		return nil, fmt.Errorf("terminal %dx%d: %w", opts.Cols, opts.Rows, dodger.ErrNoCanvas)
	}

	s.Entropy = core.NewEntropyRef(opts.Seed)
	s.viewport = newCellViewport(opts.OuterSize, cfg.Canvas.CellWidth, cfg.Canvas.CellHeight)
	s.viewport.setInner(opts.Cols, opts.Rows)

	sched := opts.Scheduler
	if sched == nil {
		sched = sentinel.TickerScheduler{}
	}
	scripts := opts.Scripts
	if scripts == nil && cfg.Sentinel.Extended && cfg.Sentinel.ScriptsDir != "" {
		scripts = sentinel.NewDirSource(config.ExpandHome(cfg.Sentinel.ScriptsDir), sched)
	}

	s.Monitor = sentinel.New(s.Bans, s.Status, sentinel.Host{
		Viewport: s.viewport,
		Store:    opts.Store,
		Entropy:  s.Entropy,
		Scripts:  scripts,
	},
		sentinel.WithScheduler(sched),
		sentinel.WithLogger(opts.Logger.WithPrefix("sentinel")),
		sentinel.WithExtended(cfg.Sentinel.Extended),
		sentinel.WithMasking(masked),
	)
	s.Monitor.Start()

	game, err := dodger.New(cfg, canvasW, canvasH, dodger.Deps{
		Store:   opts.Store,
		Status:  s.Status,
		Entropy: s.Entropy,
		Runs:    &runRecorder{saver: opts.Runs, scope: opts.Scope, logger: opts.Logger},
		Logger:  opts.Logger,
	})
	if err != nil {
		s.Monitor.Close()
		return nil, err
	}
	s.Game = game
	s.Console = s.Monitor.WrapEvaluator(dodger.NewConsole(game), "console")
	s.held = core.NewHeldKeys(cfg.Input.HoldWindow)
	return s, nil
}

// canvasSize converts a terminal size in cells to canvas pixels, leaving
// room for the HUD rows.
func (s *Session) canvasSize(cols, rows int) (float64, float64) {
	rows -= s.cfg.Canvas.HUDRows
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	return float64(cols) * s.cfg.Canvas.CellWidth, float64(rows) * s.cfg.Canvas.CellHeight
}

// Banned reports whether the session is locked out.
func (s *Session) Banned() bool {
	return s.Bans.IsBanned()
}

// Resize applies a new terminal size.
func (s *Session) Resize(cols, rows int) {
	if s.Game == nil {
		return
	}
	s.viewport.setInner(cols, rows)
	if w, h := s.canvasSize(cols, rows); w > 0 && h > 0 {
		s.Game.Resize(w, h)
	}
	s.Monitor.HandleResize()
}

// Done is closed by Close.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close records the exit time and stops the monitor. It is safe to call
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.Monitor != nil {
			s.Monitor.Close()
		}
	})
}

// runRecorder appends scoring runs to the history.
type runRecorder struct {
	saver  RunSaver
	scope  string
	logger *log.Logger
}

func (r *runRecorder) RecordRun(score int, elapsed time.Duration) {
	if r.saver == nil || score <= 0 {
		return
	}
	id, err := r.saver.SaveRun(r.scope, score, elapsed)
	if err != nil {
		r.logger.Warn("failed to save run", "error", err)
		return
	}
	r.logger.Info("run recorded",
		"id", id,
		"score", score,
		"survived", durafmt.Parse(elapsed).LimitFirstN(2).String(),
	)
}
