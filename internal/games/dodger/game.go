// Package dodger implements Reflex Dodger: the player steers a rectangle
// around obstacles falling down a pixel canvas, scoring for every second
// survived.
package dodger

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/reflex-dodger/internal/config"
	"github.com/vovakirdan/reflex-dodger/internal/core"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

// Status line messages.
const (
	MsgReady      = "Ready"
	MsgRunning    = "Running — dodge everything!"
	MsgEliminated = "Eliminated — press Start to retry"
)

// ErrNoCanvas is returned when the game is created without a drawable area.
var ErrNoCanvas = errors.New("dodger: canvas has no area")

// Visual characters for rendering
const (
	PlayerChar     = '█'
	ObstacleChar   = '▓'
	BackgroundChar = '·'
)

// StatusSink receives game state messages.
type StatusSink interface {
	SetGame(message string)
}

// RunRecorder is told about every finished run.
type RunRecorder interface {
	RecordRun(score int, elapsed time.Duration)
}

// Deps are the collaborators a game needs. Store and Entropy are required.
type Deps struct {
	Store   storage.KV
	Status  StatusSink
	Entropy core.Entropy
	Runs    RunRecorder
	Logger  *log.Logger
}

// Game implements the dodger simulation.
type Game struct {
	cfg    config.DodgerConfig
	kv     storage.KV
	status StatusSink
	rng    core.Entropy
	runs   RunRecorder
	logger *log.Logger

	// A failing store would otherwise warn on every frame.
	persistWarn rate.Sometimes

	canvasW, canvasH float64
	player           core.Box
	speed            float64
	obstacles        *ObstacleManager
	score            float64
	best             int
	phase            core.Phase
	elapsed          time.Duration
}

// New creates an idle game on a canvas of the given pixel size and loads
// the best score from the store.
func New(cfg config.DodgerConfig, canvasW, canvasH float64, deps Deps) (*Game, error) {
	if canvasW <= 0 || canvasH <= 0 {
		return nil, ErrNoCanvas
	}
	if deps.Store == nil {
		deps.Store = storage.NewMemory()
	}
	if deps.Entropy == nil {
		deps.Entropy = core.NewEntropyRef(time.Now().UnixNano())
	}
	if deps.Logger == nil {
		deps.Logger = log.WithPrefix("dodger")
	}

	g := &Game{
		cfg:         cfg,
		kv:          deps.Store,
		status:      deps.Status,
		rng:         deps.Entropy,
		runs:        deps.Runs,
		logger:      deps.Logger,
		persistWarn: rate.Sometimes{First: 1, Interval: 10 * time.Second},
		canvasW:     canvasW,
		canvasH:     canvasH,
		speed:       cfg.Player.Speed,
	}
	g.obstacles = NewObstacleManager(g.rng, cfg.Obstacles)
	g.best = g.loadBest()
	g.ResetGameState(false)
	return g, nil
}

func (g *Game) loadBest() int {
	raw, err := g.kv.Get(storage.KeyBestScore)
	if errors.Is(err, storage.ErrNotFound) {
		return 0
	}
	if err != nil {
		g.logger.Warn("unable to read best score", "error", err)
		return 0
	}
	best, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || best < 0 {
		g.logger.Warn("ignoring malformed best score", "value", raw)
		return 0
	}
	return best
}

func (g *Game) persistBest() {
	if err := g.kv.Set(storage.KeyBestScore, strconv.Itoa(g.best)); err != nil {
		g.persistWarn.Do(func() {
			g.logger.Warn("unable to persist best score", "error", err)
		})
	}
}

func (g *Game) setStatus(msg string) {
	if g.status != nil {
		g.status.SetGame(msg)
	}
}

// ResetGameState recenters the player, respawns the obstacles and zeroes
// the score. A full reset also zeroes and persists the best score.
func (g *Game) ResetGameState(full bool) {
	g.player = core.Box{
		X: g.canvasW/2 - g.cfg.Player.Width/2,
		Y: g.canvasH - g.cfg.Player.BottomOffset,
		W: g.cfg.Player.Width,
		H: g.cfg.Player.Height,
	}
	g.obstacles.Reset(g.canvasW)
	g.score = 0
	g.elapsed = 0
	g.phase = core.PhaseIdle

	if full {
		g.best = 0
		g.persistBest()
	}
	g.setStatus(MsgReady)
}

// Start begins a run. It does nothing while a run is in progress.
func (g *Game) Start() {
	if g.phase == core.PhaseRunning {
		return
	}
	g.ResetGameState(false)
	g.phase = core.PhaseRunning
	g.setStatus(MsgRunning)
}

// Update advances the run by delta seconds. Frames that are not running,
// and non-positive or non-finite deltas, change nothing.
func (g *Game) Update(delta float64, in core.InputFrame) core.StepResult {
	if g.phase != core.PhaseRunning || delta <= 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return core.StepResult{State: g.State()}
	}

	g.movePlayer(delta, in)
	hit := g.obstacles.Update(delta, g.canvasW, g.canvasH, g.player)
	g.elapsed += time.Duration(delta * float64(time.Second))
	g.addScore(delta)

	if hit {
		g.eliminate()
		return core.StepResult{State: g.State(), Eliminated: true}
	}
	return core.StepResult{State: g.State()}
}

func (g *Game) movePlayer(delta float64, in core.InputFrame) {
	move := g.speed * delta
	if in.Has(core.ActionLeft) {
		g.player.X -= move
	}
	if in.Has(core.ActionRight) {
		g.player.X += move
	}
	if in.Has(core.ActionUp) {
		g.player.Y -= move
	}
	if in.Has(core.ActionDown) {
		g.player.Y += move
	}
	g.clampPlayer()
}

func (g *Game) clampPlayer() {
	g.player.X = core.ClampF(g.player.X, 0, max(0, g.canvasW-g.player.W))
	g.player.Y = core.ClampF(g.player.Y, 0, max(0, g.canvasH-g.player.H))
}

func (g *Game) addScore(delta float64) {
	g.score += delta * g.cfg.Scoring.PointsPerSecond
	if shown := int(math.Floor(g.score)); shown > g.best {
		g.best = shown
		g.persistBest()
	}
}

func (g *Game) eliminate() {
	g.phase = core.PhaseEliminated
	g.setStatus(MsgEliminated)
	if g.runs != nil {
		g.runs.RecordRun(g.Score(), g.elapsed)
	}
}

// Resize changes the canvas. The player is pulled back inside; obstacles
// keep falling and respawn across the new width.
func (g *Game) Resize(canvasW, canvasH float64) {
	if canvasW <= 0 || canvasH <= 0 {
		return
	}
	g.canvasW, g.canvasH = canvasW, canvasH
	g.clampPlayer()
}

// State returns the current state snapshot.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score: g.Score(),
		Best:  g.best,
		Phase: g.phase,
	}
}

// Score returns the displayed score.
func (g *Game) Score() int {
	return int(math.Floor(g.score))
}

// Best returns the best score.
func (g *Game) Best() int {
	return g.best
}

// Player returns the player box.
func (g *Game) Player() core.Box {
	return g.player
}

// Obstacles returns a copy of the obstacle pool.
func (g *Game) Obstacles() []Obstacle {
	return g.obstacles.Obstacles()
}

// CanvasSize returns the canvas size in pixels.
func (g *Game) CanvasSize() (w, h float64) {
	return g.canvasW, g.canvasH
}

// Render draws the canvas onto dst: background, then the player, then
// every obstacle. It does not change game state.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	cellW, cellH := g.cfg.Canvas.CellWidth, g.cfg.Canvas.CellHeight

	g.drawBackground(dst)

	player := g.player.Cells(cellW, cellH)
	dst.DrawRect(player, PlayerChar, core.ColorBlue)
	dst.DrawBox(player, core.ColorBrightBlue)

	for _, o := range g.obstacles.obstacles {
		r := o.Box().Cells(cellW, cellH)
		dst.DrawRect(r, ObstacleChar, core.ColorFromHue(o.Hue))
		dst.DrawBox(r, core.ColorSlate)
	}
}

// drawBackground shades a sparse dot grid from navy at the top to slate at
// the bottom.
func (g *Game) drawBackground(dst *core.Screen) {
	h := dst.Height()
	for y := 0; y < h; y += 2 {
		color := core.ColorNavy
		if y >= h/2 {
			color = core.ColorSlate
		}
		offset := (y / 2) % 2 * 3
		for x := offset; x < dst.Width(); x += 6 {
			dst.SetColored(x, y, BackgroundChar, color)
		}
	}
}
