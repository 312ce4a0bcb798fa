package dodger

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/reflex-dodger/internal/config"
	"github.com/vovakirdan/reflex-dodger/internal/core"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

const (
	testW = 640
	testH = 480
)

// fixedEntropy always draws the same value.
type fixedEntropy float64

func (f fixedEntropy) Float64() float64 { return float64(f) }

type statusRecorder struct {
	messages []string
}

func (s *statusRecorder) SetGame(msg string) {
	s.messages = append(s.messages, msg)
}

func (s *statusRecorder) last() string {
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

type runRecorder struct {
	scores  []int
	elapsed []time.Duration
}

func (r *runRecorder) RecordRun(score int, elapsed time.Duration) {
	r.scores = append(r.scores, score)
	r.elapsed = append(r.elapsed, elapsed)
}

type failingKV struct {
	storage.KV
}

func (failingKV) Set(string, string) error {
	return errors.New("read-only")
}

func newTestGame(t *testing.T, kv storage.KV) (*Game, *statusRecorder, *runRecorder) {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemory()
	}
	st := &statusRecorder{}
	runs := &runRecorder{}
	g, err := New(config.DefaultDodgerConfig(), testW, testH, Deps{
		Store:   kv,
		Status:  st,
		Entropy: fixedEntropy(0.5),
		Runs:    runs,
		Logger:  log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}
	return g, st, runs
}

func TestNewRequiresCanvas(t *testing.T) {
	for _, size := range [][2]float64{{0, 480}, {640, 0}, {-1, -1}} {
		if _, err := New(config.DefaultDodgerConfig(), size[0], size[1], Deps{}); !errors.Is(err, ErrNoCanvas) {
			t.Errorf("New(%v) error = %v, want ErrNoCanvas", size, err)
		}
	}
}

func TestInitialState(t *testing.T) {
	g, st, _ := newTestGame(t, nil)

	p := g.Player()
	if p.X != testW/2-18 || p.Y != testH-80 || p.W != 36 || p.H != 36 {
		t.Errorf("player = %+v", p)
	}
	if g.State().Phase != core.PhaseIdle {
		t.Errorf("phase = %v, want idle", g.State().Phase)
	}
	if st.last() != MsgReady {
		t.Errorf("status = %q, want %q", st.last(), MsgReady)
	}

	obstacles := g.Obstacles()
	if len(obstacles) != 8 {
		t.Fatalf("pool size = %d, want 8", len(obstacles))
	}
	for i, o := range obstacles {
		// fixedEntropy(0.5): y = -i*90 - 100, size 54x42, speed 220, hue 240.
		if want := -float64(i)*90 - 100; o.Y != want {
			t.Errorf("obstacle %d y = %v, want %v", i, o.Y, want)
		}
		if o.Width != 54 || o.Height != 42 || o.Speed != 220 || o.Hue != 240 {
			t.Errorf("obstacle %d = %+v", i, o)
		}
		if o.X != 0.5*(testW-54) {
			t.Errorf("obstacle %d x = %v", i, o.X)
		}
	}
}

func TestObstacleRanges(t *testing.T) {
	for _, v := range []float64{0, 0.25, 0.999} {
		om := NewObstacleManager(fixedEntropy(v), config.DefaultDodgerConfig().Obstacles)
		om.Reset(testW)
		for _, o := range om.Obstacles() {
			if o.Width < 24 || o.Width >= 84 || o.Height < 24 || o.Height >= 60 {
				t.Errorf("size out of range: %+v", o)
			}
			if o.Speed < 140 || o.Speed >= 300 || o.Hue < 180 || o.Hue >= 300 {
				t.Errorf("speed or hue out of range: %+v", o)
			}
			if o.X < 0 || o.X+o.Width > testW {
				t.Errorf("x out of canvas: %+v", o)
			}
		}
	}
}

func TestStart(t *testing.T) {
	g, st, _ := newTestGame(t, nil)

	g.Start()
	if !g.State().Running() {
		t.Fatal("game should be running")
	}
	if st.last() != MsgRunning {
		t.Errorf("status = %q", st.last())
	}

	g.score = 5
	g.Start()
	if g.Score() != 5 {
		t.Error("Start while running should not reset")
	}
}

func TestUpdateIgnoresBadDeltas(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	g.Start()
	before := g.Obstacles()

	for _, d := range []float64{0, -0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		in := core.NewInputFrame()
		in.Set(core.ActionLeft)
		res := g.Update(d, in)
		if res.Eliminated || res.State.Score != 0 {
			t.Errorf("delta %v changed state: %+v", d, res)
		}
	}

	after := g.Obstacles()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("obstacle %d moved on a bad delta", i)
		}
	}
	if g.Player().X != testW/2-18 {
		t.Error("player moved on a bad delta")
	}
}

func TestUpdateWhileIdle(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	res := g.Update(0.1, core.NewInputFrame())
	if res.State.Score != 0 || res.State.Phase != core.PhaseIdle {
		t.Errorf("idle update changed state: %+v", res.State)
	}
}

func TestPlayerMovementAndClamp(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	g.Start()

	in := core.NewInputFrame()
	in.Set(core.ActionLeft)
	g.Update(0.1, in)
	if want := float64(testW/2-18) - 28; math.Abs(g.Player().X-want) > 1e-9 {
		t.Errorf("x = %v, want %v", g.Player().X, want)
	}

	for i := 0; i < 5; i++ {
		g.movePlayer(1, in)
	}
	if g.Player().X != 0 {
		t.Errorf("x = %v, want clamped to 0", g.Player().X)
	}

	down := core.NewInputFrame()
	down.Set(core.ActionDown)
	down.Set(core.ActionRight)
	for i := 0; i < 10; i++ {
		g.movePlayer(1, down)
	}
	if p := g.Player(); p.X != testW-36 || p.Y != testH-36 {
		t.Errorf("player = %+v, want clamped to bottom-right", p)
	}
}

func TestScoreAccumulates(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	g.Start()

	g.Update(0.25, core.NewInputFrame())
	g.Update(0.25, core.NewInputFrame())
	if g.Score() != 6 {
		t.Errorf("score = %d, want 6 after 0.5s", g.Score())
	}
}

func TestBestScoreOnlyRises(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(storage.KeyBestScore, "50")
	g, _, _ := newTestGame(t, kv)

	if g.Best() != 50 {
		t.Fatalf("best = %d, want 50 loaded", g.Best())
	}

	g.Start()
	g.score = 39.5
	g.Update(0.1, core.NewInputFrame())
	if g.Score() != 40 || g.Best() != 50 {
		t.Errorf("score = %d best = %d, want 40 and 50", g.Score(), g.Best())
	}
	if v, _ := kv.Get(storage.KeyBestScore); v != "50" {
		t.Errorf("stored best = %q, want 50", v)
	}

	g.score = 59.5
	g.Update(0.1, core.NewInputFrame())
	if g.Best() != 60 {
		t.Errorf("best = %d, want 60", g.Best())
	}
	if v, _ := kv.Get(storage.KeyBestScore); v != "60" {
		t.Errorf("stored best = %q, want 60", v)
	}
}

func TestResetGameState(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(storage.KeyBestScore, "75")
	g, st, _ := newTestGame(t, kv)
	g.Start()
	g.score = 12

	g.ResetGameState(false)
	if g.Best() != 75 || g.Score() != 0 {
		t.Errorf("partial reset: best = %d score = %d", g.Best(), g.Score())
	}
	if v, _ := kv.Get(storage.KeyBestScore); v != "75" {
		t.Errorf("partial reset touched stored best: %q", v)
	}
	if g.State().Phase != core.PhaseIdle || st.last() != MsgReady {
		t.Errorf("phase = %v status = %q", g.State().Phase, st.last())
	}

	g.ResetGameState(true)
	if g.Best() != 0 {
		t.Errorf("full reset best = %d, want 0", g.Best())
	}
	if v, err := kv.Get(storage.KeyBestScore); err != nil || v != "0" {
		t.Errorf("stored best = %q, %v; want \"0\"", v, err)
	}
}

func TestMalformedBestScore(t *testing.T) {
	for _, raw := range []string{"abc", "-4", ""} {
		kv := storage.NewMemory()
		_ = kv.Set(storage.KeyBestScore, raw)
		g, _, _ := newTestGame(t, kv)
		if g.Best() != 0 {
			t.Errorf("best for %q = %d, want 0", raw, g.Best())
		}
	}
}

func TestCollisionEndsRun(t *testing.T) {
	g, st, runs := newTestGame(t, nil)
	g.Start()
	g.Update(0.5, core.NewInputFrame())

	p := g.Player()
	g.obstacles.obstacles[3] = Obstacle{X: p.X, Y: p.Y, Width: 20, Height: 20, Speed: 0, Hue: 200}
	untouched := g.obstacles.obstacles[5]

	res := g.Update(0.5, core.NewInputFrame())
	if !res.Eliminated || res.State.Phase != core.PhaseEliminated {
		t.Fatalf("result = %+v, want eliminated", res)
	}
	if st.last() != MsgEliminated {
		t.Errorf("status = %q", st.last())
	}
	if g.obstacles.obstacles[5] != untouched {
		t.Error("obstacles after the hit should not move that frame")
	}
	if len(runs.scores) != 1 || runs.scores[0] != 12 {
		t.Errorf("recorded runs = %v, want [12]", runs.scores)
	}
	if runs.elapsed[0] != time.Second {
		t.Errorf("elapsed = %v, want 1s", runs.elapsed[0])
	}

	if r := g.Update(0.5, core.NewInputFrame()); r.Eliminated || r.State.Score != 12 {
		t.Errorf("update after elimination = %+v", r)
	}

	g.Start()
	if !g.State().Running() || g.Score() != 0 {
		t.Error("Start should begin a fresh run after elimination")
	}
}

func TestTouchingEdgesCollide(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	g.Start()

	p := g.Player()
	g.obstacles.obstacles[0] = Obstacle{X: p.Right(), Y: p.Y, Width: 10, Height: 10}
	if res := g.Update(1e-9, core.NewInputFrame()); !res.Eliminated {
		t.Error("obstacle touching the player's edge should collide")
	}
}

func TestObstaclesRecycleAndPoolStaysFixed(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	g.Start()

	g.obstacles.obstacles[0].Y = testH + 39
	g.player.X = testW // keep clear of the respawned column
	g.clampPlayer()
	g.player.Y = 0

	in := core.NewInputFrame()
	g.Update(0.01, in)
	o := g.Obstacles()[0]
	if o.Y > -120 || o.Y < -280 {
		t.Errorf("recycled y = %v, want within [-280, -120]", o.Y)
	}

	om := NewObstacleManager(fixedEntropy(0.9), config.DefaultDodgerConfig().Obstacles)
	om.Reset(testW)
	far := core.Box{X: -1000, Y: -1000, W: 1, H: 1}
	for i := 0; i < 2000; i++ {
		om.Update(0.05, testW, testH, far)
		if om.Len() != 8 {
			t.Fatalf("pool size = %d after %d frames", om.Len(), i)
		}
	}
}

func TestResizeClampsPlayer(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	g.Resize(100, 60)

	p := g.Player()
	if p.Right() > 100 || p.Bottom() > 60 {
		t.Errorf("player outside resized canvas: %+v", p)
	}
	g.Resize(0, 10)
	if w, h := g.CanvasSize(); w != 100 || h != 60 {
		t.Errorf("zero resize applied: %vx%v", w, h)
	}
}

func TestPersistFailureKeepsBestInMemory(t *testing.T) {
	g, _, _ := newTestGame(t, failingKV{KV: storage.NewMemory()})
	g.Start()
	g.score = 8.9
	g.Update(0.1, core.NewInputFrame())

	if g.Best() != 10 {
		t.Errorf("best = %d, want 10 even when the store rejects writes", g.Best())
	}
}

func TestRender(t *testing.T) {
	g, _, _ := newTestGame(t, nil)
	screen := core.NewScreen(testW/8, testH/16)
	before := g.State()

	g.Render(screen)

	r := g.Player().Cells(8, 16)
	if got := screen.GetCell(r.X+1, r.Y+1); got.Rune != PlayerChar || got.Color != core.ColorBlue {
		t.Errorf("player interior = %+v", got)
	}
	if got := screen.GetCell(r.X, r.Y); got.Color != core.ColorBrightBlue {
		t.Errorf("player outline = %+v", got)
	}
	if g.State() != before {
		t.Error("Render changed game state")
	}
}
