package dodger

import (
	"github.com/vovakirdan/reflex-dodger/internal/config"
	"github.com/vovakirdan/reflex-dodger/internal/core"
)

// Obstacle is one falling rectangle, in canvas pixels.
type Obstacle struct {
	X, Y          float64
	Width, Height float64
	Speed         float64 // Pixels per second
	Hue           float64 // Degrees
}

// Box returns the collision box.
func (o Obstacle) Box() core.Box {
	return core.Box{X: o.X, Y: o.Y, W: o.Width, H: o.Height}
}

// ObstacleManager owns the fixed-size pool. Obstacles are never added or
// removed after Reset; those falling off the bottom are respawned above
// the top with fresh random size, speed and hue.
type ObstacleManager struct {
	obstacles []Obstacle
	rng       core.Entropy
	cfg       config.ObstacleConfig
}

// NewObstacleManager creates an empty pool. Call Reset to fill it.
func NewObstacleManager(rng core.Entropy, cfg config.ObstacleConfig) *ObstacleManager {
	return &ObstacleManager{
		obstacles: make([]Obstacle, 0, cfg.Count),
		rng:       rng,
		cfg:       cfg,
	}
}

// Reset respawns the whole pool with staggered offsets above the canvas.
func (om *ObstacleManager) Reset(canvasW float64) {
	om.obstacles = om.obstacles[:0]
	for i := 0; i < om.cfg.Count; i++ {
		y := -float64(i)*om.cfg.SpawnSpacing - om.rng.Float64()*om.cfg.SpawnJitter
		om.obstacles = append(om.obstacles, om.spawn(canvasW, y))
	}
}

func (om *ObstacleManager) spawn(canvasW, y float64) Obstacle {
	width := om.cfg.MinWidth + om.rng.Float64()*om.cfg.WidthRange
	height := om.cfg.MinHeight + om.rng.Float64()*om.cfg.HeightRange
	speed := om.cfg.MinSpeed + om.rng.Float64()*om.cfg.SpeedRange
	return Obstacle{
		X:      om.rng.Float64() * (canvasW - width),
		Y:      y,
		Width:  width,
		Height: height,
		Speed:  speed,
		Hue:    om.cfg.MinHue + om.rng.Float64()*om.cfg.HueRange,
	}
}

// Update moves every obstacle down and checks it against the player.
// It stops at the first hit, leaving later obstacles untouched this frame.
func (om *ObstacleManager) Update(delta, canvasW, canvasH float64, player core.Box) (hit bool) {
	for i := range om.obstacles {
		o := &om.obstacles[i]
		o.Y += o.Speed * delta
		if o.Y > canvasH+om.cfg.RecycleMargin {
			*o = om.spawn(canvasW, -om.cfg.RespawnOffset-om.rng.Float64()*om.cfg.RespawnJitter)
		}
		if o.Box().Overlaps(player) {
			return true
		}
	}
	return false
}

// Obstacles returns a copy of the pool.
func (om *ObstacleManager) Obstacles() []Obstacle {
	return append([]Obstacle(nil), om.obstacles...)
}

// Len returns the pool size.
func (om *ObstacleManager) Len() int {
	return len(om.obstacles)
}
