package dodger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Console is the in-game developer console. Every command is evaluated
// against the live game; the host wraps it with the sentinel's evaluator
// trap before exposing it.
type Console struct {
	game *Game
}

// NewConsole creates a console bound to g.
func NewConsole(g *Game) *Console {
	return &Console{game: g}
}

const consoleHelp = "commands: help | state | score <n> | speed <px/s>"

// Eval runs one console command and returns its output.
func (c *Console) Eval(input string) (string, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		return consoleHelp, nil

	case "state":
		s := c.game.State()
		return fmt.Sprintf("phase=%s score=%d best=%d speed=%.0f obstacles=%d",
			s.Phase, s.Score, s.Best, c.game.speed, c.game.obstacles.Len()), nil

	case "score":
		n, err := argFloat(fields)
		if err != nil {
			return "", err
		}
		c.game.score = n
		return fmt.Sprintf("score set to %d", c.game.Score()), nil

	case "speed":
		n, err := argFloat(fields)
		if err != nil {
			return "", err
		}
		if n <= 0 {
			return "", fmt.Errorf("speed must be positive")
		}
		c.game.speed = n
		return fmt.Sprintf("player speed set to %.0f", n), nil

	default:
		return "", fmt.Errorf("unknown command %q (try help)", fields[0])
	}
}

func argFloat(fields []string) (float64, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("%s needs a number", fields[0])
	}
	n, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fields[0], err)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, fmt.Errorf("%s: %v is out of range", fields[0], n)
	}
	return n, nil
}
