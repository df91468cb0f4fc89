// Package timecontrol implements the time-control collaborator GameState
// depends on and the per-move time allocation formula the search driver
// uses: a budget derived from remaining time and an estimate of moves
// left, scaled down by a fixed safety margin.
package timecontrol

import (
	"sync"
	"time"

	"github.com/sente-ai/gozero/board"
)

// Settings configures a Controller, mirroring the GTP-like
// time_settings main byo byo_stones contract.
type Settings struct {
	Main       time.Duration
	ByoTime    time.Duration
	ByoStones  int
	ByoPeriods int
}

// perColor tracks one side's remaining clock.
type perColor struct {
	main      time.Duration
	byoTime   time.Duration
	byoStones int
	running   bool
	lastStart time.Time
}

// Controller is a black-box main-time-plus-byoyomi clock for both colors,
// implementing board.TimeController.
type Controller struct {
	mu       sync.Mutex
	settings Settings
	clocks   map[board.Color]*perColor
}

// New creates a Controller with the given settings already applied to
// both colors.
func New(s Settings) *Controller {
	c := &Controller{clocks: make(map[board.Color]*perColor, 2)}
	c.Set(s.Main.Seconds(), s.ByoTime.Seconds(), s.ByoStones, s.ByoPeriods)
	return c
}

func (c *Controller) clock(color board.Color) *perColor {
	pc, ok := c.clocks[color]
	if !ok {
		pc = &perColor{main: c.settings.Main, byoTime: c.settings.ByoTime, byoStones: c.settings.ByoStones}
		c.clocks[color] = pc
	}
	return pc
}

// Set installs new time-control parameters for both colors, matching
// GTP's set(main, byo_time, byo_stones, byo_periods).
func (c *Controller) Set(main, byoTime float64, byoStones, byoPeriods int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = Settings{
		Main:       durationSeconds(main),
		ByoTime:    durationSeconds(byoTime),
		ByoStones:  byoStones,
		ByoPeriods: byoPeriods,
	}
	c.clocks = make(map[board.Color]*perColor, 2)
}

// Start marks color's clock as running.
func (c *Controller) Start(color board.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.clock(color)
	pc.running = true
	pc.lastStart = time.Now()
}

// Stop halts color's clock and subtracts the elapsed time.
func (c *Controller) Stop(color board.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.clock(color)
	if !pc.running {
		return
	}
	elapsed := time.Since(pc.lastStart)
	pc.running = false
	c.deduct(pc, elapsed)
}

func (c *Controller) deduct(pc *perColor, elapsed time.Duration) {
	if pc.main > 0 {
		if elapsed <= pc.main {
			pc.main -= elapsed
			return
		}
		elapsed -= pc.main
		pc.main = 0
	}
	pc.byoTime -= elapsed
	if pc.byoTime <= 0 && pc.byoStones > 0 {
		pc.byoTime = c.settings.ByoTime
	}
}

// Adjust directly overrides color's remaining clock, matching GTP's
// adjust(color, time, stones) — used to apply a time_left command.
func (c *Controller) Adjust(color board.Color, remaining float64, stones int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.clock(color)
	if stones == 0 {
		pc.main = durationSeconds(remaining)
		pc.byoTime = 0
		pc.byoStones = 0
	} else {
		pc.main = 0
		pc.byoTime = durationSeconds(remaining)
		pc.byoStones = stones
	}
}

// Remaining reports the clock currently running for color (main time if
// still positive, else the byoyomi period) and the stones left in the
// current byoyomi period.
func (c *Controller) Remaining(color board.Color) (remaining time.Duration, stones int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.clock(color)
	if pc.main > 0 {
		return pc.main, 0
	}
	return pc.byoTime, pc.byoStones
}

// Allocate computes the time budget for the next move given a
// moves-left estimate k (boardsize is a reasonable empty-middlegame
// heuristic), clamped to leave a safety margin so the engine never
// flags.
func (c *Controller) Allocate(color board.Color, k int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.clock(color)

	if k < 1 {
		k = 1
	}

	var budget time.Duration
	if pc.main > 0 {
		budget = pc.main / time.Duration(k)
	}
	if pc.byoStones > 0 && pc.byoTime > 0 {
		budget += pc.byoTime / time.Duration(pc.byoStones)
	}

	const safetyMargin = 0.95
	budget = time.Duration(float64(budget) * safetyMargin)
	if budget < 0 {
		budget = 0
	}
	return budget
}

func durationSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
