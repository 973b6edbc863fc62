// Package actor moves the player and the enemies around the grid one cell
// per step, with eased visual positions and the occupancy rules shared with
// pushed blocks.
package actor

import (
	"time"

	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/block"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/fx"
	"chosenoffset.com/lumen/internal/timer"
)

// Config holds actor timing and motion tuning
type Config struct {
	MoveCooldown time.Duration // minimum time between two player steps
	RestartDelay time.Duration // time between death and level restart
	PlayerLerp   float64
	EnemyLerp    float64
}

// DefaultConfig returns the stock tuning
func DefaultConfig() Config {
	return Config{
		MoveCooldown: 100 * time.Millisecond,
		RestartDelay: time.Second,
		PlayerLerp:   0.35,
		EnemyLerp:    0.1,
	}
}

// Restarter is the part of the level lifecycle a death triggers
type Restarter interface {
	RestartLevel()
}

// Env is the level state actors read and act on
type Env struct {
	World    *collision.World
	Blocks   *block.Registry
	Timers   *timer.Scheduler
	Audio    audio.Sink
	FX       fx.Sink
	Dialogue dialogue.Service
	Scene    Restarter
}

func (env *Env) inDialogue() bool {
	return env.Dialogue != nil && env.Dialogue.IsDialogueActive()
}

func (env *Env) playEffect(e audio.Effect) {
	if env.Audio != nil {
		env.Audio.PlayEffect(e)
	}
}

func (env *Env) spawnFX(id string, at grid.Point) {
	if env.FX != nil {
		env.FX.Spawn(id, at)
	}
}

func (env *Env) triggerFX(id string, at grid.Point) {
	if env.FX != nil {
		env.FX.Trigger(id, at)
	}
}

// occupied reports whether c is terrain, a visible block or an enemy stands
// on it, or it was vacated by a push too recently
func (env *Env) occupied(c grid.Cell) bool {
	if env.Blocks.Solid(c) {
		return true
	}
	if _, ok := env.Blocks.VisibleBlockAt(c, block.NoID); ok {
		return true
	}
	return env.Blocks.EnemyAt(c) || env.Blocks.Reserved(c)
}

// playerAt reports whether the living player stands on c
func (env *Env) playerAt(c grid.Cell) bool {
	for _, b := range env.World.QueryCell(c, collision.LayerActors) {
		if b.Active() && b.Ref().Kind == collision.RefPlayer {
			return true
		}
	}
	return false
}

// Mover is the grid-step state shared by the player and enemies.
// cell is authoritative; pos eases towards target for drawing.
type Mover struct {
	index  *grid.Index
	cell   grid.Cell
	pos    grid.Point
	target grid.Point
	facing grid.Direction
	lerp   float64
}

func newMover(index *grid.Index, at grid.Point, facing grid.Direction, lerp float64) Mover {
	cell := index.WorldToCell(at)
	center := index.CellCenter(cell)
	return Mover{index: index, cell: cell, pos: center, target: center, facing: facing, lerp: lerp}
}

func (m *Mover) Cell() grid.Cell { return m.cell }
func (m *Mover) Pos() grid.Point { return m.pos }
func (m *Mover) Target() grid.Point { return m.target }
func (m *Mover) Facing() grid.Direction { return m.facing }

// place moves the authoritative cell; the drawn position follows over frames
func (m *Mover) place(c grid.Cell) {
	m.cell = c
	m.target = m.index.CellCenter(c)
}

// Interpolate eases the drawn position towards the target
func (m *Mover) Interpolate() {
	if m.pos == m.target {
		return
	}
	m.pos = m.pos.Lerp(m.target, m.lerp)
	if grid.Distance(m.pos, m.target) < 1e-3 {
		m.pos = m.target
	}
}

// Bounds is the full cell the actor occupies
func (m *Mover) Bounds() collision.Rect {
	half := m.index.CellSize / 2
	return collision.Box(m.index.CellCenter(m.cell), grid.Point{X: half, Y: half})
}

func (m *Mover) Edges() []collision.Edge {
	return collision.BoxEdges(m.Bounds())
}

func (m *Mover) Layer() collision.Layer { return collision.LayerActors }
func (m *Mover) Tag() collision.Tag { return collision.TagNone }
