package actor

import (
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
)

// Enemy is anything that takes a step each time the player does
type Enemy interface {
	collision.Body
	Step(playerDir grid.Direction)
	Interpolate()
	Cell() grid.Cell
	Pos() grid.Point
	Facing() grid.Direction
}

// Crawler walks back and forth along its direction. It walks onto the
// player, pushes movable blocks out of its way, turns around at anything
// else, and waits when boxed in from both sides.
type Crawler struct {
	Mover
	env *Env
	id  int
}

// NewCrawler spawns a crawler heading in dir and registers it with the world
func NewCrawler(env *Env, cfg Config, id int, at grid.Point, dir grid.Direction) *Crawler {
	if !dir.Valid() {
		dir = grid.DirRight
	}
	c := &Crawler{Mover: newMover(env.World.Index, at, dir, cfg.EnemyLerp), env: env, id: id}
	env.World.Add(c)
	return c
}

func (c *Crawler) Ref() collision.Ref { return collision.Ref{Kind: collision.RefEnemy, ID: c.id} }
func (c *Crawler) Active() bool { return true }

// Step takes one turn
func (c *Crawler) Step(grid.Direction) {
	ahead := c.cell.Add(c.facing.Delta())

	if c.env.playerAt(ahead) {
		c.place(ahead)
		return
	}

	if e, ok := c.env.Blocks.VisibleBlockAt(ahead, 0); ok && e.Movable() {
		pushed := e.ID()
		if e.IsLightForm() {
			pushed = e.Parent()
		}
		if c.env.Blocks.CanMove(pushed, c.facing) {
			c.env.Blocks.Interact(e.ID(), c.Ref(), c.facing)
			return
		}
	}

	if c.env.occupied(ahead) {
		c.facing = c.facing.Opposite()
		behind := c.cell.Add(c.facing.Delta())
		if c.env.occupied(behind) {
			// Cornered
			return
		}
		ahead = behind
	}
	c.place(ahead)
}

// Copier repeats the player's steps, optionally mirrored on one axis
type Copier struct {
	Mover
	env *Env
	id  int

	InvertHorizontal bool
	InvertVertical   bool
}

// NewCopier spawns a copier and registers it with the world
func NewCopier(env *Env, cfg Config, id int, at grid.Point, invertH, invertV bool) *Copier {
	c := &Copier{
		Mover:            newMover(env.World.Index, at, grid.DirRight, cfg.EnemyLerp),
		env:              env,
		id:               id,
		InvertHorizontal: invertH,
		InvertVertical:   invertV,
	}
	env.World.Add(c)
	return c
}

func (c *Copier) Ref() collision.Ref { return collision.Ref{Kind: collision.RefEnemy, ID: c.id} }
func (c *Copier) Active() bool { return true }

// Step moves in the player's direction when the cell is free
func (c *Copier) Step(playerDir grid.Direction) {
	dir := c.mirror(playerDir)
	if !dir.Valid() {
		return
	}
	c.facing = dir
	dest := c.cell.Add(dir.Delta())
	if c.env.occupied(dest) {
		return
	}
	c.place(dest)
}

func (c *Copier) mirror(d grid.Direction) grid.Direction {
	horizontal := d == grid.DirLeft || d == grid.DirRight
	switch {
	case c.InvertHorizontal && horizontal:
		return d.Opposite()
	case !c.InvertHorizontal && c.InvertVertical && !horizontal:
		return d.Opposite()
	}
	return d
}

// Squad steps every enemy of a level together
type Squad struct {
	enemies []Enemy
}

// Add appends an enemy to the squad
func (s *Squad) Add(e Enemy) {
	s.enemies = append(s.enemies, e)
}

// Enemies returns the squad members in spawn order
func (s *Squad) Enemies() []Enemy {
	return s.enemies
}

// Step gives every enemy its turn
func (s *Squad) Step(playerDir grid.Direction) {
	for _, e := range s.enemies {
		e.Step(playerDir)
	}
}

// Interpolate eases every enemy towards its target
func (s *Squad) Interpolate() {
	for _, e := range s.enemies {
		e.Interpolate()
	}
}
