package game

import (
	"chosenoffset.com/lumen/internal/actor"
	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/core/grid"
)

// Flashlight is the beam source. While held it follows the player and aims
// at the pointer; once dropped it stays put and keeps its last aim until the
// player picks it up again from its cell or a neighbouring one.
type Flashlight struct {
	held    bool
	dropped grid.Point
	cell    grid.Cell
	aim     grid.Point
}

// NewFlashlight returns a held flashlight aimed along +X
func NewFlashlight() *Flashlight {
	return &Flashlight{held: true, aim: grid.Point{X: 1}}
}

// Held reports whether the player carries the flashlight
func (f *Flashlight) Held() bool { return f.held }

// Aim returns the unit beam direction
func (f *Flashlight) Aim() grid.Point { return f.aim }

// Origin returns where the beam starts
func (f *Flashlight) Origin(p *actor.Player) grid.Point {
	if f.held {
		return p.Pos()
	}
	return f.dropped
}

// PointAt turns a held flashlight towards target. A target on the origin
// keeps the previous aim.
func (f *Flashlight) PointAt(origin, target grid.Point) {
	if !f.held {
		return
	}
	d := target.Sub(origin)
	if d == (grid.Point{}) {
		return
	}
	f.aim = d.Normalize()
}

// Toggle drops a held flashlight at the player, or picks a dropped one up
// when the player is close enough. It reports whether anything changed.
func (f *Flashlight) Toggle(p *actor.Player, sink audio.Sink) bool {
	if f.held {
		f.held = false
		f.dropped = p.Target()
		f.cell = p.Cell()
		sink.PlayEffect(audio.EffectLightDrop)
		return true
	}

	d := p.Cell().Add(grid.Cell{X: -f.cell.X, Y: -f.cell.Y})
	if abs(d.X)+abs(d.Y) > 1 {
		return false
	}
	f.held = true
	sink.PlayEffect(audio.EffectLightPickup)
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
