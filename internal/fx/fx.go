// Package fx carries fire-and-forget visual effect and animation triggers.
package fx

import "chosenoffset.com/lumen/internal/core/grid"

// Effect and animation identifiers fired by the game
const (
	Death      = "death"
	Push       = "push"
	NextLevel  = "next_level"
	LightDrop  = "light_drop"
	SwitchOn   = "switch_on"
	SwitchOff  = "switch_off"
	DoorAppear = "door_appear"
)

// Sink receives particle spawns and animation triggers at a world position
type Sink interface {
	Spawn(id string, at grid.Point)
	Trigger(id string, at grid.Point)
}

// Discard is a Sink that ignores everything
type Discard struct{}

func (Discard) Spawn(string, grid.Point) {}
func (Discard) Trigger(string, grid.Point) {}

// Burst is a short-lived effect being drawn
type Burst struct {
	ID  string
	At  grid.Point
	Age float64 // seconds
}

// Bursts collects spawned effects so the renderer can draw an expanding ring
// for each until it expires. Triggers are recorded the same way.
type Bursts struct {
	Lifetime float64
	active   []Burst
}

// NewBursts creates a collector whose effects last lifetime seconds
func NewBursts(lifetime float64) *Bursts {
	return &Bursts{Lifetime: lifetime}
}

func (b *Bursts) Spawn(id string, at grid.Point) {
	b.active = append(b.active, Burst{ID: id, At: at})
}

func (b *Bursts) Trigger(id string, at grid.Point) {
	b.Spawn(id, at)
}

// Update ages every effect and drops expired ones
func (b *Bursts) Update(dt float64) {
	kept := b.active[:0]
	for _, burst := range b.active {
		burst.Age += dt
		if burst.Age < b.Lifetime {
			kept = append(kept, burst)
		}
	}
	b.active = kept
}

// Active returns the live effects
func (b *Bursts) Active() []Burst {
	return b.active
}

// Clear drops every effect, used on level change
func (b *Bursts) Clear() {
	b.active = nil
}
