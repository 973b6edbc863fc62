package game

import (
	"chosenoffset.com/lumen/internal/core/grid"
)

// Intent is one frame of player input
type Intent struct {
	Move        grid.Direction // DirNone for no step
	Interact    bool           // use the facing cell, or advance dialogue
	Advance     bool           // advance dialogue only
	ToggleLight bool           // drop or pick up the flashlight
	Pause       bool
	Restart     bool

	Pointer    grid.Point // in world coordinates
	HasPointer bool
}

// Camera is the world position drawn at the screen's top-left corner
type Camera struct {
	X, Y float64
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}
