package collision

import (
	"sort"

	"chosenoffset.com/lumen/internal/core/grid"
)

// World holds every body of the current level
type World struct {
	Index  *grid.Index
	bodies []Body
}

// NewWorld creates an empty world over the given grid
func NewWorld(index *grid.Index) *World {
	return &World{Index: index}
}

// Add registers a body
func (w *World) Add(b Body) {
	if b == nil {
		return
	}
	w.bodies = append(w.bodies, b)
}

// Remove unregisters a body. Removing an unknown body is a no-op.
func (w *World) Remove(b Body) {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// Bodies returns all registered bodies in insertion order
func (w *World) Bodies() []Body {
	return w.bodies
}

// Len returns the number of registered bodies
func (w *World) Len() int {
	return len(w.bodies)
}

// QueryArea returns every body on a layer in mask whose bounds overlap the
// box at center with the given half extents. Inactive bodies are included;
// callers decide whether visibility matters for their check.
func (w *World) QueryArea(center, half grid.Point, mask Layer) []Body {
	area := Box(center, half)
	var out []Body
	for _, b := range w.bodies {
		if b.Layer()&mask == 0 {
			continue
		}
		if area.Overlaps(b.Bounds()) {
			out = append(out, b)
		}
	}
	return out
}

// QueryCell probes a small box at the centre of c, the grid equivalent of an
// overlap test with a 0.1-cell box
func (w *World) QueryCell(c grid.Cell, mask Layer) []Body {
	half := w.Index.CellSize * 0.05
	return w.QueryArea(w.Index.CellCenter(c), grid.Point{X: half, Y: half}, mask)
}

// Hit describes one ray intersection
type Hit struct {
	Body     Body
	Point    grid.Point
	Normal   grid.Point
	Distance float64
}

// RaycastAll returns every body on mask hit by the ray within dist, nearest
// first. Each body is reported once, at its nearest front-facing edge.
func (w *World) RaycastAll(origin, dir grid.Point, dist float64, mask Layer) []Hit {
	dir = dir.Normalize()
	if dir == (grid.Point{}) || dist <= 0 {
		return nil
	}

	var hits []Hit
	for _, b := range w.bodies {
		if b.Layer()&mask == 0 {
			continue
		}
		if h, ok := castBody(origin, dir, dist, b); ok {
			hits = append(hits, h)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// Raycast returns the nearest hit, if any
func (w *World) Raycast(origin, dir grid.Point, dist float64, mask Layer) (Hit, bool) {
	hits := w.RaycastAll(origin, dir, dist, mask)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}
