// Package light casts the flashlight: a cone of rays along the aim plus a
// short ring of ambient rays, reflected by mirrors, reporting every block the
// beam reaches and building the lit-area mesh.
package light

import (
	"log"
	"math"

	"chosenoffset.com/lumen/internal/block"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
)

// Config holds beam shape tuning. Distances are in cells.
type Config struct {
	MaxDistance       float64 // cone ray range per segment
	SpotlightDistance float64 // ring ray range per segment
	ReflectionLimit   int     // maximum segments per ray
	TotalDegree       float64 // cone width
	IntervalDegree    float64 // angle between cone rays
	RingRays          int
	MirrorOffset      float64 // push off a mirror along its normal before recasting
	StackScan         float64 // side of the box scanned around a hit block
}

// DefaultConfig returns the stock flashlight
func DefaultConfig() Config {
	return Config{
		MaxDistance:       100,
		SpotlightDistance: 0.4,
		ReflectionLimit:   100,
		TotalDegree:       15,
		IntervalDegree:    2,
		RingRays:          36,
		MirrorOffset:      0.01,
		StackScan:         0.8,
	}
}

// ConeRays returns the number of rays in the cone
func (c Config) ConeRays() int {
	if c.IntervalDegree <= 0 {
		return 1
	}
	return int(math.Floor(c.TotalDegree/c.IntervalDegree)) + 1
}

// Illuminator receives the blocks the beam reached this frame
type Illuminator interface {
	Illuminate(id block.ID)
}

// Segment is one straight leg of a ray
type Segment struct {
	From, To grid.Point
	Depth    int            // number of reflections before this leg
	Collider collision.Body // what ended the leg, nil for a miss
}

// Reflection records a bounce off a mirror
type Reflection struct {
	At      grid.Point
	In, Out grid.Point
	Normal  grid.Point
}

// Trace is everything one ray did
type Trace struct {
	Segments    []Segment
	Reflections []Reflection
	Lit         []block.ID // blocks reached, once per report
}

// Caster fires the flashlight into a collision world
type Caster struct {
	cfg   Config
	world *collision.World
	illum Illuminator
}

// NewCaster creates a caster. illum may be nil, in which case Cast only
// reports what it hit.
func NewCaster(world *collision.World, illum Illuminator, cfg Config) *Caster {
	if cfg.ReflectionLimit < 1 {
		cfg.ReflectionLimit = 1
	}
	return &Caster{cfg: cfg, world: world, illum: illum}
}

// Config returns the caster's tuning
func (c *Caster) Config() Config {
	return c.cfg
}

// Trace follows a single ray from origin along dir for up to dist world
// units per leg. Mirrors reflect it; the first solid body ends it; bodies
// that are currently not solid are passed through but still reported.
// Trace does not modify anything.
func (c *Caster) Trace(origin, dir grid.Point, dist float64) Trace {
	var tr Trace
	dir = dir.Normalize()
	if dir == (grid.Point{}) || dist <= 0 {
		return tr
	}
	offset := c.cfg.MirrorOffset * c.world.Index.CellSize

	for depth := 0; depth < c.cfg.ReflectionLimit; depth++ {
		seg := Segment{From: origin, To: origin.Add(dir.Scale(dist)), Depth: depth}
		reflected := false

		for _, h := range c.world.RaycastAll(origin, dir, dist, collision.LayerHittable) {
			if h.Body.Tag() == collision.TagMirror {
				seg.To = h.Point
				seg.Collider = h.Body
				out := dir.Reflect(h.Normal).Normalize()
				tr.Reflections = append(tr.Reflections, Reflection{At: h.Point, In: dir, Out: out, Normal: h.Normal})
				origin = h.Point.Add(h.Normal.Scale(offset))
				dir = out
				reflected = true
				break
			}

			if h.Body.Ref().Kind == collision.RefBlock {
				tr.report(h.Body)
				tr.scanStack(c.world, h.Body, c.cfg.StackScan)
			}
			if h.Body.Active() {
				seg.To = h.Point
				seg.Collider = h.Body
				break
			}
		}

		tr.Segments = append(tr.Segments, seg)
		if !reflected {
			break
		}
	}
	return tr
}

func (tr *Trace) report(b collision.Body) {
	tr.Lit = append(tr.Lit, block.ID(b.Ref().ID))
}

// scanStack reports every other block sharing the hit block's cell so a
// block and whatever is stacked on it light up together
func (tr *Trace) scanStack(world *collision.World, hit collision.Body, side float64) {
	half := side * world.Index.CellSize / 2
	for _, b := range world.QueryArea(hit.Bounds().Center(), grid.Point{X: half, Y: half}, collision.LayerBlocks) {
		if b == hit || b.Ref().Kind != collision.RefBlock {
			continue
		}
		tr.report(b)
	}
}

// Frame is the result of one flashlight cast
type Frame struct {
	Lit         map[block.ID]int // hit reports per block
	Segments    []Segment
	Reflections []Reflection
	Mesh        Mesh
}

// Cast fires the cone along aim and the ambient ring from origin, reports
// every reached block to the illuminator and builds the light mesh.
// A zero aim points the cone along +X.
func (c *Caster) Cast(origin, aim grid.Point) Frame {
	frame := Frame{Lit: make(map[block.ID]int)}
	cs := c.world.Index.CellSize

	base := 0.0
	if aim != (grid.Point{}) {
		base = math.Atan2(aim.Y, aim.X) * 180 / math.Pi
	}
	start := -c.cfg.TotalDegree / 2

	cone := make([]Trace, c.cfg.ConeRays())
	for i := range cone {
		angle := base + start + float64(i)*c.cfg.IntervalDegree
		cone[i] = c.Trace(origin, unit(angle), c.cfg.MaxDistance*cs)
	}

	ring := make([]Trace, max(c.cfg.RingRays, 0))
	for i := range ring {
		angle := float64(i) * 360 / float64(len(ring))
		ring[i] = c.Trace(origin, unit(angle), c.cfg.SpotlightDistance*cs)
	}

	for _, family := range [][]Trace{cone, ring} {
		for _, tr := range family {
			frame.Segments = append(frame.Segments, tr.Segments...)
			frame.Reflections = append(frame.Reflections, tr.Reflections...)
			for _, id := range tr.Lit {
				frame.Lit[id]++
				if c.illum != nil {
					c.illum.Illuminate(id)
				}
			}
		}
	}

	frame.Mesh.addFamily(cone, false)
	frame.Mesh.addFamily(ring, true)
	if frame.Mesh.Dropped > 0 {
		log.Printf("Warning: light mesh truncated, %d quads dropped", frame.Mesh.Dropped)
	}
	return frame
}

func unit(degrees float64) grid.Point {
	rad := degrees * math.Pi / 180
	return grid.Point{X: math.Cos(rad), Y: math.Sin(rad)}
}
