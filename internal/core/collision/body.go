// Package collision answers "what occupies this cell / this area / this ray"
// over every solid thing in a level: blocks, actors, mirrors and the static
// walls extracted from the tile grid.
package collision

import (
	"chosenoffset.com/lumen/internal/core/grid"
)

// Layer is a bit mask used to filter queries
type Layer uint32

const (
	LayerBlocks Layer = 1 << iota
	LayerStatic
	LayerMirror
	LayerActors

	// LayerHittable is what the flashlight beam can strike
	LayerHittable = LayerBlocks | LayerStatic | LayerMirror
	LayerAll      = ^Layer(0)
)

// Tag marks bodies with special ray behaviour
type Tag string

const (
	TagNone   Tag = ""
	TagMirror Tag = "Mirror"
)

// RefKind identifies what a body belongs to
type RefKind int

const (
	RefNone RefKind = iota
	RefBlock
	RefEnemy
	RefPlayer
	RefStatic
)

// Ref points back at the owner of a body. It is a relation, not ownership:
// owners are looked up by ID and may have been destroyed since.
type Ref struct {
	Kind RefKind
	ID   int
}

// Body is anything registered with a World
type Body interface {
	Ref() Ref
	Layer() Layer
	Tag() Tag
	// Active reports whether the body is currently solid/visible
	Active() bool
	Bounds() Rect
	Edges() []Edge
}

// EdgeSide names the side of a cell an edge was extracted from
type EdgeSide int

const (
	SideTop EdgeSide = iota
	SideRight
	SideBottom
	SideLeft
	SideFree // arbitrary segment such as a diagonal mirror
)

// Edge is a line segment with an outward normal
type Edge struct {
	A, B     grid.Point
	Normal   grid.Point
	Side     EdgeSide
	TwoSided bool
}

// Rect is an axis-aligned box
type Rect struct {
	Min, Max grid.Point
}

// Box builds a rect from a centre and half extents
func Box(center, half grid.Point) Rect {
	return Rect{Min: center.Sub(half), Max: center.Add(half)}
}

// Center returns the centre of r
func (r Rect) Center() grid.Point {
	return grid.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Overlaps reports strict overlap; touching edges do not count
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X < o.Max.X && r.Max.X > o.Min.X &&
		r.Min.Y < o.Max.Y && r.Max.Y > o.Min.Y
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p grid.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// BoxEdges returns the four outward-facing edges of r, clockwise from the top
func BoxEdges(r Rect) []Edge {
	return []Edge{
		{A: grid.Point{X: r.Min.X, Y: r.Min.Y}, B: grid.Point{X: r.Max.X, Y: r.Min.Y}, Normal: grid.Point{X: 0, Y: -1}, Side: SideTop},
		{A: grid.Point{X: r.Max.X, Y: r.Min.Y}, B: grid.Point{X: r.Max.X, Y: r.Max.Y}, Normal: grid.Point{X: 1, Y: 0}, Side: SideRight},
		{A: grid.Point{X: r.Max.X, Y: r.Max.Y}, B: grid.Point{X: r.Min.X, Y: r.Max.Y}, Normal: grid.Point{X: 0, Y: 1}, Side: SideBottom},
		{A: grid.Point{X: r.Min.X, Y: r.Max.Y}, B: grid.Point{X: r.Min.X, Y: r.Min.Y}, Normal: grid.Point{X: -1, Y: 0}, Side: SideLeft},
	}
}

// SegmentBody is an immovable body made of fixed edges: level walls and mirrors
type SegmentBody struct {
	ref   Ref
	layer Layer
	tag   Tag
	edges []Edge
	rect  Rect
}

// NewStatic creates an opaque static body from wall edges
func NewStatic(id int, edges []Edge) *SegmentBody {
	return newSegmentBody(Ref{Kind: RefStatic, ID: id}, LayerStatic, TagNone, edges)
}

// NewMirror creates a two-sided reflective segment from a to b
func NewMirror(id int, a, b grid.Point) *SegmentBody {
	dir := b.Sub(a).Normalize()
	e := Edge{
		A:        a,
		B:        b,
		Normal:   grid.Point{X: dir.Y, Y: -dir.X},
		Side:     SideFree,
		TwoSided: true,
	}
	return newSegmentBody(Ref{Kind: RefStatic, ID: id}, LayerMirror, TagMirror, []Edge{e})
}

func newSegmentBody(ref Ref, layer Layer, tag Tag, edges []Edge) *SegmentBody {
	sb := &SegmentBody{ref: ref, layer: layer, tag: tag, edges: edges}
	if len(edges) > 0 {
		sb.rect = Rect{Min: edges[0].A, Max: edges[0].A}
		for _, e := range edges {
			sb.rect = sb.rect.extend(e.A).extend(e.B)
		}
	}
	return sb
}

func (r Rect) extend(p grid.Point) Rect {
	return Rect{
		Min: grid.Point{X: min(r.Min.X, p.X), Y: min(r.Min.Y, p.Y)},
		Max: grid.Point{X: max(r.Max.X, p.X), Y: max(r.Max.Y, p.Y)},
	}
}

func (s *SegmentBody) Ref() Ref { return s.ref }
func (s *SegmentBody) Layer() Layer { return s.layer }
func (s *SegmentBody) Tag() Tag { return s.tag }
func (s *SegmentBody) Active() bool { return true }
func (s *SegmentBody) Bounds() Rect { return s.rect }
func (s *SegmentBody) Edges() []Edge { return s.edges }
