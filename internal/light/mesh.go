package light

import (
	"math"

	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
)

// Mesh is the lit area as an indexed triangle list in world space
type Mesh struct {
	Vertices []grid.Point
	Indices  []uint16

	// Dropped counts quads left out once 16-bit indices ran out
	Dropped int
}

// Triangles returns the number of triangles in the mesh
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// addFamily joins the legs of consecutive rays at the same reflection depth
// into quads. A nil entry in the strip breaks the surface wherever two
// neighbouring rays ended on different colliders, or one of them has no leg
// at that depth. Ring families also join their last ray to their first.
func (m *Mesh) addFamily(traces []Trace, wrap bool) {
	if len(traces) < 2 {
		return
	}

	maxDepth := 0
	for _, tr := range traces {
		maxDepth = max(maxDepth, len(tr.Segments))
	}

	for depth := 0; depth < maxDepth; depth++ {
		var strip []*Segment
		for i := range traces {
			seg := segmentAt(traces[i], depth)
			if len(strip) > 0 {
				prev := strip[len(strip)-1]
				if prev != nil && (seg == nil || !sameCollider(prev.Collider, seg.Collider)) {
					strip = append(strip, nil)
				}
			}
			if seg != nil {
				strip = append(strip, seg)
			}
		}

		for i := 0; i+1 < len(strip); i++ {
			if strip[i] != nil && strip[i+1] != nil {
				m.addQuad(strip[i], strip[i+1])
			}
		}

		if wrap {
			first := segmentAt(traces[0], depth)
			last := segmentAt(traces[len(traces)-1], depth)
			if first != nil && last != nil && sameCollider(first.Collider, last.Collider) {
				m.addQuad(last, first)
			}
		}
	}
}

func segmentAt(tr Trace, depth int) *Segment {
	if depth >= len(tr.Segments) {
		return nil
	}
	return &tr.Segments[depth]
}

func sameCollider(a, b collision.Body) bool {
	return a == b
}

// addQuad appends the quad between two neighbouring legs as two triangles
func (m *Mesh) addQuad(a, b *Segment) {
	if len(m.Vertices)+4 > math.MaxUint16 {
		m.Dropped++
		return
	}
	base := uint16(len(m.Vertices))
	m.Vertices = append(m.Vertices, a.From, a.To, b.To, b.From)
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}
