package light

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lumen/internal/block"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/timer"
)

func newTestWorld() *collision.World {
	return collision.NewWorld(grid.NewIndex(1))
}

func pt(x, y float64) grid.Point {
	return grid.Point{X: x, Y: y}
}

func TestStraightMirrorReversesRay(t *testing.T) {
	w := newTestWorld()
	w.Add(collision.NewMirror(1, pt(5, -1), pt(5, 1)))
	c := NewCaster(w, nil, DefaultConfig())

	tr := c.Trace(pt(0, 0), pt(1, 0), 10)

	require.Len(t, tr.Reflections, 1)
	r := tr.Reflections[0]
	assert.InDelta(t, 5, r.At.X, 1e-9)
	assert.InDelta(t, 0, r.At.Y, 1e-9)
	assert.InDelta(t, -1, r.Out.X, 1e-9)
	assert.InDelta(t, 0, r.Out.Y, 1e-9)

	require.Len(t, tr.Segments, 2)
	assert.InDelta(t, 5, tr.Segments[0].To.X, 1e-9)
	last := tr.Segments[1]
	assert.Equal(t, 1, last.Depth)
	assert.Nil(t, last.Collider, "reflected leg runs out of range")
	assert.InDelta(t, -5, last.To.X, 0.02)
}

func TestDiagonalMirrorTurnsRayByNinetyDegrees(t *testing.T) {
	w := newTestWorld()
	w.Add(collision.NewMirror(1, pt(4, -1), pt(6, 1)))
	c := NewCaster(w, nil, DefaultConfig())

	in := pt(1, 0)
	tr := c.Trace(pt(0, 0), in, 10)

	require.Len(t, tr.Reflections, 1)
	out := tr.Reflections[0].Out
	assert.InDelta(t, 0, in.Dot(out), 1e-9)
	assert.InDelta(t, 1, out.Len(), 1e-9)
}

func TestReflectionLimitBoundsTrace(t *testing.T) {
	w := newTestWorld()
	w.Add(collision.NewMirror(1, pt(5, -1), pt(5, 1)))
	w.Add(collision.NewMirror(2, pt(-5, -1), pt(-5, 1)))
	cfg := DefaultConfig()
	cfg.ReflectionLimit = 10
	c := NewCaster(w, nil, cfg)

	tr := c.Trace(pt(0, 0), pt(1, 0), 100)
	assert.Len(t, tr.Segments, 10)
	assert.Len(t, tr.Reflections, 10)
}

func TestStaticWallStopsRay(t *testing.T) {
	w := newTestWorld()
	w.Add(collision.NewStatic(1, collision.BoxEdges(collision.Box(pt(4.5, 0.5), pt(0.5, 0.5)))))
	c := NewCaster(w, nil, DefaultConfig())

	tr := c.Trace(pt(0.5, 0.5), pt(1, 0), 100)
	require.Len(t, tr.Segments, 1)
	assert.InDelta(t, 4, tr.Segments[0].To.X, 1e-9)
	assert.Empty(t, tr.Lit)
}

type blockFixture struct {
	world *collision.World
	reg   *block.Registry
}

func newBlockFixture() *blockFixture {
	w := newTestWorld()
	return &blockFixture{
		world: w,
		reg:   block.NewRegistry(w, timer.NewScheduler(), block.Services{}, block.DefaultConfig()),
	}
}

func (f *blockFixture) spawn(t *testing.T, x, y int, lightForm block.Kind) *block.Entity {
	t.Helper()
	id, err := f.reg.Spawn(block.Spec{Name: "b", Kind: block.KindWall, Pos: pt(float64(x)+0.5, float64(y)+0.5), LightForm: lightForm})
	require.NoError(t, err)
	e, _ := f.reg.Get(id)
	return e
}

func TestVisibleBlockEndsRayAndIsReported(t *testing.T) {
	f := newBlockFixture()
	near := f.spawn(t, 3, 0, block.KindRepeat)
	far := f.spawn(t, 6, 0, block.KindRepeat)
	c := NewCaster(f.world, nil, DefaultConfig())

	tr := c.Trace(pt(0.5, 0.5), pt(1, 0), 100)
	require.Len(t, tr.Segments, 1)
	assert.InDelta(t, 3, tr.Segments[0].To.X, 1e-9)
	assert.Equal(t, near, tr.Segments[0].Collider)
	assert.Equal(t, []block.ID{near.ID()}, tr.Lit)
	assert.NotContains(t, tr.Lit, far.ID())
}

func TestInvisibleBlockIsPassedThroughButReported(t *testing.T) {
	f := newBlockFixture()
	ghost := f.spawn(t, 3, 0, block.KindEmptySpace)
	far := f.spawn(t, 6, 0, block.KindRepeat)
	f.reg.ShineBlock(ghost.ID())
	c := NewCaster(f.world, nil, DefaultConfig())

	tr := c.Trace(pt(0.5, 0.5), pt(1, 0), 100)
	require.Len(t, tr.Segments, 1)
	assert.InDelta(t, 6, tr.Segments[0].To.X, 1e-9)
	assert.Equal(t, []block.ID{ghost.ID(), far.ID()}, tr.Lit)
}

func TestBeamKeepsBlockShiningThroughItsLightForm(t *testing.T) {
	f := newBlockFixture()
	e := f.spawn(t, 3, 0, block.KindWall)
	cfg := DefaultConfig()
	cfg.RingRays = 0
	c := NewCaster(f.world, f.reg, cfg)
	origin := pt(0.5, 0.5)

	frame := c.Cast(origin, pt(1, 0))
	assert.Positive(t, frame.Lit[e.ID()])
	f.reg.ResolveIllumination()
	require.True(t, e.Shining())
	lf, ok := f.reg.Get(e.LightForm())
	require.True(t, ok)
	assert.True(t, lf.Visible())

	for i := 0; i < 3; i++ {
		c.Cast(origin, pt(1, 0))
		f.reg.ResolveIllumination()
		assert.True(t, e.Shining(), "frame %d", i)
	}

	c.Cast(origin, pt(-1, 0))
	f.reg.ResolveIllumination()
	assert.False(t, e.Shining())
	assert.True(t, e.Visible())
}

func TestCastFiresConeAndRing(t *testing.T) {
	w := newTestWorld()
	cfg := DefaultConfig()
	c := NewCaster(w, nil, cfg)

	assert.Equal(t, 8, cfg.ConeRays())
	frame := c.Cast(pt(0, 0), pt(0, 1))
	assert.Len(t, frame.Segments, 8+36)
	assert.Empty(t, frame.Lit)

	// Cone: 7 quads between 8 rays; ring: 36 quads including the wrap
	assert.Equal(t, (7+36)*2, frame.Mesh.Triangles())
}

func TestMeshBreaksBetweenDifferentColliders(t *testing.T) {
	a := collision.NewStatic(1, nil)
	b := collision.NewStatic(2, nil)
	leg := func(x float64, collider collision.Body) Trace {
		var s Segment
		s.To = pt(x, 5)
		if collider != nil {
			s.Collider = collider
		}
		return Trace{Segments: []Segment{s}}
	}

	var m Mesh
	m.addFamily([]Trace{
		leg(0, a),
		leg(1, a),
		leg(2, b),
		leg(3, nil),
		leg(4, nil),
	}, false)

	// Only a-a and miss-miss neighbours are joined
	assert.Equal(t, 4, m.Triangles())
	require.Len(t, m.Vertices, 8)
	assert.Equal(t, pt(0, 5), m.Vertices[1])
	assert.Equal(t, pt(1, 5), m.Vertices[2])
	assert.Equal(t, pt(3, 5), m.Vertices[5])
}

func TestMeshSkipsRaysWithoutLegAtDepth(t *testing.T) {
	mirror := collision.NewMirror(1, pt(0, 0), pt(1, 0))
	bounced := Trace{Segments: []Segment{{Collider: mirror}, {Depth: 1}}}
	straight := Trace{Segments: []Segment{{Collider: mirror}}}

	var m Mesh
	m.addFamily([]Trace{bounced, straight, bounced}, false)

	// Depth 0: two quads. Depth 1: the middle ray has no leg, so nothing joins.
	assert.Equal(t, 4, m.Triangles())
}

func TestMeshCountsQuadsPastIndexLimit(t *testing.T) {
	legs := make([]Trace, math.MaxUint16/4+3)
	for i := range legs {
		legs[i] = Trace{Segments: []Segment{{From: pt(float64(i), 0), To: pt(float64(i), 5)}}}
	}

	var m Mesh
	m.addFamily(legs, false)

	assert.LessOrEqual(t, len(m.Vertices), math.MaxUint16)
	assert.Equal(t, math.MaxUint16/4, m.Triangles()/2)
	assert.Equal(t, len(legs)-1-math.MaxUint16/4, m.Dropped)
}
