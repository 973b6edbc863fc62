package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lumen/internal/core/grid"
)

// testBox is a unit-cell box body for tests
type testBox struct {
	id      int
	center  grid.Point
	active  bool
	layer   Layer
	refKind RefKind
}

func (b *testBox) Ref() Ref { return Ref{Kind: b.refKind, ID: b.id} }
func (b *testBox) Layer() Layer { return b.layer }
func (b *testBox) Tag() Tag { return TagNone }
func (b *testBox) Active() bool { return b.active }
func (b *testBox) Bounds() Rect { return Box(b.center, grid.Point{X: 0.5, Y: 0.5}) }
func (b *testBox) Edges() []Edge { return BoxEdges(b.Bounds()) }

func newBlock(id int, x, y float64) *testBox {
	return &testBox{id: id, center: grid.Point{X: x, Y: y}, active: true, layer: LayerBlocks, refKind: RefBlock}
}

func TestRaycastHitsNearestFaceFirst(t *testing.T) {
	w := NewWorld(grid.NewIndex(1))
	far := newBlock(2, 6.5, 0.5)
	near := newBlock(1, 3.5, 0.5)
	w.Add(far)
	w.Add(near)

	hits := w.RaycastAll(grid.Point{X: 0.5, Y: 0.5}, grid.Point{X: 1, Y: 0}, 100, LayerAll)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Body.Ref().ID)
	assert.InDelta(t, 2.5, hits[0].Distance, 1e-9)
	assert.Equal(t, grid.Point{X: -1, Y: 0}, hits[0].Normal)
	assert.Equal(t, 2, hits[1].Body.Ref().ID)
}

func TestRaycastRespectsDistanceAndMask(t *testing.T) {
	w := NewWorld(grid.NewIndex(1))
	w.Add(newBlock(1, 5.5, 0.5))

	_, ok := w.Raycast(grid.Point{X: 0.5, Y: 0.5}, grid.Point{X: 1, Y: 0}, 3, LayerAll)
	assert.False(t, ok, "block is out of range")

	_, ok = w.Raycast(grid.Point{X: 0.5, Y: 0.5}, grid.Point{X: 1, Y: 0}, 10, LayerStatic)
	assert.False(t, ok, "block layer is masked out")
}

func TestRayStartingInsideBoxLeavesIt(t *testing.T) {
	w := NewWorld(grid.NewIndex(1))
	w.Add(newBlock(1, 0.5, 0.5))

	_, ok := w.Raycast(grid.Point{X: 0.5, Y: 0.5}, grid.Point{X: 0, Y: 1}, 10, LayerAll)
	assert.False(t, ok)
}

func TestMirrorNormalFacesIncomingRay(t *testing.T) {
	w := NewWorld(grid.NewIndex(1))
	w.Add(NewMirror(1, grid.Point{X: 5, Y: -1}, grid.Point{X: 5, Y: 1}))

	h, ok := w.Raycast(grid.Point{}, grid.Point{X: 1, Y: 0}, 10, LayerHittable)
	require.True(t, ok)
	assert.Equal(t, TagMirror, h.Body.Tag())
	assert.InDelta(t, 5, h.Point.X, 1e-9)
	assert.InDelta(t, -1, h.Normal.X, 1e-9)

	h, ok = w.Raycast(grid.Point{X: 9}, grid.Point{X: -1, Y: 0}, 10, LayerHittable)
	require.True(t, ok)
	assert.InDelta(t, 1, h.Normal.X, 1e-9)
}

func TestQueryCellFindsOnlyThatCell(t *testing.T) {
	w := NewWorld(grid.NewIndex(1))
	a := newBlock(1, 2.5, 2.5)
	b := newBlock(2, 3.5, 2.5)
	w.Add(a)
	w.Add(b)

	found := w.QueryCell(grid.Cell{X: 2, Y: 2}, LayerBlocks)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Ref().ID)

	w.Remove(a)
	assert.Empty(t, w.QueryCell(grid.Cell{X: 2, Y: 2}, LayerBlocks))
	assert.Equal(t, 1, w.Len())
}

func TestWallEdgesMergesRoomPerimeter(t *testing.T) {
	tiles := []string{
		"#####",
		"#...#",
		"#####",
	}
	solid := func(x, y int) bool { return tiles[y][x] == '#' }

	regions := WallEdges(5, 3, solid, grid.NewIndex(1))
	require.Len(t, regions, 1)

	// Outer ring (4) plus the inner ring around the 3x1 floor (4)
	assert.Len(t, regions[0], 8)

	w := NewWorld(grid.NewIndex(1))
	w.Add(NewStatic(1, regions[0]))
	h, ok := w.Raycast(grid.Point{X: 2.5, Y: 1.5}, grid.Point{X: 1, Y: 0}, 10, LayerStatic)
	require.True(t, ok)
	assert.InDelta(t, 4, h.Point.X, 1e-9)
}
