package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorldToCellRoundsToNearestCentre(t *testing.T) {
	ix := NewIndex(32)

	tests := []struct {
		name string
		p    Point
		want Cell
	}{
		{"origin", Point{0, 0}, Cell{0, 0}},
		{"centre", Point{16, 16}, Cell{0, 0}},
		{"just inside next", Point{32.01, 5}, Cell{1, 0}},
		{"negative", Point{-1, -40}, Cell{-1, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ix.WorldToCell(tt.p))
		})
	}
}

func TestCellCenterRoundTrip(t *testing.T) {
	ix := NewIndex(2)
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			c := Cell{x, y}
			assert.Equal(t, c, ix.WorldToCell(ix.CellCenter(c)))
		}
	}
}

func TestSnapFixesImpreciseSpawn(t *testing.T) {
	ix := NewIndex(1)
	assert.Equal(t, Point{2.5, 3.5}, ix.Snap(Point{2.93, 3.02}))
}

func TestReflect(t *testing.T) {
	// Straight at a surface reverses exactly.
	out := Point{1, 0}.Reflect(Point{-1, 0})
	assert.Equal(t, Point{-1, 0}, out)

	// 45 degree incidence turns by 90 degrees.
	n := Point{-1, 1}.Normalize()
	out = Point{1, 0}.Reflect(n)
	assert.InDelta(t, 0, out.Dot(Point{1, 0}), 1e-9)
	assert.InDelta(t, 1, out.Len(), 1e-9)
}

func TestDirections(t *testing.T) {
	for _, d := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
		assert.True(t, d.Valid())
		back := d.Delta().Add(d.Opposite().Delta())
		assert.Equal(t, Cell{}, back)
		assert.Equal(t, d, ParseDirection(d.String()))
	}
	assert.False(t, DirNone.Valid())
	assert.InDelta(t, 1.0, DirLeft.Vector().Len(), 1e-12)
	assert.False(t, math.IsNaN(Point{}.Normalize().X))
}
