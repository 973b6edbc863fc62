package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lumen/internal/core/grid"
)

func TestBurstsExpire(t *testing.T) {
	b := NewBursts(0.5)
	b.Spawn(Death, grid.Point{X: 1, Y: 2})
	b.Update(0.25)
	b.Trigger(Push, grid.Point{})

	require.Len(t, b.Active(), 2)
	assert.Equal(t, Death, b.Active()[0].ID)
	assert.InDelta(t, 0.25, b.Active()[0].Age, 1e-9)

	b.Update(0.3)
	require.Len(t, b.Active(), 1)
	assert.Equal(t, Push, b.Active()[0].ID)

	b.Clear()
	assert.Empty(t, b.Active())
}
