package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/ember/engine/math"
)

func TestGridStraightPath(t *testing.T) {
	g := NewGrid(16, 1.0)

	path, err := g.FindPath(math.NewVec3(-3.5, 0, 0.5), math.NewVec3(3.5, 0, 0.5))
	require.NoError(t, err)
	require.NotEmpty(t, path)

	// 4-connected steps of one cell each: seven moves, eight waypoints.
	assert.Len(t, path, 8)
	assert.InDelta(t, -3.5, float64(path[0].X), 1e-5)
	assert.InDelta(t, 3.5, float64(path[len(path)-1].X), 1e-5)
}

func TestGridPathAroundObstacle(t *testing.T) {
	g := NewGrid(16, 1.0)

	// A wall across the direct route, with a gap far to the side.
	g.BlockFootprint(math.NewVec3(0, 0, 0), math.NewVec3(1, 1, 10))

	path, err := g.FindPath(math.NewVec3(-3.5, 0, 0.5), math.NewVec3(3.5, 0, 0.5))
	require.NoError(t, err)

	// Detouring costs more than the straight line.
	assert.Greater(t, len(path), 8)
	for _, wp := range path {
		cx, cz := g.cellOf(wp)
		assert.True(t, g.Walkable(cx, cz))
	}
}

func TestGridNoPathWhenWalled(t *testing.T) {
	g := NewGrid(8, 1.0)

	// Wall spanning the whole grid.
	g.BlockFootprint(math.NewVec3(0, 0, 0), math.NewVec3(1, 1, 100))

	_, err := g.FindPath(math.NewVec3(-2.5, 0, 0.5), math.NewVec3(2.5, 0, 0.5))
	assert.Error(t, err)
}

func TestGridRejectsBlockedEndpoints(t *testing.T) {
	g := NewGrid(8, 1.0)
	g.BlockFootprint(math.NewVec3(2.5, 0, 0.5), math.NewVec3(0.5, 1, 0.5))

	_, err := g.FindPath(math.NewVec3(-2.5, 0, 0.5), math.NewVec3(2.5, 0, 0.5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goal")

	_, err = g.FindPath(math.NewVec3(2.5, 0, 0.5), math.NewVec3(-2.5, 0, 0.5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start")
}

func TestManagerRequiresInitialize(t *testing.T) {
	m := NewManager()

	_, err := m.FindPath(math.NewVec3Zero(), math.NewVec3(1, 0, 0))
	assert.Error(t, err)

	require.NoError(t, m.Initialize())
	_, err = m.FindPath(math.NewVec3(0.5, 0, 0.5), math.NewVec3(2.5, 0, 0.5))
	assert.NoError(t, err)
}
