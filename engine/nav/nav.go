package nav

import (
	"container/heap"
	"fmt"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/math"
	"github.com/spaghettifunk/ember/engine/scene"
)

// Manager owns the navigation surface: a flat grid on the XZ plane with cells
// blocked by static rigid bodies. Rebuilt from scratch on every scene init.
type Manager struct {
	grid        *Grid
	cellSize    float32
	gridExtent  int
	initialized bool
}

func NewManager() *Manager {
	return &Manager{
		cellSize:   1.0,
		gridExtent: 64,
	}
}

func (m *Manager) Initialize() error {
	if m.initialized {
		return nil
	}
	m.grid = NewGrid(m.gridExtent, m.cellSize)
	m.initialized = true
	core.LogInfo("Nav manager initialized")
	return nil
}

// RebuildFromScene recomputes the nav surface, blocking the footprint of
// every static rigid body.
func (m *Manager) RebuildFromScene(s *scene.Scene) error {
	if !m.initialized {
		return fmt.Errorf("nav manager is not initialized")
	}
	m.grid = NewGrid(m.gridExtent, m.cellSize)
	for _, entity := range s.Entities {
		c := entity.Component("rigidbody")
		if c == nil {
			continue
		}
		rb, ok := c.(*scene.RigidBodyComponent)
		if !ok || !rb.Static {
			continue
		}
		m.grid.BlockFootprint(entity.Transform.WorldPosition(), rb.Extents)
	}
	core.LogDebug("Nav surface rebuilt for scene %s", s.Name)
	return nil
}

// FindPath runs A* between two world positions. Returns the sequence of
// world-space waypoints, or an error when no route exists.
func (m *Manager) FindPath(from, to math.Vec3) ([]math.Vec3, error) {
	if !m.initialized {
		return nil, fmt.Errorf("nav manager is not initialized")
	}
	return m.grid.FindPath(from, to)
}

func (m *Manager) Shutdown() error {
	m.grid = nil
	m.initialized = false
	return nil
}

// Grid is a square walkability grid centered on the origin.
type Grid struct {
	extent   int // cells per side
	cellSize float32
	blocked  []bool
}

func NewGrid(extent int, cellSize float32) *Grid {
	return &Grid{
		extent:   extent,
		cellSize: cellSize,
		blocked:  make([]bool, extent*extent),
	}
}

func (g *Grid) index(cx, cz int) (int, bool) {
	if cx < 0 || cz < 0 || cx >= g.extent || cz >= g.extent {
		return 0, false
	}
	return cz*g.extent + cx, true
}

func (g *Grid) cellOf(pos math.Vec3) (int, int) {
	half := float32(g.extent) * g.cellSize * 0.5
	cx := int((pos.X + half) / g.cellSize)
	cz := int((pos.Z + half) / g.cellSize)
	return cx, cz
}

func (g *Grid) cellCenter(cx, cz int) math.Vec3 {
	half := float32(g.extent) * g.cellSize * 0.5
	return math.NewVec3(
		float32(cx)*g.cellSize-half+g.cellSize*0.5,
		0,
		float32(cz)*g.cellSize-half+g.cellSize*0.5,
	)
}

// BlockFootprint marks every cell under the box footprint as unwalkable.
func (g *Grid) BlockFootprint(center math.Vec3, extents math.Vec3) {
	half := extents.MulScalar(0.5)
	minX, minZ := g.cellOf(center.Sub(half))
	maxX, maxZ := g.cellOf(center.Add(half))
	for cz := minZ; cz <= maxZ; cz++ {
		for cx := minX; cx <= maxX; cx++ {
			if i, ok := g.index(cx, cz); ok {
				g.blocked[i] = true
			}
		}
	}
}

func (g *Grid) Walkable(cx, cz int) bool {
	i, ok := g.index(cx, cz)
	return ok && !g.blocked[i]
}

type pathNode struct {
	cx, cz int
	cost   float32
	index  int
}

type nodeQueue []*pathNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(*pathNode)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// FindPath is 4-connected A* with a Manhattan heuristic.
func (g *Grid) FindPath(from, to math.Vec3) ([]math.Vec3, error) {
	startX, startZ := g.cellOf(from)
	goalX, goalZ := g.cellOf(to)

	if !g.Walkable(startX, startZ) {
		return nil, fmt.Errorf("path start is not on the nav surface")
	}
	if !g.Walkable(goalX, goalZ) {
		return nil, fmt.Errorf("path goal is not on the nav surface")
	}

	heuristic := func(cx, cz int) float32 {
		dx := cx - goalX
		if dx < 0 {
			dx = -dx
		}
		dz := cz - goalZ
		if dz < 0 {
			dz = -dz
		}
		return float32(dx + dz)
	}

	key := func(cx, cz int) int { return cz*g.extent + cx }
	gScore := map[int]float32{key(startX, startZ): 0}
	cameFrom := map[int]int{}

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, &pathNode{cx: startX, cz: startZ, cost: heuristic(startX, startZ)})

	neighbors := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.cx == goalX && current.cz == goalZ {
			// Reconstruct from the goal backwards.
			path := []math.Vec3{g.cellCenter(goalX, goalZ)}
			k := key(goalX, goalZ)
			for k != key(startX, startZ) {
				k = cameFrom[k]
				cx := k % g.extent
				cz := k / g.extent
				path = append([]math.Vec3{g.cellCenter(cx, cz)}, path...)
			}
			return path, nil
		}

		for _, n := range neighbors {
			nx, nz := current.cx+n[0], current.cz+n[1]
			if !g.Walkable(nx, nz) {
				continue
			}
			tentative := gScore[key(current.cx, current.cz)] + 1
			nk := key(nx, nz)
			if existing, seen := gScore[nk]; !seen || tentative < existing {
				gScore[nk] = tentative
				cameFrom[nk] = key(current.cx, current.cz)
				heap.Push(open, &pathNode{cx: nx, cz: nz, cost: tentative + heuristic(nx, nz)})
			}
		}
	}

	return nil, fmt.Errorf("no path between (%d,%d) and (%d,%d)", startX, startZ, goalX, goalZ)
}
