package physics

import (
	"github.com/spaghettifunk/ember/engine/math"
)

// Body is a rigid body proxy over a scene entity's transform. The solver here
// is intentionally tiny: gravity integration and axis-aligned boxes. Entities
// own their transforms; bodies only write positions back.
type Body struct {
	EntityID  uint32
	Transform *math.Transform
	Velocity  math.Vec3
	Mass      float32
	Extents   math.Vec3
	Static    bool
}

// AABB returns the body's world-space bounds.
func (b *Body) AABB() math.Extents3D {
	half := b.Extents.MulScalar(0.5)
	pos := b.Transform.WorldPosition()
	return math.Extents3D{
		Min: pos.Sub(half),
		Max: pos.Add(half),
	}
}

type World struct {
	gravity math.Vec3
	bodies  []*Body
}

func NewWorld(gravity math.Vec3) *World {
	return &World{gravity: gravity}
}

func (w *World) AddBody(b *Body) {
	w.bodies = append(w.bodies, b)
}

func (w *World) Bodies() []*Body {
	return w.bodies
}

// Step integrates gravity over one fixed interval and settles bodies on the
// ground plane at y=0.
func (w *World) Step(dt float32) {
	for _, b := range w.bodies {
		if b.Static {
			continue
		}
		b.Velocity = b.Velocity.Add(w.gravity.MulScalar(dt))
		b.Transform.Translate(b.Velocity.MulScalar(dt))

		half := b.Extents.Y * 0.5
		if b.Transform.Position.Y < half {
			b.Transform.Position.Y = half
			b.Velocity.Y = 0
		}
	}
}

// RaycastHit reports the body a ray first intersects.
type RaycastHit struct {
	Body     *Body
	Distance float32
}

// Raycast walks all bodies and returns the nearest AABB intersection along
// the ray, if any.
func (w *World) Raycast(origin, direction math.Vec3, maxDistance float32) (RaycastHit, bool) {
	dir := direction.Normalize()
	best := RaycastHit{Distance: maxDistance}
	found := false
	for _, b := range w.bodies {
		if dist, hit := rayAABB(origin, dir, b.AABB(), maxDistance); hit && dist <= best.Distance {
			best = RaycastHit{Body: b, Distance: dist}
			found = true
		}
	}
	return best, found
}

// Slab-method ray/AABB intersection.
func rayAABB(origin, dir math.Vec3, box math.Extents3D, maxDistance float32) (float32, bool) {
	tmin := float32(0)
	tmax := maxDistance

	check := func(o, d, lo, hi float32) bool {
		if d == 0 {
			return o >= lo && o <= hi
		}
		inv := 1.0 / d
		t1 := (lo - o) * inv
		t2 := (hi - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		return tmin <= tmax
	}

	if !check(origin.X, dir.X, box.Min.X, box.Max.X) {
		return 0, false
	}
	if !check(origin.Y, dir.Y, box.Min.Y, box.Max.Y) {
		return 0, false
	}
	if !check(origin.Z, dir.Z, box.Min.Z, box.Max.Z) {
		return 0, false
	}
	return tmin, true
}
