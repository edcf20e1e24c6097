package math

import (
	m "math"

	"golang.org/x/exp/rand"
)

const Pi float32 = m.Pi

func DegToRad(deg float32) float32 {
	return deg * (Pi / 180.0)
}

func RadToDeg(rad float32) float32 {
	return rad * (180.0 / Pi)
}

// RangeConvertFloat32 remaps value from [oldMin, oldMax] to [newMin, newMax].
func RangeConvertFloat32(value, oldMin, oldMax, newMin, newMax float32) float32 {
	return ((value-oldMin)*(newMax-newMin))/(oldMax-oldMin) + newMin
}

// RandomInRange returns a uniform random float32 in [min, max).
func RandomInRange(min, max float32) float32 {
	return min + rand.Float32()*(max-min)
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{X: 1, Y: 1, Z: 1}
}

func NewVec3Up() Vec3 {
	return Vec3{Y: 1}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{X: v.X * other.X, Y: v.Y * other.Y, Z: v.Z * other.Z}
}

func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float32 {
	return float32(m.Sqrt(float64(v.LengthSquared())))
}

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.MulScalar(1.0 / l)
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

func NewQuatIdentity() Quaternion {
	return Quaternion{W: 1}
}

// NewQuatFromAxisAngle builds a rotation of angle radians around axis.
func NewQuatFromAxisAngle(axis Vec3, angle float32) Quaternion {
	half := float64(angle) * 0.5
	s := float32(m.Sin(half))
	n := axis.Normalize()
	return Quaternion{
		X: n.X * s,
		Y: n.Y * s,
		Z: n.Z * s,
		W: float32(m.Cos(half)),
	}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}
