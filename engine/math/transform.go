package math

// Transform holds position, rotation and scale with an optional parent.
// World-space position is resolved lazily through the parent chain.
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
	Parent   *Transform
}

func TransformCreate() *Transform {
	return &Transform{
		Rotation: NewQuatIdentity(),
		Scale:    NewVec3One(),
	}
}

func TransformFromPosition(position Vec3) *Transform {
	t := TransformCreate()
	t.Position = position
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	return &Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
	}
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = t.Rotation.Mul(rotation)
}

// WorldPosition resolves the position through the parent chain. Rotation of
// parents is deliberately not applied; scene graphs here only nest offsets.
func (t *Transform) WorldPosition() Vec3 {
	if t == nil {
		return Vec3{}
	}
	if t.Parent != nil {
		return t.Parent.WorldPosition().Add(t.Position)
	}
	return t.Position
}
