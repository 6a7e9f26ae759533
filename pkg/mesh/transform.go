package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Orientation is the fixed rotation (degrees, applied X then Y then Z) that presents
// a format's native axes as Y-up.
type Orientation struct {
	X, Y, Z float32
}

// OrientationFor returns the model-space rotation for a format.
// STL is authored Z-up; OBJ and PLY are Y-up but face away from the default camera.
func OrientationFor(k Kind) Orientation {
	switch k {
	case KindSTL:
		return Orientation{X: -90, Z: 180}
	case KindOBJ, KindPLY:
		return Orientation{Y: 180}
	default:
		return Orientation{}
	}
}

// BoundScale returns the largest axis extent divided by target.
func (m *Mesh) BoundScale(target float32) float32 {
	if m.Bounds.Empty() || target == 0 {
		return 0
	}
	size := m.Bounds.Size()
	scale := size[0] / target
	if s := size[1] / target; s > scale {
		scale = s
	}
	if s := size[2] / target; s > scale {
		scale = s
	}
	return scale
}

// FloorOffset returns how far below the centroid the model's lowest point sits, in
// units normalized by BoundScale. STL measures along Z, every other format along Y.
func (m *Mesh) FloorOffset(target float32) float32 {
	scale := m.BoundScale(target)
	if scale == 0 {
		scale = 1
	}
	if m.Kind == KindSTL {
		return (m.Bounds.Min[2] - float32(m.Centroid.Z)) / scale
	}
	return (m.Bounds.Min[1] - float32(m.Centroid.Y)) / scale
}

// ModelMatrix rotates the model into Y-up, scales it to fit target and moves its
// centroid to the origin.
func (m *Mesh) ModelMatrix(target float32) mgl32.Mat4 {
	o := OrientationFor(m.Kind)
	mat := mgl32.HomogRotate3DX(mgl32.DegToRad(o.X)).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(o.Y))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(o.Z)))

	if scale := m.BoundScale(target); scale != 0 {
		inv := 1 / scale
		mat = mat.Mul4(mgl32.Scale3D(inv, inv, inv))
	}

	c := m.Centroid
	return mat.Mul4(mgl32.Translate3D(-float32(c.X), -float32(c.Y), -float32(c.Z)))
}
