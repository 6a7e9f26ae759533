// Package geom provides the small amount of geometry the mesh parsers share:
// face normals, bounding boxes and centroid accumulation.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"
)

// CalculateNormal returns (p2-p1) x (p3-p1).
// The result is not normalized; winding order decides its direction.
func CalculateNormal(p1, p2, p3 mgl32.Vec3) mgl32.Vec3 {
	return p2.Sub(p1).Cross(p3.Sub(p1))
}

// Bounds is an axis-aligned bounding box accumulated one point at a time.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewBounds returns an inverted box so the first Adjust sets both extrema.
func NewBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Adjust grows the box to contain (x, y, z).
func (b *Bounds) Adjust(x, y, z float32) {
	if x > b.Max[0] {
		b.Max[0] = x
	}
	if y > b.Max[1] {
		b.Max[1] = y
	}
	if z > b.Max[2] {
		b.Max[2] = z
	}
	if x < b.Min[0] {
		b.Min[0] = x
	}
	if y < b.Min[1] {
		b.Min[1] = y
	}
	if z < b.Min[2] {
		b.Min[2] = z
	}
}

// AdjustVec is Adjust for a vector.
func (b *Bounds) AdjustVec(p mgl32.Vec3) {
	b.Adjust(p[0], p[1], p[2])
}

// Empty reports whether no point has been added yet.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Size returns the extent along each axis, or zero for an empty box.
func (b Bounds) Size() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the box (inclusive).
func (b Bounds) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Array returns the box as {minX, minY, minZ, maxX, maxY, maxZ}.
func (b Bounds) Array() [6]float32 {
	return [6]float32{b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]}
}

// Accumulator sums positions in float64 for a centroid.
type Accumulator struct {
	sum r3.Vec
	n   int
}

// Add adds one sample.
func (a *Accumulator) Add(x, y, z float32) {
	a.sum = r3.Add(a.sum, r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
	a.n++
}

// Mean returns the sum divided by the sample count, or the zero vector without samples.
func (a *Accumulator) Mean() r3.Vec {
	return a.MeanOver(a.n)
}

// MeanOver divides the sum by n instead of the sample count.
func (a *Accumulator) MeanOver(n int) r3.Vec {
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/float64(n), a.sum)
}
