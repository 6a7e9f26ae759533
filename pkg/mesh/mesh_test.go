package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshview/pkg/geom"
)

func triangleMesh(kind Kind) *Mesh {
	m := New(kind)
	m.Vertices = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m.Normals = []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	for _, v := range m.Vertices {
		m.Bounds.AdjustVec(v)
	}
	m.Centroid = r3.Vec{X: 1.0 / 3, Y: 1.0 / 3}
	return m
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindSTL, "stl"},
		{KindOBJ, "obj"},
		{KindPLY, "ply"},
		{Kind(42), "unknown(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr error
	}{
		{"valid", func(m *Mesh) {}, nil},
		{"empty", func(m *Mesh) { m.Vertices = nil; m.Normals = nil }, ErrEmpty},
		{"short normals", func(m *Mesh) { m.Normals = m.Normals[:2] }, ErrNormalCount},
		{"partial colors", func(m *Mesh) { m.Colors = []mgl32.Vec4{{1, 1, 1, 1}} }, ErrColorCount},
		{"full colors", func(m *Mesh) { m.Colors = make([]mgl32.Vec4, 3) }, nil},
		{"index in range", func(m *Mesh) { m.Indices = []uint32{0, 1, 2} }, nil},
		{"index out of range", func(m *Mesh) { m.Indices = []uint32{0, 1, 3} }, ErrIndexOutOfRange},
		{"vertex outside bounds", func(m *Mesh) { m.Vertices[2] = mgl32.Vec3{0, 2, 0} }, ErrOutOfBounds},
		{"bounds never set", func(m *Mesh) { m.Bounds = geom.NewBounds() }, ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := triangleMesh(KindOBJ)
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCounts(t *testing.T) {
	m := triangleMesh(KindSTL)
	if m.VertexCount() != 3 || m.TriangleCount() != 1 || m.Indexed() {
		t.Errorf("STL soup: vertices=%d triangles=%d indexed=%v", m.VertexCount(), m.TriangleCount(), m.Indexed())
	}

	m.Indices = []uint32{0, 1, 2, 0, 2, 1}
	if m.TriangleCount() != 2 || m.IndexCount() != 6 {
		t.Errorf("indexed: triangles=%d indices=%d", m.TriangleCount(), m.IndexCount())
	}

	m.PointCloud = true
	if m.TriangleCount() != 0 || m.Primitive() != Points {
		t.Errorf("point cloud: triangles=%d primitive=%v", m.TriangleCount(), m.Primitive())
	}
}

func TestBoundScale(t *testing.T) {
	m := New(KindPLY)
	if got := m.BoundScale(2); got != 0 {
		t.Errorf("empty BoundScale = %v, want 0", got)
	}

	m.Bounds.Adjust(-1, 0, 0)
	m.Bounds.Adjust(1, 6, 3)
	if got := m.BoundScale(2); got != 3 {
		t.Errorf("BoundScale(2) = %v, want 3", got)
	}
}

func TestFloorOffset(t *testing.T) {
	m := New(KindSTL)
	m.Bounds.Adjust(0, 0, -2)
	m.Bounds.Adjust(4, 2, 2)
	m.Centroid = r3.Vec{X: 2, Y: 1, Z: 0}

	// Scale is 4/2 = 2, Z floor is (-2 - 0) / 2.
	if got := m.FloorOffset(2); got != -1 {
		t.Errorf("STL FloorOffset = %v, want -1", got)
	}

	m.Kind = KindOBJ
	// Y floor is (0 - 1) / 2.
	if got := m.FloorOffset(2); got != -0.5 {
		t.Errorf("OBJ FloorOffset = %v, want -0.5", got)
	}

	flat := New(KindPLY)
	flat.Bounds.Adjust(1, 1, 1)
	flat.Centroid = r3.Vec{X: 1, Y: 3, Z: 1}
	if got := flat.FloorOffset(2); got != -2 {
		t.Errorf("zero-extent FloorOffset = %v, want -2 (scale treated as 1)", got)
	}
}

func TestModelMatrix(t *testing.T) {
	m := triangleMesh(KindOBJ)
	m.Centroid = r3.Vec{X: 1, Y: 2, Z: 3}
	m.Bounds.Adjust(1, 2, 3)

	mat := m.ModelMatrix(1)
	// The centroid maps to the origin whatever the rotation and scale.
	got := mat.Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	if !got.Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-5) {
		t.Errorf("centroid maps to %v, want origin", got)
	}

	// OBJ rotates 180 degrees about Y: +X goes to -X.
	id := New(KindOBJ)
	dir := id.ModelMatrix(1).Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	if !dir.Vec3().ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5) {
		t.Errorf("OBJ +X maps to %v, want -X", dir)
	}

	// STL rotates Z-up into Y-up.
	stl := New(KindSTL)
	up := stl.ModelMatrix(1).Mul4x1(mgl32.Vec4{0, 0, 1, 0})
	if math.Abs(float64(up[1])-1) > 1e-5 {
		t.Errorf("STL +Z maps to %v, want +Y", up)
	}
}
