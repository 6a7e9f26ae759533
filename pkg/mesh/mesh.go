// Package mesh defines the record every parser fills: flat vertex, normal and color
// arrays, an optional triangle index list, bounding box and centroid.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshview/pkg/geom"
)

// Kind identifies the source format of a mesh.
type Kind int

const (
	KindUnknown Kind = iota
	KindSTL
	KindOBJ
	KindPLY
)

// String returns the lowercase format name.
func (k Kind) String() string {
	switch k {
	case KindSTL:
		return "stl"
	case KindOBJ:
		return "obj"
	case KindPLY:
		return "ply"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Primitive is how the vertex stream is meant to be drawn.
type Primitive int

const (
	Triangles Primitive = iota
	Points
)

// String returns a human-readable primitive name.
func (p Primitive) String() string {
	if p == Points {
		return "points"
	}
	return "triangles"
}

// Validation errors.
var (
	ErrEmpty           = errors.New("mesh has no vertices")
	ErrNormalCount     = errors.New("normal count does not match vertex count")
	ErrColorCount      = errors.New("color count does not match vertex count")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrOutOfBounds     = errors.New("vertex outside bounding box")
)

// Mesh is the parsed, render-ready form of a model file.
type Mesh struct {
	Kind Kind
	Name string

	Vertices []mgl32.Vec3 // emitted vertices, one per drawn corner for triangle soups
	Normals  []mgl32.Vec3 // one per vertex
	Colors   []mgl32.Vec4 // empty or one per vertex
	Indices  []uint32     // nil for STL and point clouds

	Bounds   geom.Bounds
	Centroid r3.Vec

	PointCloud bool
	Fallback   string // why a mesh with faces was downgraded to points
}

// New returns an empty mesh of the given kind with inverted bounds.
func New(kind Kind) *Mesh {
	return &Mesh{
		Kind:   kind,
		Bounds: geom.NewBounds(),
	}
}

// VertexCount returns the number of emitted vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the number of indices, zero for non-indexed meshes.
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// TriangleCount returns the number of triangles drawn, zero for point clouds.
func (m *Mesh) TriangleCount() int {
	if m.PointCloud {
		return 0
	}
	if m.Indices != nil {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// HasColors reports whether per-vertex colors are present.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0
}

// Indexed reports whether the mesh is drawn through its index list.
func (m *Mesh) Indexed() bool {
	return m.Indices != nil
}

// Primitive returns the draw mode for the vertex stream.
func (m *Mesh) Primitive() Primitive {
	if m.PointCloud {
		return Points
	}
	return Triangles
}

// Validate checks the structural invariants shared by all formats.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	if n == 0 {
		return ErrEmpty
	}
	if len(m.Normals) != n {
		return fmt.Errorf("%w: %d normals, %d vertices", ErrNormalCount, len(m.Normals), n)
	}
	if len(m.Colors) != 0 && len(m.Colors) != n {
		return fmt.Errorf("%w: %d colors, %d vertices", ErrColorCount, len(m.Colors), n)
	}
	for i, v := range m.Vertices {
		if !m.Bounds.Contains(v) {
			return fmt.Errorf("%w: vertex %d %v, bounds %v", ErrOutOfBounds, i, v, m.Bounds.Array())
		}
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexOutOfRange, idx, i, n)
		}
	}
	return nil
}
