package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/mesh"
)

// ErrNotTriangles is returned when exporting a mesh that has no triangles.
var ErrNotTriangles = errors.New("mesh is a point cloud")

// WriteSTL writes m as binary STL. Indexed meshes are expanded to a triangle soup;
// each facet normal is the normalized normal of its first corner.
func WriteSTL(w io.Writer, m *mesh.Mesh) error {
	if m.PointCloud {
		return ErrNotTriangles
	}

	tris := m.TriangleCount()
	if tris == 0 {
		return fmt.Errorf("%w: no triangles", ErrInvalidModel)
	}

	bw := bufio.NewWriterSize(w, inputBufferSize)

	header := make([]byte, stlHeaderSize)
	copy(header, m.Name)
	if _, err := bw.Write(header); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(tris)); err != nil {
		return err
	}

	corner := func(i int) int {
		if m.Indices != nil {
			return int(m.Indices[i])
		}
		return i
	}

	rec := make([]byte, stlRecordSize)
	for t := 0; t < tris; t++ {
		a, b, c := corner(t*3), corner(t*3+1), corner(t*3+2)

		n := m.Normals[a]
		if n.Len() > 0 {
			n = n.Normalize()
		}
		putVec3LE(rec, 0, n)
		putVec3LE(rec, 12, m.Vertices[a])
		putVec3LE(rec, 24, m.Vertices[b])
		putVec3LE(rec, 36, m.Vertices[c])
		rec[48], rec[49] = 0, 0

		if _, err := bw.Write(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func putVec3LE(b []byte, off int, v mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(b[off+i*4:], math.Float32bits(v[i]))
	}
}
