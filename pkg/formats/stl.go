package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/binutil"
	"github.com/Faultbox/meshview/pkg/encoding"
	"github.com/Faultbox/meshview/pkg/geom"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// Binary STL layout.
const (
	stlHeaderSize = 80
	stlRecordSize = 50

	// maxSTLVertices caps 3*triangleCount before anything is allocated.
	maxSTLVertices = 10_000_000
)

// ParseSTL parses an ASCII or binary STL stream.
// The encoding is decided from the first 256 bytes without consuming them.
func ParseSTL(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReaderSize(r, inputBufferSize)
	prefix, err := peekPrefix(br, detectPeekSize)
	if err != nil {
		return nil, err
	}

	var m *mesh.Mesh
	if IsASCIISTL(prefix) {
		m, err = parseSTLText(br)
	} else {
		m, err = parseSTLBinary(br)
	}
	if err != nil {
		return nil, err
	}
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("%w: no vertices", ErrInvalidModel)
	}
	return m, nil
}

// ParseSTLFile opens and parses an STL file.
func ParseSTLFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()
	return ParseSTL(f)
}

func parseSTLText(r io.Reader) (*mesh.Mesh, error) {
	m := mesh.New(mesh.KindSTL)
	var acc geom.Accumulator
	haveNormals := false
	corners := -1 // vertices in the open facet, -1 outside one

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, inputBufferSize), maxLineLength)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if m.Name == "" && len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			if corners >= 0 {
				return nil, fmt.Errorf("%w: line %d: facet not closed", ErrInvalidModel, lineNo)
			}
			corners = 0
			rest := fields[1:]
			if len(rest) > 0 && rest[0] == "normal" {
				rest = rest[1:]
			}
			n, err := parseVec3(rest)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: facet normal: %v", ErrInvalidModel, lineNo, err)
			}
			if n != (mgl32.Vec3{}) {
				haveNormals = true
			}
			m.Normals = append(m.Normals, n, n, n)
		case "vertex":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: vertex: %v", ErrInvalidModel, lineNo, err)
			}
			m.Bounds.AdjustVec(v)
			acc.Add(v[0], v[1], v[2])
			m.Vertices = append(m.Vertices, v)
			if corners >= 0 {
				corners++
			}
		case "endfacet":
			if corners != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrInvalidModel, lineNo, max(corners, 0))
			}
			corners = -1
		}
	}
	if err := sc.Err(); err != nil {
		return nil, wrapRead(err, "ASCII STL")
	}
	if corners >= 0 {
		return nil, fmt.Errorf("%w: facet not closed", ErrInvalidModel)
	}

	if len(m.Vertices)%3 != 0 || len(m.Normals) != len(m.Vertices) {
		return nil, fmt.Errorf("%w: %d vertices for %d facet normals", ErrInvalidModel,
			len(m.Vertices), len(m.Normals)/3)
	}

	m.Centroid = acc.Mean()
	if !haveNormals {
		recomputeNormals(m)
	}
	return m, nil
}

func parseSTLBinary(r io.Reader) (*mesh.Mesh, error) {
	header := make([]byte, stlHeaderSize+4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, wrapRead(err, "STL header")
	}

	triangles := int64(binutil.Int32LE(header, stlHeaderSize))
	vertexCount := triangles * 3
	if vertexCount < 0 || vertexCount > maxSTLVertices {
		return nil, fmt.Errorf("%w: %d triangles", ErrTooManyTriangles, triangles)
	}

	m := mesh.New(mesh.KindSTL)
	m.Name = encoding.TrimNullString(header[:stlHeaderSize])

	// Cap the initial allocation; a lying count still fails on the first short read.
	capacity := int(min(vertexCount, inputBufferSize))
	m.Vertices = make([]mgl32.Vec3, 0, capacity)
	m.Normals = make([]mgl32.Vec3, 0, capacity)

	var acc geom.Accumulator
	haveNormals := false
	rec := make([]byte, stlRecordSize)
	for i := int64(0); i < triangles; i++ {
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, wrapRead(err, fmt.Sprintf("STL triangle %d of %d", i, triangles))
		}

		n := readVec3LE(rec, 0)
		if n != (mgl32.Vec3{}) {
			haveNormals = true
		}
		for c := 0; c < 3; c++ {
			v := readVec3LE(rec, 12+c*12)
			m.Bounds.AdjustVec(v)
			acc.Add(v[0], v[1], v[2])
			m.Vertices = append(m.Vertices, v)
		}
		m.Normals = append(m.Normals, n, n, n)
	}

	m.Centroid = acc.Mean()
	if !haveNormals {
		recomputeNormals(m)
	}
	return m, nil
}

func readVec3LE(b []byte, off int) mgl32.Vec3 {
	return mgl32.Vec3{
		binutil.Float32LE(b, off),
		binutil.Float32LE(b, off+4),
		binutil.Float32LE(b, off+8),
	}
}

// recomputeNormals replaces every triangle's normals with its face normal.
// Used when a file carries only zero normals.
func recomputeNormals(m *mesh.Mesh) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		n := geom.CalculateNormal(m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2])
		m.Normals[i], m.Normals[i+1], m.Normals[i+2] = n, n, n
	}
}
