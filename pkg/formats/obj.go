package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/geom"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// quadFan splits a four-corner face into two triangles sharing corner 0.
var quadFan = [][3]int{{0, 1, 2}, {0, 2, 3}}

var triFan = [][3]int{{0, 1, 2}}

// faceFan returns the triangle split for a face with n corners, or nil if n is unsupported.
func faceFan(n int) [][3]int {
	switch n {
	case 3:
		return triFan
	case 4:
		return quadFan
	default:
		return nil
	}
}

// objCorner holds the raw v/vt/vn indices of one face corner. Zero means absent.
type objCorner [3]int

// ParseOBJ parses the v, vn and f records of a Wavefront OBJ stream into a
// denormalized triangle mesh: every face corner becomes its own vertex.
// Faces without normal indices get a computed flat normal per triangle.
func ParseOBJ(r io.Reader) (*mesh.Mesh, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		acc       geom.Accumulator
		corners   [4]objCorner
	)
	m := mesh.New(mesh.KindOBJ)

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
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: vertex: %v", ErrInvalidModel, lineNo, err)
			}
			positions = append(positions, v)
			m.Bounds.AdjustVec(v)
			acc.Add(v[0], v[1], v[2])

		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: normal: %v", ErrInvalidModel, lineNo, err)
			}
			normals = append(normals, n)

		case "o":
			if m.Name == "" && len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}

		case "f":
			groups := fields[1:]
			fan := faceFan(len(groups))
			if fan == nil {
				return nil, fmt.Errorf("%w: line %d: %d vertices", ErrUnsupportedFace, lineNo, len(groups))
			}
			for i, g := range groups {
				ParseSignedInts(g, corners[i][:], 0)
			}
			hasNormals := corners[0][2] != 0

			for _, tri := range fan {
				var pos [3]mgl32.Vec3
				for k, c := range tri {
					idx, err := resolveIndex(corners[c][0], len(positions))
					if err != nil {
						return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
					}
					pos[k] = positions[idx]
				}

				var nrm [3]mgl32.Vec3
				if hasNormals {
					for k, c := range tri {
						idx, err := resolveIndex(corners[c][2], len(normals))
						if err != nil {
							return nil, fmt.Errorf("line %d: normal: %w", lineNo, err)
						}
						nrm[k] = normals[idx]
					}
				} else {
					n := geom.CalculateNormal(pos[0], pos[1], pos[2])
					normals = append(normals, n)
					nrm = [3]mgl32.Vec3{n, n, n}
				}

				for k := 0; k < 3; k++ {
					m.Indices = append(m.Indices, uint32(len(m.Vertices)))
					m.Vertices = append(m.Vertices, pos[k])
					m.Normals = append(m.Normals, nrm[k])
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, wrapRead(err, "OBJ")
	}

	if len(m.Indices) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrInvalidModel)
	}
	m.Centroid = acc.Mean()
	return m, nil
}

// ParseOBJFile opens and parses an OBJ file.
func ParseOBJFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()
	return ParseOBJ(f)
}
