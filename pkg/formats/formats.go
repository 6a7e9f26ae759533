// Package formats provides parsers for STL, Wavefront OBJ/MTL and PLY model files.
//
// Every parser drains the reader it is given and returns a freshly allocated
// mesh.Mesh, or an error and no mesh. Parsers never close the reader; the
// ParseXFile helpers open and close their own file.
package formats

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// Parse errors shared by all formats.
var (
	ErrInvalidModel     = errors.New("invalid model")
	ErrTruncatedData    = errors.New("truncated data")
	ErrTooManyTriangles = errors.New("triangle count out of range")
	ErrUnsupportedFace  = errors.New("unsupported face")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrNoNormals        = errors.New("no normals specified for this model")
	ErrInvalidPLYHeader = errors.New("invalid PLY header")
	ErrNoVertices       = errors.New("no vertices found in model")
	ErrInvalidMaterial  = errors.New("invalid material")
	ErrRead             = errors.New("read error")
)

const inputBufferSize = 0x10000

// maxLineLength bounds a single text line in ASCII formats.
const maxLineLength = 1 << 20

// wrapRead classifies a failed read. A short read is malformed input, anything
// else is an I/O failure of the underlying stream.
func wrapRead(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncatedData, what)
	}
	return fmt.Errorf("%w: reading %s: %w", ErrRead, what, err)
}

// parseVec3 parses three decimal fields.
func parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(fields) < 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// resolveIndex turns a 1-based or negative relative OBJ index into a 0-based one.
// Zero means the field was absent.
func resolveIndex(idx, poolLen int) (int, error) {
	var r int
	switch {
	case idx > 0:
		r = idx - 1
	case idx < 0:
		r = poolLen + idx
	default:
		return 0, fmt.Errorf("%w: missing index", ErrIndexOutOfRange)
	}
	if r < 0 || r >= poolLen {
		return 0, fmt.Errorf("%w: %d (pool has %d entries)", ErrIndexOutOfRange, idx, poolLen)
	}
	return r, nil
}
