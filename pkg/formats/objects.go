package formats

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshview/pkg/encoding"
	"github.com/Faultbox/meshview/pkg/geom"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// defaultObjectName is used for an "o" statement without a name.
const defaultObjectName = "def"

// Object is one named, single-material part of a multi-object OBJ file.
// Vertices, TexCoords and Normals hold one entry per face corner.
type Object struct {
	Name         string
	MaterialName string
	Material     *Material // nil if the library was missing or lacks MaterialName

	Vertices  []mgl32.Vec3
	TexCoords []mgl32.Vec2 // nil unless every corner has a texture index
	Normals   []mgl32.Vec3

	Bounds   geom.Bounds
	Centroid r3.Vec

	acc       geom.Accumulator
	vertexIdx []int
	texIdx    []int
	normalIdx []int
}

func newObject() *Object {
	return &Object{Bounds: geom.NewBounds()}
}

// Mesh returns the object as an OBJ mesh with sequential indices.
func (o *Object) Mesh() *mesh.Mesh {
	m := mesh.New(mesh.KindOBJ)
	m.Name = o.Name
	m.Vertices = o.Vertices
	m.Normals = o.Normals
	m.Indices = make([]uint32, len(o.Vertices))
	for i, v := range o.Vertices {
		m.Indices[i] = uint32(i)
		m.Bounds.AdjustVec(v)
	}
	m.Centroid = o.Centroid
	return m
}

// ObjectOptions configures LoadObjects.
type ObjectOptions struct {
	// Materials resolves mtllib paths. Without it material libraries are skipped.
	Materials fs.FS
	// DecodeName converts object, material and file names to UTF-8.
	DecodeName func(string) string
	// Warnf reports non-fatal problems such as a missing material library.
	Warnf func(format string, args ...any)
}

type objectLoader struct {
	opts ObjectOptions

	positions []mgl32.Vec3
	texCoords []mgl32.Vec2
	normals   []mgl32.Vec3
	materials map[string]*Material

	cur      *Object
	curMtl   string
	hasFaces bool
	result   []*Object
}

// LoadObjects splits an OBJ stream into objects at every "o" and "usemtl"
// statement that follows faces. Vertex, texture and normal pools are shared
// by the whole file. Every face corner must reference a normal.
func LoadObjects(r io.Reader, opts ObjectOptions) ([]*Object, error) {
	if opts.DecodeName == nil {
		opts.DecodeName = func(s string) string { return s }
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}
	l := &objectLoader{opts: opts, cur: newObject()}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, inputBufferSize), maxLineLength)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := l.statement(fields[0], fields[1:]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, wrapRead(err, "OBJ")
	}

	if l.hasFaces {
		l.finish()
	}
	if len(l.result) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrInvalidModel)
	}

	for _, o := range l.result {
		if err := l.gather(o); err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Name, err)
		}
	}
	return l.result, nil
}

func (l *objectLoader) statement(key string, args []string) error {
	switch key {
	case "mtllib":
		if len(args) > 0 {
			l.loadLibrary(strings.Join(args, " "))
		}

	case "o":
		name := defaultObjectName
		if len(args) > 0 {
			name = l.opts.DecodeName(strings.Join(args, " "))
		}
		if l.hasFaces {
			l.finish()
		}
		l.cur.Name = name
		l.attachMaterial()

	case "usemtl":
		if len(args) == 0 {
			return nil
		}
		l.curMtl = l.opts.DecodeName(args[0])
		if l.hasFaces {
			name := l.cur.Name
			l.finish()
			l.cur.Name = name
		}
		l.attachMaterial()

	case "v":
		v, err := parseVec3(args)
		if err != nil {
			return fmt.Errorf("%w: vertex: %v", ErrInvalidModel, err)
		}
		l.positions = append(l.positions, v)
		l.cur.Bounds.AdjustVec(v)
		l.cur.acc.Add(v[0], v[1], v[2])

	case "vt":
		if len(args) < 2 {
			return fmt.Errorf("%w: texture coordinate needs 2 components", ErrInvalidModel)
		}
		u, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return fmt.Errorf("%w: texture coordinate: %v", ErrInvalidModel, err)
		}
		v, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			return fmt.Errorf("%w: texture coordinate: %v", ErrInvalidModel, err)
		}
		l.texCoords = append(l.texCoords, mgl32.Vec2{float32(u), 1 - float32(v)})

	case "vn":
		n, err := parseVec3(args)
		if err != nil {
			return fmt.Errorf("%w: normal: %v", ErrInvalidModel, err)
		}
		l.normals = append(l.normals, n)

	case "f":
		return l.face(args)
	}
	return nil
}

func (l *objectLoader) face(groups []string) error {
	fan := faceFan(len(groups))
	if fan == nil {
		return fmt.Errorf("%w: %d vertices", ErrUnsupportedFace, len(groups))
	}

	var corners [4]objCorner
	for i, g := range groups {
		ParseSignedInts(g, corners[i][:], 0)
		if corners[i][0] == 0 {
			return fmt.Errorf("%w: face corner %q has no vertex index", ErrIndexOutOfRange, g)
		}
	}

	o := l.cur
	for _, tri := range fan {
		for _, c := range tri {
			idx := corners[c]
			o.vertexIdx = append(o.vertexIdx, relativeIndex(idx[0], len(l.positions)))
			if idx[1] != 0 {
				o.texIdx = append(o.texIdx, relativeIndex(idx[1], len(l.texCoords)))
			}
			if idx[2] != 0 {
				o.normalIdx = append(o.normalIdx, relativeIndex(idx[2], len(l.normals)))
			}
		}
	}
	l.hasFaces = true
	return nil
}

// relativeIndex converts an OBJ index to 0-based without range checking;
// forward references are legal and are checked when the object is gathered.
func relativeIndex(idx, poolLen int) int {
	if idx < 0 {
		return poolLen + idx
	}
	return idx - 1
}

// finish closes the current object and starts an empty one.
func (l *objectLoader) finish() {
	o := l.cur
	// Divide by the number of face corners, not by the number of "v" lines.
	o.Centroid = o.acc.MeanOver(len(o.vertexIdx))
	l.result = append(l.result, o)
	l.cur = newObject()
	l.hasFaces = false
}

func (l *objectLoader) attachMaterial() {
	if l.curMtl == "" {
		return
	}
	l.cur.MaterialName = l.curMtl
	if l.materials != nil {
		l.cur.Material = l.materials[l.curMtl]
	}
}

func (l *objectLoader) loadLibrary(name string) {
	if l.opts.Materials == nil {
		l.opts.Warnf("skipping material library %s: no material source", name)
		return
	}
	p := path.Clean(encoding.NormalizePath(l.opts.DecodeName(name)))
	f, err := l.opts.Materials.Open(p)
	if err != nil {
		l.opts.Warnf("skipping material library %s: %v", p, err)
		return
	}
	defer f.Close()

	mats, err := ParseMTL(f, l.opts.DecodeName)
	if err != nil {
		l.opts.Warnf("skipping material library %s: %v", p, err)
		return
	}
	l.materials = mats
}

// gather replaces the object's index lists with per-corner attribute arrays.
func (l *objectLoader) gather(o *Object) error {
	n := len(o.vertexIdx)
	if len(o.normalIdx) != n || len(l.normals) == 0 {
		return ErrNoNormals
	}

	o.Vertices = make([]mgl32.Vec3, n)
	o.Normals = make([]mgl32.Vec3, n)
	for i := 0; i < n; i++ {
		vi, ni := o.vertexIdx[i], o.normalIdx[i]
		if vi < 0 || vi >= len(l.positions) {
			return fmt.Errorf("%w: vertex %d (pool has %d entries)", ErrIndexOutOfRange, vi+1, len(l.positions))
		}
		if ni < 0 || ni >= len(l.normals) {
			return fmt.Errorf("%w: normal %d (pool has %d entries)", ErrIndexOutOfRange, ni+1, len(l.normals))
		}
		o.Vertices[i] = l.positions[vi]
		o.Normals[i] = l.normals[ni]
	}

	if len(o.texIdx) == n && len(l.texCoords) > 0 {
		o.TexCoords = make([]mgl32.Vec2, n)
		for i, ti := range o.texIdx {
			if ti < 0 || ti >= len(l.texCoords) {
				return fmt.Errorf("%w: texture coordinate %d (pool has %d entries)", ErrIndexOutOfRange, ti+1, len(l.texCoords))
			}
			o.TexCoords[i] = l.texCoords[ti]
		}
	}

	o.vertexIdx, o.texIdx, o.normalIdx = nil, nil, nil
	return nil
}
