package formats

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/binutil"
	"github.com/Faultbox/meshview/pkg/geom"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// pointColor is used for vertices without color properties.
var pointColor = mgl32.Vec4{1, 1, 1, 1}

// plyVertex holds the decoded vertex element.
type plyVertex struct {
	pos     []mgl32.Vec3
	normals []mgl32.Vec3 // nil without nx/ny/nz
	colors  []mgl32.Vec4
}

// plyVertexLayout locates the properties the parser cares about.
type plyVertexLayout struct {
	x, y, z    int
	r, g, b, a int
	nx, ny, nz int
	colorDiv   []float32 // per property: 255 for integer colors, 1 for floats
}

func newPLYVertexLayout(e *PLYElement) (*plyVertexLayout, error) {
	l := &plyVertexLayout{
		x: e.Property("x"), y: e.Property("y"), z: e.Property("z"),
		r: e.Property("red"), g: e.Property("green"), b: e.Property("blue"), a: e.Property("alpha"),
		nx: e.Property("nx"), ny: e.Property("ny"), nz: e.Property("nz"),
	}
	if l.x < 0 || l.y < 0 || l.z < 0 {
		return nil, fmt.Errorf("%w: vertex element lacks x, y or z", ErrInvalidPLYHeader)
	}
	for _, i := range []int{l.x, l.y, l.z} {
		if e.Properties[i].List {
			return nil, fmt.Errorf("%w: coordinate %q is a list", ErrInvalidPLYHeader, e.Properties[i].Name)
		}
	}
	l.colorDiv = make([]float32, len(e.Properties))
	for i, p := range e.Properties {
		l.colorDiv[i] = 1
		if !plyFloatType(p.Type) {
			l.colorDiv[i] = 255
		}
	}
	return l, nil
}

func (l *plyVertexLayout) hasColor() bool {
	return l.r >= 0 && l.g >= 0 && l.b >= 0
}

func (l *plyVertexLayout) hasNormals() bool {
	return l.nx >= 0 && l.ny >= 0 && l.nz >= 0
}

// add appends one vertex decoded into vals, one value per property.
func (l *plyVertexLayout) add(v *plyVertex, vals []float64) {
	v.pos = append(v.pos, mgl32.Vec3{float32(vals[l.x]), float32(vals[l.y]), float32(vals[l.z])})

	c := pointColor
	if l.hasColor() {
		c[0] = float32(vals[l.r]) / l.colorDiv[l.r]
		c[1] = float32(vals[l.g]) / l.colorDiv[l.g]
		c[2] = float32(vals[l.b]) / l.colorDiv[l.b]
		if l.a >= 0 {
			c[3] = float32(vals[l.a]) / l.colorDiv[l.a]
		}
	}
	v.colors = append(v.colors, c)

	if l.hasNormals() {
		v.normals = append(v.normals, mgl32.Vec3{float32(vals[l.nx]), float32(vals[l.ny]), float32(vals[l.nz])})
	}
}

// plyDecoder reads element records in either text or binary encoding.
type plyDecoder struct {
	br     *bufio.Reader
	header *PLYHeader
	order  binary.ByteOrder
	buf    [8]byte
	line   int
}

// ParsePLY parses an ASCII or binary (little or big endian) PLY stream.
// Triangles and quads are denormalized like OBJ faces; a file without faces,
// or with a face of any other size, yields a point cloud.
func ParsePLY(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReaderSize(r, inputBufferSize)
	h, err := ReadPLYHeader(br)
	if err != nil {
		return nil, err
	}
	ve := h.Element("vertex")
	if ve == nil || ve.Count == 0 {
		return nil, ErrNoVertices
	}
	layout, err := newPLYVertexLayout(ve)
	if err != nil {
		return nil, err
	}

	d := &plyDecoder{br: br, header: h, order: binutil.Order(h.BigEndian)}
	m := mesh.New(mesh.KindPLY)

	var vert *plyVertex
	faceDone := false
	for _, e := range h.Elements {
		switch {
		case e == ve:
			vert, err = d.readVertices(e, layout)
		case e.Name == "face" && !faceDone:
			if vert == nil {
				return nil, fmt.Errorf("%w: face element precedes vertex element", ErrInvalidModel)
			}
			err = d.readFaces(e, vert, m)
			faceDone = true
		default:
			err = d.skipElement(e)
		}
		if err != nil {
			return nil, err
		}
		if vert != nil && faceDone {
			break
		}
	}

	var acc geom.Accumulator
	for _, p := range vert.pos {
		m.Bounds.AdjustVec(p)
		acc.Add(p[0], p[1], p[2])
	}
	m.Centroid = acc.Mean()

	if len(m.Indices) == 0 {
		setPointCloud(m, vert)
	}
	return m, nil
}

// ParsePLYFile opens and parses a PLY file.
func ParsePLYFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()
	return ParsePLY(f)
}

func setPointCloud(m *mesh.Mesh, v *plyVertex) {
	m.PointCloud = true
	m.Vertices = v.pos
	m.Colors = v.colors
	m.Indices = nil
	if v.normals != nil {
		m.Normals = v.normals
	} else {
		m.Normals = make([]mgl32.Vec3, len(v.pos))
	}
}

func (d *plyDecoder) readVertices(e *PLYElement, l *plyVertexLayout) (*plyVertex, error) {
	capacity := min(e.Count, inputBufferSize)
	v := &plyVertex{
		pos:    make([]mgl32.Vec3, 0, capacity),
		colors: make([]mgl32.Vec4, 0, capacity),
	}
	if l.hasNormals() {
		v.normals = make([]mgl32.Vec3, 0, capacity)
	}

	vals := make([]float64, len(e.Properties))
	for i := 0; i < e.Count; i++ {
		if err := d.readRecord(e, vals); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		l.add(v, vals)
	}
	return v, nil
}

// readRecord decodes one record of e. Scalars are stored in vals; list
// properties store their length and their items are discarded.
func (d *plyDecoder) readRecord(e *PLYElement, vals []float64) error {
	if !d.header.Binary {
		fields, err := d.textRecord()
		if err != nil {
			return err
		}
		pos := 0
		for i, p := range e.Properties {
			if pos >= len(fields) {
				return fmt.Errorf("%w: line %d: too few values", ErrInvalidModel, d.line)
			}
			f, err := strconv.ParseFloat(fields[pos], 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: %s: %v", ErrInvalidModel, d.line, p.Name, err)
			}
			vals[i] = f
			pos++
			if p.List {
				n, err := listCount(f)
				if err != nil {
					return fmt.Errorf("line %d: %s: %w", d.line, p.Name, err)
				}
				pos += n
				if pos > len(fields) {
					return fmt.Errorf("%w: line %d: %s: too few list items", ErrInvalidModel, d.line, p.Name)
				}
			}
		}
		return nil
	}

	for i, p := range e.Properties {
		if !p.List {
			f, err := d.binaryScalar(p.Type)
			if err != nil {
				return err
			}
			vals[i] = f
			continue
		}
		f, err := d.binaryScalar(p.CountType)
		if err != nil {
			return err
		}
		n, err := listCount(f)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
		vals[i] = f
		if _, err := d.br.Discard(n * plyTypeSize(p.ItemType)); err != nil {
			return wrapRead(err, "list property "+p.Name)
		}
	}
	return nil
}

func (d *plyDecoder) skipElement(e *PLYElement) error {
	if !d.header.Binary {
		for i := 0; i < e.Count; i++ {
			if _, err := d.textRecord(); err != nil {
				return fmt.Errorf("element %s: %w", e.Name, err)
			}
		}
		return nil
	}

	if !e.HasLists() {
		stride := 0
		for _, p := range e.Properties {
			stride += plyTypeSize(p.Type)
		}
		if _, err := d.br.Discard(stride * e.Count); err != nil {
			return wrapRead(err, "element "+e.Name)
		}
		return nil
	}

	vals := make([]float64, len(e.Properties))
	for i := 0; i < e.Count; i++ {
		if err := d.readRecord(e, vals); err != nil {
			return fmt.Errorf("element %s: %w", e.Name, err)
		}
	}
	return nil
}

// readFaces decodes the face element into m. If a face with an unsupported
// corner count is found, faces are discarded and m.Fallback is set.
func (d *plyDecoder) readFaces(e *PLYElement, v *plyVertex, m *mesh.Mesh) error {
	list := e.Property("vertex_indices")
	if list < 0 {
		list = e.Property("vertex_index")
	}
	if list < 0 || !e.Properties[list].List {
		list = -1
		for i, p := range e.Properties {
			if p.List {
				list = i
				break
			}
		}
	}
	if list < 0 {
		m.Fallback = "face element has no vertex index list"
		return d.skipElement(e)
	}

	var corners [4]int
	for i := 0; i < e.Count; i++ {
		n, err := d.readFace(e, list, corners[:])
		if err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
		fan := faceFan(n)
		if fan == nil {
			m.Vertices, m.Normals, m.Colors, m.Indices = nil, nil, nil, nil
			m.Fallback = fmt.Sprintf("face %d has %d vertices", i, n)
			return nil
		}
		for _, c := range corners[:n] {
			if c < 0 || c >= len(v.pos) {
				return fmt.Errorf("face %d: %w: %d (%d vertices)", i, ErrIndexOutOfRange, c, len(v.pos))
			}
		}

		for _, tri := range fan {
			a, b, c := corners[tri[0]], corners[tri[1]], corners[tri[2]]
			n := geom.CalculateNormal(v.pos[a], v.pos[b], v.pos[c])
			for _, k := range [3]int{a, b, c} {
				m.Indices = append(m.Indices, uint32(len(m.Vertices)))
				m.Vertices = append(m.Vertices, v.pos[k])
				m.Normals = append(m.Normals, n)
				m.Colors = append(m.Colors, v.colors[k])
			}
		}
	}
	return nil
}

// readFace reads one face record and returns its corner count. Only the first
// len(corners) indices are stored; the rest of the record is consumed.
func (d *plyDecoder) readFace(e *PLYElement, list int, corners []int) (int, error) {
	if !d.header.Binary {
		fields, err := d.textRecord()
		if err != nil {
			return 0, err
		}
		lead := 0
		for i := 0; i < list; i++ {
			if lead >= len(fields) {
				return 0, fmt.Errorf("%w: line %d: too few values", ErrInvalidModel, d.line)
			}
			if e.Properties[i].List {
				f, err := strconv.ParseFloat(fields[lead], 64)
				if err != nil {
					return 0, fmt.Errorf("%w: line %d: %s: %v", ErrInvalidModel, d.line, e.Properties[i].Name, err)
				}
				n, err := listCount(f)
				if err != nil {
					return 0, fmt.Errorf("line %d: %s: %w", d.line, e.Properties[i].Name, err)
				}
				lead += n
			}
			lead++
		}
		if lead >= len(fields) {
			return 0, fmt.Errorf("%w: line %d: missing vertex index list", ErrInvalidModel, d.line)
		}

		ints := make([]int, 1+len(corners))
		got := ParseInts(strings.Join(fields[lead:], " "), ints)
		count := ints[0]
		if count < 0 {
			return 0, fmt.Errorf("%w: line %d: bad vertex count", ErrInvalidModel, d.line)
		}
		if count > len(corners) {
			return count, nil
		}
		if got < 1+count {
			return 0, fmt.Errorf("%w: line %d: %d indices expected", ErrInvalidModel, d.line, count)
		}
		copy(corners, ints[1:1+count])
		return count, nil
	}

	count := 0
	for i, p := range e.Properties {
		if !p.List {
			if _, err := d.br.Discard(plyTypeSize(p.Type)); err != nil {
				return 0, wrapRead(err, "face property "+p.Name)
			}
			continue
		}
		nf, err := d.binaryScalar(p.CountType)
		if err != nil {
			return 0, err
		}
		n, err := listCount(nf)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p.Name, err)
		}
		if i != list {
			if _, err := d.br.Discard(n * plyTypeSize(p.ItemType)); err != nil {
				return 0, wrapRead(err, "face property "+p.Name)
			}
			continue
		}
		count = n
		for k := 0; k < n; k++ {
			idx, err := d.binaryScalar(p.ItemType)
			if err != nil {
				return 0, err
			}
			if k < len(corners) {
				corners[k] = int(idx)
			}
		}
	}
	return count, nil
}

// listCount converts a decoded list length, rejecting negative and fractional values.
func listCount(f float64) (int, error) {
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: bad list length %v", ErrInvalidModel, f)
	}
	return int(f), nil
}

// textRecord returns the fields of the next non-blank data line.
func (d *plyDecoder) textRecord() ([]string, error) {
	for {
		line, err := d.br.ReadString('\n')
		if len(line) > 0 || err == nil {
			d.line++
			if fields := strings.Fields(line); len(fields) > 0 {
				return fields, nil
			}
		}
		if err != nil {
			return nil, wrapRead(err, "PLY data")
		}
	}
}

// binaryScalar reads one value of a scalar PLY type.
func (d *plyDecoder) binaryScalar(typ string) (float64, error) {
	size := plyTypeSize(typ)
	b := d.buf[:size]
	if _, err := io.ReadFull(d.br, b); err != nil {
		return 0, wrapRead(err, "PLY "+typ)
	}
	return plyScalar(b, typ, d.order), nil
}

func plyScalar(b []byte, typ string, order binary.ByteOrder) float64 {
	switch typ {
	case "char", "int8":
		return float64(binutil.Int8(b, 0))
	case "uchar", "uint8":
		return float64(binutil.Uint8(b, 0))
	case "short", "int16":
		return float64(binutil.Int16(b, 0, order))
	case "ushort", "uint16":
		return float64(binutil.Uint16(b, 0, order))
	case "int", "int32":
		return float64(binutil.Int32(b, 0, order))
	case "uint", "uint32":
		return float64(binutil.Uint32(b, 0, order))
	case "float", "float32":
		return float64(binutil.Float32(b, 0, order))
	case "double", "float64":
		return binutil.Float64(b, 0, order)
	case "long", "int64":
		return float64(binutil.Int64(b, 0, order))
	case "ulong", "uint64":
		return float64(order.Uint64(b))
	default:
		return 0
	}
}
