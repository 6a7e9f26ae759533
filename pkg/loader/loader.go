// Package loader picks a parser for a model stream by file name and owns the
// stream for the duration of the parse.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/pkg/formats"
	"github.com/Faultbox/meshview/pkg/mesh"
)

// Format is a parser choice.
type Format int

const (
	FormatSTL Format = iota
	FormatOBJ
	FormatPLY
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "obj"
	case FormatPLY:
		return "ply"
	default:
		return "stl"
	}
}

// DetectFormat chooses a parser from the file extension. ".ply" selects PLY;
// ".obj" selects OBJ only when objParser is set. Everything else is read as STL.
func DetectFormat(name string, objParser bool) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ply":
		return FormatPLY
	case ".obj":
		if objParser {
			return FormatOBJ
		}
	}
	return FormatSTL
}

type options struct {
	log        *zap.Logger
	objParser  bool
	decodeName func(string) string
}

// Option configures Load.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithOBJParser routes ".obj" files to the OBJ parser instead of STL.
func WithOBJParser(enabled bool) Option {
	return func(o *options) { o.objParser = enabled }
}

// WithNameDecoder converts names read from model files to UTF-8.
func WithNameDecoder(decode func(string) string) Option {
	return func(o *options) { o.decodeName = decode }
}

func newOptions(opts []Option) *options {
	o := &options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load parses rc as the format implied by name and closes rc on every path.
// The returned mesh satisfies mesh.Validate.
func Load(rc io.ReadCloser, name string, opts ...Option) (m *mesh.Mesh, err error) {
	o := newOptions(opts)
	log := o.log.With(zap.String("file", name))

	defer func() {
		if cerr := rc.Close(); cerr != nil {
			log.Warn("closing model stream", zap.Error(cerr))
		}
	}()

	format := DetectFormat(name, o.objParser)
	log.Debug("loading model", zap.Stringer("format", format))
	start := time.Now()

	switch format {
	case FormatPLY:
		m, err = formats.ParsePLY(rc)
	case FormatOBJ:
		m, err = formats.ParseOBJ(rc)
	default:
		m, err = formats.ParseSTL(rc)
	}
	if err != nil {
		log.Debug("model parse failed", zap.Stringer("format", format), zap.Error(err))
		return nil, fmt.Errorf("loading %s as %s: %w", name, format, err)
	}

	if verr := m.Validate(); verr != nil {
		return nil, fmt.Errorf("loading %s: %w: %w", name, formats.ErrInvalidModel, verr)
	}
	if o.decodeName != nil && m.Name != "" {
		m.Name = o.decodeName(m.Name)
	}

	if m.Fallback != "" {
		log.Warn("faces ignored, showing point cloud", zap.String("reason", m.Fallback))
	}
	log.Info("model loaded",
		zap.Stringer("kind", m.Kind),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Bool("point_cloud", m.PointCloud),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// LoadFile opens path and calls Load with it.
func LoadFile(path string, opts ...Option) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", formats.ErrRead, err)
	}
	return Load(f, filepath.Base(path), opts...)
}

// LoadObjectsFile reads a multi-object OBJ file. Material libraries are
// resolved relative to the file's directory.
func LoadObjectsFile(path string, opts ...Option) ([]*formats.Object, error) {
	o := newOptions(opts)
	log := o.log.With(zap.String("file", filepath.Base(path)))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", formats.ErrRead, err)
	}
	defer f.Close()

	sugar := log.Sugar()
	objs, err := formats.LoadObjects(f, formats.ObjectOptions{
		Materials:  os.DirFS(filepath.Dir(path)),
		DecodeName: o.decodeName,
		Warnf:      sugar.Warnf,
	})
	if err != nil {
		return nil, fmt.Errorf("loading objects from %s: %w", path, err)
	}
	log.Info("objects loaded", zap.Int("objects", len(objs)))
	return objs, nil
}

// IsUnsupported reports whether err means the file uses a feature the parsers
// do not handle, as opposed to being malformed or unreadable.
func IsUnsupported(err error) bool {
	return errors.Is(err, formats.ErrUnsupportedFace) || errors.Is(err, formats.ErrNoNormals)
}
