package formats

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
)

const testMTL = `# two materials
newmtl red
Ka 0.1 0.0 0.0
Kd 1.0 0.0 0.0
Ks 0.5 0.5 0.5
Ns 32
d 0.75
map_Kd -bm 0.5 textures\red.png
map_Bump red_n.png

newmtl glass
Tr 0.9
map_d glass_alpha.png
`

const testObjects = `mtllib materials\scene.mtl
o cube
v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
vt 0 0
vt 1 0
vt 1 1
vt 0 0.25
vn 0 0 1
usemtl red
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl glass
f 1/1/1 3/3/1 4/4/1
o
v 0 0 5
v 1 0 5
v 0 1 5
vn 0 0 -1
f -3//-1 -2//-1 -1//-1
`

func TestParseMTL(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader(testMTL), nil)
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(mats) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(mats))
	}

	red := mats["red"]
	if red.Diffuse != (mgl32.Vec3{1, 0, 0}) || red.Ambient != (mgl32.Vec3{0.1, 0, 0}) {
		t.Errorf("red colors: Ka=%v Kd=%v", red.Ambient, red.Diffuse)
	}
	if red.Shininess != 32 || red.Alpha != 0.75 {
		t.Errorf("red Ns=%v d=%v", red.Shininess, red.Alpha)
	}
	if red.DiffuseMap != `textures\red.png` || red.BumpMap != "red_n.png" {
		t.Errorf("red maps: Kd=%q bump=%q", red.DiffuseMap, red.BumpMap)
	}

	glass := mats["glass"]
	if glass.Diffuse != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("glass should keep the white default, got %v", glass.Diffuse)
	}
	if d := glass.Alpha - 0.1; d > 1e-6 || d < -1e-6 {
		t.Errorf("glass alpha = %v, want 1 - Tr = 0.1", glass.Alpha)
	}
	if glass.AlphaMap != "glass_alpha.png" {
		t.Errorf("glass map_d = %q", glass.AlphaMap)
	}
}

func TestParseMTL_BadNumber(t *testing.T) {
	_, err := ParseMTL(strings.NewReader("newmtl x\nNs shiny\n"), nil)
	if !errors.Is(err, ErrInvalidMaterial) {
		t.Errorf("expected ErrInvalidMaterial, got %v", err)
	}
}

func TestLoadObjects(t *testing.T) {
	fsys := fstest.MapFS{
		"materials/scene.mtl": {Data: []byte(testMTL)},
	}
	var warnings []string
	objs, err := LoadObjects(strings.NewReader(testObjects), ObjectOptions{
		Materials: fsys,
		Warnf:     func(format string, args ...any) { warnings = append(warnings, format) },
	})
	if err != nil {
		t.Fatalf("LoadObjects failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(objs) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(objs))
	}

	cube := objs[0]
	if cube.Name != "cube" || cube.MaterialName != "red" || cube.Material == nil {
		t.Fatalf("object 0: name=%q material=%q resolved=%v", cube.Name, cube.MaterialName, cube.Material != nil)
	}
	if len(cube.Vertices) != 6 || len(cube.Normals) != 6 || len(cube.TexCoords) != 6 {
		t.Errorf("object 0: %d vertices, %d normals, %d texcoords", len(cube.Vertices), len(cube.Normals), len(cube.TexCoords))
	}
	// vt 0 0.25 is flipped to 1 - 0.25; it is the last corner of the quad fan.
	if cube.TexCoords[5] != (mgl32.Vec2{0, 0.75}) {
		t.Errorf("flipped texcoord = %v, want (0, 0.75)", cube.TexCoords[5])
	}
	// Centroid sums the four "v" lines and divides by six face corners.
	if cube.Centroid.X != 4.0/6 || cube.Centroid.Y != 4.0/6 {
		t.Errorf("object 0 centroid = %v", cube.Centroid)
	}
	if cube.Bounds.Max != (mgl32.Vec3{2, 2, 0}) {
		t.Errorf("object 0 max bound = %v", cube.Bounds.Max)
	}

	glass := objs[1]
	if glass.Name != "cube" || glass.MaterialName != "glass" || glass.Material == nil {
		t.Errorf("object 1: name=%q material=%q", glass.Name, glass.MaterialName)
	}
	if len(glass.Vertices) != 3 {
		t.Errorf("object 1: %d vertices, want 3", len(glass.Vertices))
	}
	// The split declares no vertices of its own; its mesh is bounded by the corners it draws.
	if err := glass.Mesh().Validate(); err != nil {
		t.Errorf("object 1 Mesh().Validate: %v", err)
	}

	def := objs[2]
	if def.Name != defaultObjectName {
		t.Errorf("object 2 name = %q, want %q", def.Name, defaultObjectName)
	}
	if def.TexCoords != nil {
		t.Error("object 2 has no texture indices and should have no texcoords")
	}
	if def.Vertices[0] != (mgl32.Vec3{0, 0, 5}) || def.Normals[0] != (mgl32.Vec3{0, 0, -1}) {
		t.Errorf("object 2 corner 0 = %v / %v", def.Vertices[0], def.Normals[0])
	}
	if d := def.Centroid.Z - 5; d > 1e-9 || d < -1e-9 {
		t.Errorf("object 2 centroid = %v, want Z = 5", def.Centroid)
	}

	m := def.Mesh()
	if err := m.Validate(); err != nil {
		t.Errorf("Mesh().Validate: %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Errorf("Mesh() triangles = %d, want 1", m.TriangleCount())
	}
}

func TestLoadObjects_MissingLibrary(t *testing.T) {
	var warnings int
	objs, err := LoadObjects(strings.NewReader(testObjects), ObjectOptions{
		Materials: fstest.MapFS{},
		Warnf:     func(string, ...any) { warnings++ },
	})
	if err != nil {
		t.Fatalf("LoadObjects failed: %v", err)
	}
	if warnings != 1 {
		t.Errorf("expected 1 warning, got %d", warnings)
	}
	if objs[0].MaterialName != "red" || objs[0].Material != nil {
		t.Errorf("material name should be kept unresolved, got %q / %v", objs[0].MaterialName, objs[0].Material)
	}
}

func TestLoadObjects_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"no normals", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n", ErrNoNormals},
		{"partial normals", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2 3\n", ErrNoNormals},
		{"no faces", "v 0 0 0\n", ErrInvalidModel},
		{"out of range", "v 0 0 0\nvn 0 0 1\nf 1//1 2//1 3//1\n", ErrIndexOutOfRange},
		{"hexagon", "v 0 0 0\nf 1 1 1 1 1 1\n", ErrUnsupportedFace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs, err := LoadObjects(strings.NewReader(tt.data), ObjectOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if objs != nil {
				t.Error("objects returned together with an error")
			}
		})
	}
}
