package formats

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const objQuad = `# unit quad
o plane
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestParseOBJ_Quad(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(objQuad))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if m.Name != "plane" {
		t.Errorf("expected name 'plane', got %q", m.Name)
	}
	if m.VertexCount() != 6 || m.IndexCount() != 6 {
		t.Fatalf("expected 6 vertices and indices, got %d/%d", m.VertexCount(), m.IndexCount())
	}

	// Fan order {0,1,2},{0,2,3}.
	want := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	for i, v := range m.Vertices {
		if v != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v, want[i])
		}
		if m.Indices[i] != uint32(i) {
			t.Errorf("index %d = %d, want %d", i, m.Indices[i], i)
		}
		if m.Normals[i] != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("normal %d = %v, want computed (0,0,1)", i, m.Normals[i])
		}
	}

	if m.Centroid.X != 0.5 || m.Centroid.Y != 0.5 || m.Centroid.Z != 0 {
		t.Errorf("centroid = %v, want (0.5, 0.5, 0)", m.Centroid)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseOBJ_NormalsAndNegativeIndices(t *testing.T) {
	data := `v 0 0 0
v 2 0 0
v 0 2 0
vn 0 0 -1
vt 0.5 0.5
f -3/1/-1 -2/1/-1 -1/1/-1
`
	m, err := ParseOBJ(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if m.Vertices[0] != (mgl32.Vec3{0, 0, 0}) || m.Vertices[2] != (mgl32.Vec3{0, 2, 0}) {
		t.Errorf("vertices = %v", m.Vertices)
	}
	for i, n := range m.Normals {
		if n != (mgl32.Vec3{0, 0, -1}) {
			t.Errorf("normal %d = %v, want file normal (0,0,-1)", i, n)
		}
	}
}

func TestParseOBJ_SlashForms(t *testing.T) {
	data := `v 0 0 0
v 1 0 0
v 0 1 0
vn 1 0 0
f 1//1 2//1 3//1
`
	m, err := ParseOBJ(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if m.Normals[1] != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("normal = %v, want (1,0,0)", m.Normals[1])
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"no faces", "v 0 0 0\nv 1 0 0\n", ErrInvalidModel},
		{"pentagon", "v 0 0 0\nf 1 1 1 1 1\n", ErrUnsupportedFace},
		{"line", "v 0 0 0\nf 1 1\n", ErrUnsupportedFace},
		{"vertex out of range", "v 0 0 0\nv 1 0 0\nf 1 2 3\n", ErrIndexOutOfRange},
		{"negative out of range", "v 0 0 0\nf -1 -2 -1\n", ErrIndexOutOfRange},
		{"normal out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//2 2//2 3//2\n", ErrIndexOutOfRange},
		{"short vertex", "v 0 0\n", ErrInvalidModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseOBJ(strings.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if m != nil {
				t.Error("mesh returned together with an error")
			}
		})
	}
}
