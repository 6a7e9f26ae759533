package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/pkg/loader"
)

const cubeCornerSTL = `solid corner
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 2 0 0
vertex 0 2 0
endloop
endfacet
facet normal 0 1 0
outer loop
vertex 0 0 0
vertex 0 0 2
vertex 2 0 0
endloop
endfacet
endsolid corner
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Info(t *testing.T) {
	path := writeFile(t, t.TempDir(), "corner.stl", cubeCornerSTL)

	var out bytes.Buffer
	if err := run(config.Default(), zap.NewNop(), "info", []string{path}, &out); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	for _, want := range []string{"Format:    stl", "Name:      corner", "Triangles: 2", "Max:       2.0000 2.0000 2.0000"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("info output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_Bounds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "corner.stl", cubeCornerSTL)

	cfg := config.Default()
	cfg.View.BoundSize = 4
	var out bytes.Buffer
	if err := run(cfg, zap.NewNop(), "bounds", []string{path}, &out); err != nil {
		t.Fatalf("bounds failed: %v", err)
	}

	for _, want := range []string{"Bound size:   4", "Scale:        0.500000", "Model matrix:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("bounds output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_ExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 4 3\n")
	dst := filepath.Join(dir, "out", "tri.stl")

	cfg := config.Default()
	cfg.Loader.OBJParser = config.OBJAsOBJ
	var out bytes.Buffer
	if err := run(cfg, zap.NewNop(), "export", []string{src, dst}, &out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	m, err := loader.LoadFile(dst)
	if err != nil {
		t.Fatalf("reloading export: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles after export, got %d", m.TriangleCount())
	}
}

func TestRun_Objects(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scene.mtl", "newmtl red\nKd 1 0 0\n")
	path := writeFile(t, dir, "scene.obj", strings.Join([]string{
		"mtllib scene.mtl",
		"v 0 0 0", "v 1 0 0", "v 0 1 0",
		"vn 0 0 1",
		"o left", "usemtl red", "f 1//1 2//1 3//1",
		"o right", "usemtl blue", "f 3//1 2//1 1//1",
	}, "\n"))

	var out bytes.Buffer
	if err := run(config.Default(), zap.NewNop(), "objects", []string{path}, &out); err != nil {
		t.Fatalf("objects failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "left") || !strings.Contains(got, "blue (missing)") || !strings.Contains(got, "(2 objects)") {
		t.Errorf("unexpected objects output:\n%s", got)
	}
}

func TestRun_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshtool.yaml")

	cfg := config.Default()
	cfg.View.BoundSize = 7
	var out bytes.Buffer
	if err := run(cfg, zap.NewNop(), "config", []string{path}, &out); err != nil {
		t.Fatalf("config failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "bound_size: 7") {
		t.Errorf("saved config missing bound size:\n%s", data)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		command string
		args    []string
	}{
		{"info", nil},
		{"bounds", nil},
		{"objects", nil},
		{"export", []string{"only-one"}},
		{"render", nil},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(config.Default(), zap.NewNop(), tt.command, tt.args, &out); !errors.Is(err, errUsage) {
				t.Errorf("expected usage error, got %v", err)
			}
		})
	}
}

func TestRun_BadEncoding(t *testing.T) {
	path := writeFile(t, t.TempDir(), "corner.stl", cubeCornerSTL)

	cfg := config.Default()
	cfg.Loader.NameEncoding = "no-such-charset"
	var out bytes.Buffer
	if err := run(cfg, zap.NewNop(), "info", []string{path}, &out); err == nil {
		t.Error("expected error for unknown charset")
	}
}
