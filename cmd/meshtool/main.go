// meshtool is a CLI utility for inspecting and converting STL, OBJ and PLY models.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/encoding"
	"github.com/Faultbox/meshview/pkg/formats"
	"github.com/Faultbox/meshview/pkg/loader"
	"github.com/Faultbox/meshview/pkg/mesh"
)

var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	err = run(cfg, logger.Log, flag.Arg(0), flag.Args()[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	default:
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshtool - STL / OBJ / PLY model utility

Usage:
  meshtool [global options] <command> [options]

Commands:
  info <model>              Show format, counts, bounds and centroid
  bounds <model>            Show model-space scale, floor offset and matrix
  objects <file.obj>        List objects and materials of a multi-object OBJ
  export <model> <out.stl>  Write a model as binary STL
  config [path]             Write the effective configuration as YAML

Global options:
  -config <file>            Config file (default ./meshtool.yaml, then user config dir)
  -obj-parser stl|obj       Parser for .obj files (default stl)
  -encoding <charset>       Charset of names inside model files
  -size <n>                 Bound size for model-space normalization
  -debug                    Enable debug logging
  -log-file <file>          Also write logs to a rotating file

Examples:
  meshtool info part.stl
  meshtool -obj-parser obj bounds chair.obj
  meshtool -encoding euc-kr objects scene.obj
  meshtool export scan.ply scan.stl`)
}

// run executes one command. Output meant for the user goes to out.
func run(cfg *config.Config, log *zap.Logger, command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(cfg, log, args, out)
	case "bounds":
		return cmdBounds(cfg, log, args, out)
	case "objects":
		return cmdObjects(cfg, log, args, out)
	case "export":
		return cmdExport(cfg, log, args, out)
	case "config":
		return cmdConfig(cfg, args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q, see meshtool help", errUsage, command)
	}
}

func loadOptions(cfg *config.Config, log *zap.Logger) ([]loader.Option, error) {
	decode, err := encoding.NewDecoder(cfg.Loader.NameEncoding)
	if err != nil {
		return nil, err
	}
	return []loader.Option{
		loader.WithLogger(log),
		loader.WithOBJParser(cfg.UseOBJParser()),
		loader.WithNameDecoder(decode),
	}, nil
}

func loadModel(cfg *config.Config, log *zap.Logger, path string) (*mesh.Mesh, error) {
	opts, err := loadOptions(cfg, log)
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path, opts...)
}

func cmdInfo(cfg *config.Config, log *zap.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool info <model>", errUsage)
	}

	m, err := loadModel(cfg, log, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "File:      %s\n", fs.Arg(0))
	fmt.Fprintf(out, "Format:    %s\n", m.Kind)
	if m.Name != "" {
		fmt.Fprintf(out, "Name:      %s\n", m.Name)
	}
	fmt.Fprintf(out, "Primitive: %s\n", m.Primitive())
	fmt.Fprintf(out, "Vertices:  %d\n", m.VertexCount())
	if m.Indexed() {
		fmt.Fprintf(out, "Indices:   %d\n", m.IndexCount())
	}
	fmt.Fprintf(out, "Triangles: %d\n", m.TriangleCount())
	fmt.Fprintf(out, "Colors:    %v\n", m.HasColors())
	if m.Fallback != "" {
		fmt.Fprintf(out, "Fallback:  %s\n", m.Fallback)
	}
	b := m.Bounds.Array()
	fmt.Fprintf(out, "Min:       %.4f %.4f %.4f\n", b[0], b[1], b[2])
	fmt.Fprintf(out, "Max:       %.4f %.4f %.4f\n", b[3], b[4], b[5])
	fmt.Fprintf(out, "Centroid:  %.4f %.4f %.4f\n", m.Centroid.X, m.Centroid.Y, m.Centroid.Z)
	return nil
}

func cmdBounds(cfg *config.Config, log *zap.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("bounds", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool bounds <model>", errUsage)
	}

	m, err := loadModel(cfg, log, fs.Arg(0))
	if err != nil {
		return err
	}

	size := cfg.View.BoundSize
	o := mesh.OrientationFor(m.Kind)
	ext := m.Bounds.Size()
	fmt.Fprintf(out, "Extent:       %.4f %.4f %.4f\n", ext[0], ext[1], ext[2])
	fmt.Fprintf(out, "Bound size:   %g\n", size)
	fmt.Fprintf(out, "Scale:        %.6f\n", m.BoundScale(size))
	fmt.Fprintf(out, "Floor offset: %.6f\n", m.FloorOffset(size))
	fmt.Fprintf(out, "Rotation:     x=%g y=%g z=%g\n", o.X, o.Y, o.Z)
	fmt.Fprintln(out, "Model matrix:")

	mat := m.ModelMatrix(size)
	for row := 0; row < 4; row++ {
		r := mat.Row(row)
		fmt.Fprintf(out, "  %10.5f %10.5f %10.5f %10.5f\n", r[0], r[1], r[2], r[3])
	}
	return nil
}

func cmdObjects(cfg *config.Config, log *zap.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("objects", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool objects <file.obj>", errUsage)
	}

	opts, err := loadOptions(cfg, log)
	if err != nil {
		return err
	}
	objs, err := loader.LoadObjectsFile(fs.Arg(0), opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-20s %-16s %8s %8s\n", "OBJECT", "MATERIAL", "CORNERS", "UV")
	for _, o := range objs {
		mat := o.MaterialName
		switch {
		case mat == "":
			mat = "-"
		case o.Material == nil:
			mat += " (missing)"
		}
		fmt.Fprintf(out, "%-20s %-16s %8d %8v\n", o.Name, mat, len(o.Vertices), o.TexCoords != nil)
	}
	fmt.Fprintf(out, "\n(%d objects)\n", len(objs))
	return nil
}

func cmdExport(cfg *config.Config, log *zap.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: meshtool export <model> <out.stl>", errUsage)
	}

	m, err := loadModel(cfg, log, fs.Arg(0))
	if err != nil {
		return err
	}

	outPath := fs.Arg(1)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := formats.WriteSTL(f, m); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Info("model exported", zap.String("output", outPath), zap.Int("triangles", m.TriangleCount()))
	fmt.Fprintf(out, "Exported: %s (%d triangles)\n", outPath, m.TriangleCount())
	return nil
}

func cmdConfig(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved: %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved: %s\n", args[0])
	return nil
}
