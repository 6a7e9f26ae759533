package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Material is one newmtl block of a Wavefront MTL library.
type Material struct {
	Name string

	Ambient   mgl32.Vec3 // Ka
	Diffuse   mgl32.Vec3 // Kd
	Specular  mgl32.Vec3 // Ks
	Shininess float32    // Ns
	Alpha     float32    // d, or 1 - Tr

	AmbientMap   string // map_Ka
	DiffuseMap   string // map_Kd
	SpecularMap  string // map_Ks
	ShininessMap string // map_Ns
	AlphaMap     string // map_d / map_Tr
	BumpMap      string // map_Bump / bump
}

// NewMaterial returns a material with white colors and full opacity.
func NewMaterial(name string) *Material {
	return &Material{
		Name:     name,
		Ambient:  mgl32.Vec3{1, 1, 1},
		Diffuse:  mgl32.Vec3{1, 1, 1},
		Specular: mgl32.Vec3{1, 1, 1},
		Alpha:    1,
	}
}

// ParseMTL parses a material library. decode, if non-nil, converts material
// names and texture paths to UTF-8. Unknown statements are ignored.
func ParseMTL(r io.Reader, decode func(string) string) (map[string]*Material, error) {
	if decode == nil {
		decode = func(s string) string { return s }
	}

	result := make(map[string]*Material)
	var cur *Material

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, inputBufferSize), maxLineLength)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		key, args := fields[0], fields[1:]
		if key == "newmtl" {
			name := "def"
			if len(args) > 0 {
				name = decode(args[0])
			}
			cur = NewMaterial(name)
			result[name] = cur
			continue
		}
		if cur == nil {
			continue
		}

		var err error
		switch key {
		case "Ka":
			cur.Ambient, err = parseVec3(args)
		case "Kd":
			cur.Diffuse, err = parseVec3(args)
		case "Ks":
			cur.Specular, err = parseVec3(args)
		case "Ns":
			cur.Shininess, err = parseScalar(args)
		case "d":
			cur.Alpha, err = parseScalar(args)
		case "Tr":
			var tr float32
			tr, err = parseScalar(args)
			cur.Alpha = 1 - tr
		case "map_Ka":
			cur.AmbientMap = texturePath(args, decode)
		case "map_Kd":
			cur.DiffuseMap = texturePath(args, decode)
		case "map_Ks":
			cur.SpecularMap = texturePath(args, decode)
		case "map_Ns":
			cur.ShininessMap = texturePath(args, decode)
		case "map_d", "map_Tr":
			cur.AlphaMap = texturePath(args, decode)
		case "map_Bump", "map_bump", "bump":
			cur.BumpMap = texturePath(args, decode)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrInvalidMaterial, lineNo, key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, wrapRead(err, "MTL")
	}
	return result, nil
}

func parseScalar(args []string) (float32, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing value")
	}
	f, err := strconv.ParseFloat(args[0], 32)
	return float32(f), err
}

// texturePath returns the file name of a map statement. Options such as
// "-bm 0.5" precede the name, so the last token is used.
func texturePath(args []string, decode func(string) string) string {
	if len(args) == 0 {
		return ""
	}
	return decode(args[len(args)-1])
}
