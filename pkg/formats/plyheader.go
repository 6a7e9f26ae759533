package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PLYProperty is one property line of a PLY header.
// For list properties Type holds the full descriptor, e.g. "list uchar int".
type PLYProperty struct {
	Name      string
	Type      string
	List      bool
	CountType string
	ItemType  string
}

// PLYElement is an element declaration and its properties in header order.
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// Property returns the index of the first property called name, or -1.
func (e *PLYElement) Property(name string) int {
	for i, p := range e.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// HasLists reports whether any property of e is a list.
func (e *PLYElement) HasLists() bool {
	for _, p := range e.Properties {
		if p.List {
			return true
		}
	}
	return false
}

// PLYHeader is the parsed header of a PLY file.
type PLYHeader struct {
	Format    string // ascii, binary_little_endian or binary_big_endian
	Version   string
	Binary    bool
	BigEndian bool
	Elements  []*PLYElement
	Comments  []string
}

// Element returns the element called name, or nil.
func (h *PLYHeader) Element(name string) *PLYElement {
	for _, e := range h.Elements {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// plyTypeSize returns the byte width of a PLY scalar type, or 0 if unknown.
func plyTypeSize(t string) int {
	switch t {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64", "long", "ulong", "int64", "uint64":
		return 8
	default:
		return 0
	}
}

func plyFloatType(t string) bool {
	switch t {
	case "float", "float32", "double", "float64":
		return true
	}
	return false
}

// ReadPLYHeader reads header lines up to and including end_header.
// On success br is positioned at the first byte of element data.
func ReadPLYHeader(br *bufio.Reader) (*PLYHeader, error) {
	line, err := readHeaderLine(br)
	if err != nil {
		return nil, err
	}
	if line != "ply" {
		return nil, fmt.Errorf("%w: missing magic, got %q", ErrInvalidPLYHeader, line)
	}

	h := &PLYHeader{}
	var cur *PLYElement
	for {
		line, err = readHeaderLine(br)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPLYHeader, line)
			}
			h.Format = fields[1]
			h.Binary = strings.Contains(h.Format, "binary")
			h.BigEndian = strings.Contains(h.Format, "big")
			if len(fields) > 2 {
				h.Version = fields[2]
			}

		case "comment", "obj_info":
			h.Comments = append(h.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))

		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPLYHeader, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count in %q", ErrInvalidPLYHeader, line)
			}
			cur = &PLYElement{Name: fields[1], Count: count}
			h.Elements = append(h.Elements, cur)

		case "property":
			if cur == nil {
				return nil, fmt.Errorf("%w: property before any element", ErrInvalidPLYHeader)
			}
			p, err := parsePLYProperty(fields)
			if err != nil {
				return nil, err
			}
			cur.Properties = append(cur.Properties, p)

		case "end_header":
			return h, nil
		}
	}
}

func parsePLYProperty(fields []string) (PLYProperty, error) {
	if len(fields) < 3 {
		return PLYProperty{}, fmt.Errorf("%w: %q", ErrInvalidPLYHeader, strings.Join(fields, " "))
	}
	p := PLYProperty{
		Name: fields[len(fields)-1],
		Type: strings.Join(fields[1:len(fields)-1], " "),
	}
	if fields[1] == "list" {
		if len(fields) != 5 {
			return p, fmt.Errorf("%w: list property %q", ErrInvalidPLYHeader, p.Name)
		}
		p.List = true
		p.CountType, p.ItemType = fields[2], fields[3]
		if plyTypeSize(p.CountType) == 0 || plyTypeSize(p.ItemType) == 0 {
			return p, fmt.Errorf("%w: unknown type in %q", ErrInvalidPLYHeader, p.Type)
		}
		return p, nil
	}
	if plyTypeSize(p.Type) == 0 {
		return p, fmt.Errorf("%w: unknown type %q", ErrInvalidPLYHeader, p.Type)
	}
	return p, nil
}

func readHeaderLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: unexpected end of header", ErrInvalidPLYHeader)
		}
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	return strings.TrimSpace(line), nil
}
