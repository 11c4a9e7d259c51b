package models

import (
	"fmt"
	"strings"
)

// ShapeKind is the primitive geometry of a spawned object.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCylinder
	ShapeCone
	ShapeTorus
	ShapePlane
	ShapeTetrahedron
	ShapeOctahedron
	ShapeIcosahedron
	ShapeDodecahedron
	ShapeRing
	ShapeTriangle
)

var shapeNames = [...]string{
	ShapeBox:          "box",
	ShapeSphere:       "sphere",
	ShapeCylinder:     "cylinder",
	ShapeCone:         "cone",
	ShapeTorus:        "torus",
	ShapePlane:        "plane",
	ShapeTetrahedron:  "tetrahedron",
	ShapeOctahedron:   "octahedron",
	ShapeIcosahedron:  "icosahedron",
	ShapeDodecahedron: "dodecahedron",
	ShapeRing:         "ring",
	ShapeTriangle:     "triangle",
}

// Shapes returns every known shape kind in declaration order.
func Shapes() []ShapeKind {
	out := make([]ShapeKind, len(shapeNames))
	for i := range shapeNames {
		out[i] = ShapeKind(i)
	}
	return out
}

func (k ShapeKind) String() string {
	if int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return fmt.Sprintf("shape(%d)", uint8(k))
}

// Valid reports whether k is a known shape.
func (k ShapeKind) Valid() bool {
	return int(k) < len(shapeNames)
}

// ParseShapeKind resolves a shape name. "cube" is accepted as an alias of box.
func ParseShapeKind(name string) (ShapeKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "cube" {
		return ShapeBox, nil
	}
	for i, n := range shapeNames {
		if n == name {
			return ShapeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}

func (k ShapeKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown shape %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *ShapeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseShapeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
