package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Geometry is an opaque description of a link's collision shape. The model
// carries geometries through without interpreting them; collision checkers
// consume them downstream.
type Geometry interface {
	// Label returns the name of the geometry.
	Label() string
}

type box struct {
	label string
	dims  r3.Vector
}

// NewBox returns a rectangular prism geometry with the given full extents.
func NewBox(dims r3.Vector, label string) Geometry {
	return &box{label: label, dims: dims}
}

func (b *box) Label() string { return b.label }

func (b *box) String() string {
	return fmt.Sprintf("box %s %v", b.label, b.dims)
}

type sphere struct {
	label  string
	radius float64
}

// NewSphere returns a sphere geometry with the given radius.
func NewSphere(radius float64, label string) Geometry {
	return &sphere{label: label, radius: radius}
}

func (s *sphere) Label() string { return s.label }

func (s *sphere) String() string {
	return fmt.Sprintf("sphere %s r=%f", s.label, s.radius)
}

type cylinder struct {
	label  string
	radius float64
	length float64
}

// NewCylinder returns a cylinder geometry aligned with the local Z axis.
func NewCylinder(radius, length float64, label string) Geometry {
	return &cylinder{label: label, radius: radius, length: length}
}

func (c *cylinder) Label() string { return c.label }

func (c *cylinder) String() string {
	return fmt.Sprintf("cylinder %s r=%f l=%f", c.label, c.radius, c.length)
}

type mesh struct {
	label     string
	vertices  []r3.Vector
	triangles [][3]int
}

// NewMesh returns a triangle mesh geometry. Vertices and triangle indices are
// stored as given.
func NewMesh(vertices []r3.Vector, triangles [][3]int, label string) Geometry {
	return &mesh{label: label, vertices: vertices, triangles: triangles}
}

func (m *mesh) Label() string { return m.label }

func (m *mesh) String() string {
	return fmt.Sprintf("mesh %s verts=%d tris=%d", m.label, len(m.vertices), len(m.triangles))
}
