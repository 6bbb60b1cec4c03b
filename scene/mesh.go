package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list in object space.
// Triangles are wound counter-clockwise when seen from outside.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c mgl32.Vec3) {
	return m.Positions[m.Indices[3*i]], m.Positions[m.Indices[3*i+1]], m.Positions[m.Indices[3*i+2]]
}

// boxFace describes one face by its outward normal axis and two tangents
// with u x v == normal.
type boxFace struct {
	n, u, v mgl32.Vec3
}

var boxFaces = [6]boxFace{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
}

// NewBox returns an axis-aligned box centered on the origin.
func NewBox(width, height, depth float32) *Mesh {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	scale := func(v mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{v[0] * half[0], v[1] * half[1], v[2] * half[2]}
	}

	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}
	for _, f := range boxFaces {
		c := scale(f.n)
		u := scale(f.u)
		v := scale(f.v)
		base := uint32(len(m.Positions)) //nolint:gosec // at most 24 vertices
		m.Positions = append(m.Positions,
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// NewSphere returns a UV sphere centered on the origin.
// Segment counts are clamped to at least 3 around and 2 from pole to pole.
func NewSphere(radius float32, widthSegments, heightSegments int) *Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, (widthSegments+1)*(heightSegments+1)),
	}
	for iy := 0; iy <= heightSegments; iy++ {
		theta := float64(iy) / float64(heightSegments) * math.Pi
		for ix := 0; ix <= widthSegments; ix++ {
			phi := float64(ix) / float64(widthSegments) * 2 * math.Pi
			m.Positions = append(m.Positions, mgl32.Vec3{
				float32(-float64(radius) * math.Cos(phi) * math.Sin(theta)),
				float32(float64(radius) * math.Cos(theta)),
				float32(float64(radius) * math.Sin(phi) * math.Sin(theta)),
			})
		}
	}

	row := uint32(widthSegments + 1) //nolint:gosec // segment counts are small
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*row + uint32(ix) + 1 //nolint:gosec // segment counts are small
			b := a - 1
			c := b + row
			d := a + row
			// Pole rows collapse to a point; keep only the non-degenerate half.
			if iy != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}
	return m
}
