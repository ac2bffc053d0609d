// Package sdf provides signed distance geometries used to confine root
// growth: plant containers, half spaces, rigid transforms, and boolean
// combinations. Distances are negative inside the domain and positive
// outside; magnitudes are approximate near edges, the sign is exact.
package sdf

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry is the signed distance query shared by every shape in this
// package. Negative means inside the domain.
type Geometry interface {
	Dist(p r3.Vec) float64
}

// Box is an axis-aligned soil volume: Width spans x, Breadth spans y, both
// centered on the origin, and Depth extends downward from the surface at
// z = 0.
type Box struct {
	Width, Breadth, Depth float64
}

// NewBox returns a box container with the given edge lengths.
func NewBox(width, breadth, depth float64) *Box {
	return &Box{Width: width, Breadth: breadth, Depth: depth}
}

// Dist implements Geometry.
func (b *Box) Dist(p r3.Vec) float64 {
	qx := math.Abs(p.X) - b.Width/2
	qy := math.Abs(p.Y) - b.Breadth/2
	qz := math.Abs(p.Z+b.Depth/2) - b.Depth/2
	out := r3.Vec{X: math.Max(qx, 0), Y: math.Max(qy, 0), Z: math.Max(qz, 0)}
	return r3.Norm(out) + math.Min(math.Max(qx, math.Max(qy, qz)), 0)
}

// Container is a flowerpot: radius TopRadius at the surface tapering to
// BottomRadius at depth Height. Square containers use the radii as half edge
// lengths.
type Container struct {
	TopRadius    float64
	BottomRadius float64
	Height       float64
	Square       bool
}

// NewContainer returns a round container.
func NewContainer(top, bottom, height float64) *Container {
	return &Container{TopRadius: top, BottomRadius: bottom, Height: height}
}

// NewSquareContainer returns a square container; the radii are half edge
// lengths.
func NewSquareContainer(top, bottom, height float64) *Container {
	return &Container{TopRadius: top, BottomRadius: bottom, Height: height, Square: true}
}

// Dist implements Geometry.
func (c *Container) Dist(p r3.Vec) float64 {
	radial := math.Hypot(p.X, p.Y)
	if c.Square {
		radial = math.Max(math.Abs(p.X), math.Abs(p.Y))
	}
	// Wall radius at this depth, linearly interpolated between the rims.
	t := 0.0
	if c.Height > 0 {
		t = math.Min(math.Max(-p.Z/c.Height, 0), 1)
	}
	wall := c.TopRadius + (c.BottomRadius-c.TopRadius)*t
	return math.Max(radial-wall, math.Max(p.Z, -p.Z-c.Height))
}

// HalfSpace keeps everything behind a plane.
type HalfSpace struct {
	O r3.Vec // a point on the plane
	N r3.Vec // outward normal, unit length
}

// NewHalfSpace returns the half space behind the plane through o with
// outward normal n.
func NewHalfSpace(o, n r3.Vec) *HalfSpace {
	return &HalfSpace{O: o, N: r3.Unit(n)}
}

// Dist implements Geometry.
func (h *HalfSpace) Dist(p r3.Vec) float64 {
	return r3.Dot(h.N, r3.Sub(p, h.O))
}

// Axis selects a rotation axis for RotateTranslate.
type Axis int

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

func (a Axis) vec() r3.Vec {
	switch a {
	case XAxis:
		return r3.Vec{X: 1}
	case YAxis:
		return r3.Vec{Y: 1}
	default:
		return r3.Vec{Z: 1}
	}
}

// RotateTranslate places a geometry rotated by an angle about a principal
// axis and shifted to a position. Queries map the point back into the
// geometry's local frame.
type RotateTranslate struct {
	Geometry Geometry
	Angle    float64 // radians
	About    Axis
	Shift    r3.Vec

	inv r3.Rotation
}

// NewRotateTranslate returns the transformed geometry.
func NewRotateTranslate(g Geometry, angle float64, about Axis, shift r3.Vec) *RotateTranslate {
	return &RotateTranslate{
		Geometry: g,
		Angle:    angle,
		About:    about,
		Shift:    shift,
		inv:      r3.NewRotation(-angle, about.vec()),
	}
}

// Dist implements Geometry.
func (rt *RotateTranslate) Dist(p r3.Vec) float64 {
	local := rt.inv.Rotate(r3.Sub(p, rt.Shift))
	return rt.Geometry.Dist(local)
}

// Union is inside wherever any part is inside.
type Union struct {
	Parts []Geometry
}

// Dist implements Geometry.
func (u *Union) Dist(p r3.Vec) float64 {
	d := math.Inf(1)
	for _, g := range u.Parts {
		d = math.Min(d, g.Dist(p))
	}
	return d
}

// Intersection is inside only where every part is inside.
type Intersection struct {
	Parts []Geometry
}

// Dist implements Geometry.
func (in *Intersection) Dist(p r3.Vec) float64 {
	d := math.Inf(-1)
	for _, g := range in.Parts {
		d = math.Max(d, g.Dist(p))
	}
	return d
}

// Difference is inside the first part but outside the second.
type Difference struct {
	Keep, Cut Geometry
}

// Dist implements Geometry.
func (d *Difference) Dist(p r3.Vec) float64 {
	return math.Max(d.Keep.Dist(p), -d.Cut.Dist(p))
}

// Complement swaps inside and outside.
type Complement struct {
	Geometry Geometry
}

// Dist implements Geometry.
func (c *Complement) Dist(p r3.Vec) float64 {
	return -c.Geometry.Dist(p)
}
