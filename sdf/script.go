package sdf

import (
	"fmt"
	"math"
	"strings"
)

// scripted is implemented by shapes that can describe themselves as
// ParaView python construction statements. The snippet leaves its result in
// the object variable named by the returned index.
type scripted interface {
	script(b *strings.Builder, i int) (last int, err error)
}

// Script renders the geometry as ParaView python construction statements
// and returns the index of the object variable holding the final shape.
// Geometries without a visual form return an error.
func Script(g Geometry) (string, int, error) {
	s, ok := g.(scripted)
	if !ok {
		return "", 0, fmt.Errorf("geometry %T has no visual form", g)
	}
	var b strings.Builder
	last, err := s.script(&b, 1)
	if err != nil {
		return "", 0, err
	}
	return b.String(), last, nil
}

func (bx *Box) script(b *strings.Builder, i int) (int, error) {
	fmt.Fprintf(b, "obj%d = Box()\n", i)
	fmt.Fprintf(b, "obj%d.XLength = %g\n", i, bx.Width)
	fmt.Fprintf(b, "obj%d.YLength = %g\n", i, bx.Breadth)
	fmt.Fprintf(b, "obj%d.ZLength = %g\n", i, bx.Depth)
	fmt.Fprintf(b, "obj%d.Center = [0., 0., %g]\n", i, -bx.Depth/2)
	return i, nil
}

func (c *Container) script(b *strings.Builder, i int) (int, error) {
	if c.Square {
		fmt.Fprintf(b, "obj%d = Box()\n", i)
		fmt.Fprintf(b, "obj%d.XLength = %g\n", i, 2*c.TopRadius)
		fmt.Fprintf(b, "obj%d.YLength = %g\n", i, 2*c.TopRadius)
		fmt.Fprintf(b, "obj%d.ZLength = %g\n", i, c.Height)
		fmt.Fprintf(b, "obj%d.Center = [0., 0., %g]\n", i, -c.Height/2)
		return i, nil
	}
	fmt.Fprintf(b, "obj%d = Cylinder()\n", i)
	fmt.Fprintf(b, "obj%d.Resolution = 50\n", i)
	fmt.Fprintf(b, "obj%d.Height = %g\n", i, c.Height)
	fmt.Fprintf(b, "obj%d.Radius = %g\n", i, c.TopRadius)
	fmt.Fprintf(b, "obj%d.Center = [0., %g, 0.]\n", i, -c.Height/2)
	// ParaView cylinders stand along y; tip the shape upright.
	fmt.Fprintf(b, "obj%d = Transform(Input=obj%d)\n", i+1, i)
	fmt.Fprintf(b, "obj%d.Transform.Rotate = [90., 0., 0.]\n", i+1)
	return i + 1, nil
}

func (rt *RotateTranslate) script(b *strings.Builder, i int) (int, error) {
	s, ok := rt.Geometry.(scripted)
	if !ok {
		return 0, fmt.Errorf("geometry %T has no visual form", rt.Geometry)
	}
	last, err := s.script(b, i)
	if err != nil {
		return 0, err
	}
	var rot [3]float64
	rot[int(rt.About)] = rt.Angle * 180 / math.Pi
	fmt.Fprintf(b, "obj%d = Transform(Input=obj%d)\n", last+1, last)
	fmt.Fprintf(b, "obj%d.Transform.Translate = [%g, %g, %g]\n", last+1, rt.Shift.X, rt.Shift.Y, rt.Shift.Z)
	fmt.Fprintf(b, "obj%d.Transform.Rotate = [%g, %g, %g]\n", last+1, rot[0], rot[1], rot[2])
	return last + 1, nil
}

func (u *Union) script(b *strings.Builder, i int) (int, error) {
	return scriptGroup(b, i, u.Parts)
}

func (in *Intersection) script(b *strings.Builder, i int) (int, error) {
	return scriptGroup(b, i, in.Parts)
}

// scriptGroup renders every part and groups them into one dataset. Boolean
// semantics are not representable in the scene; the group shows all
// operands.
func scriptGroup(b *strings.Builder, i int, parts []Geometry) (int, error) {
	var objs []string
	next := i
	for _, g := range parts {
		s, ok := g.(scripted)
		if !ok {
			return 0, fmt.Errorf("geometry %T has no visual form", g)
		}
		last, err := s.script(b, next)
		if err != nil {
			return 0, err
		}
		objs = append(objs, fmt.Sprintf("obj%d", last))
		next = last + 1
	}
	fmt.Fprintf(b, "obj%d = GroupDatasets(Input=[%s])\n", next, strings.Join(objs, ", "))
	return next, nil
}
