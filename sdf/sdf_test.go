package sdf

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoxDist(t *testing.T) {
	b := NewBox(10, 10, 20)
	cases := []struct {
		p    r3.Vec
		want float64
	}{
		{r3.Vec{Z: -10}, -5},          // center, closest face 5 away
		{r3.Vec{Z: 1}, 1},             // above the surface
		{r3.Vec{X: 6, Z: -5}, 1},      // outside one wall
		{r3.Vec{X: 5, Z: -10}, 0},     // on a wall
		{r3.Vec{X: 4.5, Z: -1}, -0.5}, // near a wall, inside
	}
	for _, c := range cases {
		if got := b.Dist(c.p); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Dist(%v): got %g, want %g", c.p, got, c.want)
		}
	}
}

func TestContainerDist(t *testing.T) {
	cyl := NewContainer(5, 5, 10)
	if got := cyl.Dist(r3.Vec{Z: -5}); got >= 0 {
		t.Errorf("cylinder center: got %g, want inside", got)
	}
	if got := cyl.Dist(r3.Vec{X: 6, Z: -5}); got <= 0 {
		t.Errorf("outside the wall: got %g, want outside", got)
	}
	if got := cyl.Dist(r3.Vec{Z: 1}); got <= 0 {
		t.Errorf("above the rim: got %g, want outside", got)
	}
	if got := cyl.Dist(r3.Vec{Z: -11}); got <= 0 {
		t.Errorf("below the bottom: got %g, want outside", got)
	}

	// A cone tapers: the wall closes in with depth.
	cone := NewContainer(5, 0, 10)
	if got := cone.Dist(r3.Vec{X: 3, Z: -5}); got <= 0 {
		t.Errorf("outside the tapered wall: got %g, want outside", got)
	}
	if got := cone.Dist(r3.Vec{X: 2, Z: -5}); got >= 0 {
		t.Errorf("inside the tapered wall: got %g, want inside", got)
	}

	// A square container reaches into the corners a round one cuts off.
	square := NewSquareContainer(5, 5, 10)
	corner := r3.Vec{X: 4.9, Y: 4.9, Z: -5}
	if got := square.Dist(corner); got >= 0 {
		t.Errorf("square corner: got %g, want inside", got)
	}
	if got := cyl.Dist(corner); got <= 0 {
		t.Errorf("round corner: got %g, want outside", got)
	}
}

func TestHalfSpaceDist(t *testing.T) {
	h := NewHalfSpace(r3.Vec{}, r3.Vec{Z: 1}) // soil surface, outward up
	if got := h.Dist(r3.Vec{Z: -1}); got != -1 {
		t.Errorf("below the plane: got %g, want -1", got)
	}
	if got := h.Dist(r3.Vec{Z: 2}); got != 2 {
		t.Errorf("above the plane: got %g, want 2", got)
	}
	// The normal is normalized on construction.
	h2 := NewHalfSpace(r3.Vec{}, r3.Vec{Z: 10})
	if got := h2.Dist(r3.Vec{Z: -1}); math.Abs(got+1) > 1e-12 {
		t.Errorf("scaled normal: got %g, want -1", got)
	}
}

func TestRotateTranslate(t *testing.T) {
	b := NewBox(10, 2, 2)

	// Shift only: the box follows its new origin.
	shifted := NewRotateTranslate(b, 0, ZAxis, r3.Vec{X: 10})
	if got := shifted.Dist(r3.Vec{X: 10, Z: -1}); got >= 0 {
		t.Errorf("shifted center: got %g, want inside", got)
	}
	if got := shifted.Dist(r3.Vec{Z: -1}); got <= 0 {
		t.Errorf("old center: got %g, want outside", got)
	}

	// A quarter turn about z swaps the long axis from x to y.
	turned := NewRotateTranslate(b, math.Pi/2, ZAxis, r3.Vec{})
	if got := turned.Dist(r3.Vec{Y: 4, Z: -1}); got >= 0 {
		t.Errorf("along the turned long axis: got %g, want inside", got)
	}
	if got := turned.Dist(r3.Vec{X: 4, Z: -1}); got <= 0 {
		t.Errorf("along the old long axis: got %g, want outside", got)
	}
}

func TestBooleans(t *testing.T) {
	left := NewRotateTranslate(NewBox(4, 4, 4), 0, ZAxis, r3.Vec{X: -3})
	right := NewRotateTranslate(NewBox(4, 4, 4), 0, ZAxis, r3.Vec{X: 3})

	u := &Union{Parts: []Geometry{left, right}}
	if got := u.Dist(r3.Vec{X: -3, Z: -2}); got >= 0 {
		t.Errorf("union left lobe: got %g, want inside", got)
	}
	if got := u.Dist(r3.Vec{X: 3, Z: -2}); got >= 0 {
		t.Errorf("union right lobe: got %g, want inside", got)
	}
	if got := u.Dist(r3.Vec{X: 0, Z: -2}); got <= 0 {
		t.Errorf("union gap: got %g, want outside", got)
	}

	in := &Intersection{Parts: []Geometry{left, right}}
	if got := in.Dist(r3.Vec{X: -3, Z: -2}); got <= 0 {
		t.Errorf("intersection of disjoint boxes: got %g, want outside", got)
	}

	big := NewBox(10, 10, 10)
	core := NewBox(2, 2, 2)
	d := &Difference{Keep: big, Cut: core}
	if got := d.Dist(r3.Vec{X: 0, Z: -1}); got <= 0 {
		t.Errorf("difference core: got %g, want outside", got)
	}
	if got := d.Dist(r3.Vec{X: 4, Z: -5}); got >= 0 {
		t.Errorf("difference shell: got %g, want inside", got)
	}

	c := &Complement{Geometry: big}
	if got := c.Dist(r3.Vec{Z: -5}); got <= 0 {
		t.Errorf("complement interior: got %g, want outside", got)
	}
}

func TestScript(t *testing.T) {
	script, last, err := Script(NewBox(10, 12, 20))
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if last != 1 {
		t.Errorf("expected the box in obj1, got obj%d", last)
	}
	for _, want := range []string{"obj1 = Box()", "obj1.XLength = 10", "obj1.YLength = 12", "obj1.ZLength = 20"} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}

	script, last, err = Script(NewContainer(5, 4, 10))
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if last != 2 {
		t.Errorf("expected the upright cylinder in obj2, got obj%d", last)
	}
	if !strings.Contains(script, "Cylinder()") || !strings.Contains(script, "Transform(Input=obj1)") {
		t.Errorf("container script incomplete:\n%s", script)
	}

	u := &Union{Parts: []Geometry{NewBox(4, 4, 4), NewBox(2, 2, 2)}}
	script, _, err = Script(u)
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if !strings.Contains(script, "GroupDatasets(Input=[obj1, obj2])") {
		t.Errorf("union script missing the group:\n%s", script)
	}

	if _, _, err := Script(&Complement{Geometry: NewBox(1, 1, 1)}); err == nil {
		t.Error("expected an error for a shape without a visual form")
	}
}
