// Package soil provides scalar signal fields sampled by position.
// Hydrotropism and elongation scaling read these fields through the
// root system's soil callback; any type with a Value method fits.
package soil

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/taproot/sdf"
)

// Constant reports the same value everywhere.
type Constant struct {
	V float64
}

// NewConstant creates a uniform field with value v.
func NewConstant(v float64) *Constant {
	return &Constant{V: v}
}

func (c *Constant) Value(p r3.Vec) float64 {
	return c.V
}

// Ramp grades a signal across the surface of a geometry. Deep inside the
// geometry the value approaches Max, far outside it approaches Min, and
// Slope is the width of the transition band straddling the surface.
type Ramp struct {
	Geometry sdf.Geometry
	Max      float64
	Min      float64
	Slope    float64
}

// NewRamp creates a ramp over g running from min outside to max inside,
// blending across a band of the given slope width.
func NewRamp(g sdf.Geometry, max, min, slope float64) *Ramp {
	return &Ramp{Geometry: g, Max: max, Min: min, Slope: slope}
}

func (r *Ramp) Value(p r3.Vec) float64 {
	d := r.Geometry.Dist(p)
	if r.Slope <= 0 {
		// Degenerate band, a hard step at the surface.
		switch {
		case d < 0:
			return r.Max
		case d > 0:
			return r.Min
		}
		return (r.Max + r.Min) / 2
	}
	c := -d / r.Slope * 2
	return (r.Max-r.Min)/2*(c/math.Sqrt(1+c*c)+1) + r.Min
}
