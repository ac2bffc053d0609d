// Package analysis provides a flat segment view of a root system for
// measurement: filtering by scalar range, cropping to a geometry, summed
// quantities, and depth profiles.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/taproot"
	"github.com/pthm-cable/taproot/sdf"
)

// Analyser holds an independent copy of a root system's segments. Filters
// and crops narrow the copy in place and never touch the source system.
type Analyser struct {
	nodes   []r3.Vec
	segs    []taproot.Segment
	times   []float64
	origins []*taproot.Root
}

// New copies the segment view of a root system into a fresh analyser.
func New(s *taproot.RootSystem) *Analyser {
	a := &Analyser{}
	a.Add(s)
	return a
}

// Add merges the segments of another root system, reindexing them onto the
// analyser's node table.
func (a *Analyser) Add(s *taproot.RootSystem) {
	offset := len(a.nodes)
	a.nodes = append(a.nodes, s.Nodes()...)
	for _, seg := range s.Segments() {
		a.segs = append(a.segs, taproot.Segment{From: seg.From + offset, To: seg.To + offset})
	}
	a.times = append(a.times, s.SegmentTimes()...)
	a.origins = append(a.origins, s.SegmentOrigins()...)
}

// NumberOfSegments returns the number of segments left after filtering.
func (a *Analyser) NumberOfSegments() int { return len(a.segs) }

// Nodes returns a copy of the node table. Cropping may leave nodes no
// segment references.
func (a *Analyser) Nodes() []r3.Vec {
	return append([]r3.Vec(nil), a.nodes...)
}

// Segments returns a copy of the segment list.
func (a *Analyser) Segments() []taproot.Segment {
	return append([]taproot.Segment(nil), a.segs...)
}

// Filter keeps the segments whose scalar lies in [min, max].
func (a *Analyser) Filter(st taproot.ScalarType, min, max float64) {
	a.keep(func(i int) bool {
		v := a.segmentScalar(st, i)
		return v >= min && v <= max
	})
}

// FilterValue keeps the segments whose scalar equals v exactly, useful for
// integer-valued scalars like type and order.
func (a *Analyser) FilterValue(st taproot.ScalarType, v float64) {
	a.keep(func(i int) bool { return a.segmentScalar(st, i) == v })
}

// Crop keeps the parts of segments inside the geometry. Segments crossing
// the surface are shortened to the boundary, with the crossing point found
// by bisection.
func (a *Analyser) Crop(g sdf.Geometry) {
	segs := a.segs[:0]
	times := a.times[:0]
	origins := a.origins[:0]
	for i, seg := range a.segs {
		p, q := a.nodes[seg.From], a.nodes[seg.To]
		pin, qin := g.Dist(p) <= 0, g.Dist(q) <= 0
		switch {
		case pin && qin:
			// keep whole
		case !pin && !qin:
			continue
		case pin:
			a.nodes = append(a.nodes, surfacePoint(p, q, g))
			seg = taproot.Segment{From: seg.From, To: len(a.nodes) - 1}
		default:
			a.nodes = append(a.nodes, surfacePoint(q, p, g))
			seg = taproot.Segment{From: len(a.nodes) - 1, To: seg.To}
		}
		segs = append(segs, seg)
		times = append(times, a.times[i])
		origins = append(origins, a.origins[i])
	}
	a.segs = segs
	a.times = times
	a.origins = origins
}

// Summed adds the scalar over all remaining segments. Geometric scalars
// (length, surface, volume, one) count per segment; the rest take the
// owning axis's value per segment.
func (a *Analyser) Summed(st taproot.ScalarType) float64 {
	sum := 0.0
	for i := range a.segs {
		sum += a.segmentScalar(st, i)
	}
	return sum
}

// SummedInside adds the scalar over the segments whose midpoint lies
// inside the geometry.
func (a *Analyser) SummedInside(st taproot.ScalarType, g sdf.Geometry) float64 {
	sum := 0.0
	for i, seg := range a.segs {
		m := r3.Scale(0.5, r3.Add(a.nodes[seg.From], a.nodes[seg.To]))
		if g.Dist(m) <= 0 {
			sum += a.segmentScalar(st, i)
		}
	}
	return sum
}

// Distribution sums the scalar into horizontal layers between the depths
// top and bot (top > bot). With exact set, segments crossing a layer
// boundary are cut at it and contribute to both layers; otherwise each
// segment counts for the layer holding its midpoint.
func (a *Analyser) Distribution(st taproot.ScalarType, top, bot float64, layers int, exact bool) []float64 {
	out := make([]float64, layers)
	if layers <= 0 || top <= bot {
		return out
	}
	dz := (top - bot) / float64(layers)

	if exact {
		for k := range out {
			sub := a.clone()
			sub.Crop(slab{top: top - float64(k)*dz, bot: top - float64(k+1)*dz})
			out[k] = sub.Summed(st)
		}
		return out
	}

	for i, seg := range a.segs {
		mz := (a.nodes[seg.From].Z + a.nodes[seg.To].Z) / 2
		rel := top - mz
		if rel < 0 {
			continue
		}
		k := int(rel / dz)
		if k >= layers {
			continue
		}
		out[k] += a.segmentScalar(st, i)
	}
	return out
}

// SegmentLength returns the length of segment i.
func (a *Analyser) SegmentLength(i int) float64 {
	seg := a.segs[i]
	return r3.Norm(r3.Sub(a.nodes[seg.To], a.nodes[seg.From]))
}

// Scalar returns the per-segment values of a scalar, in segment order.
func (a *Analyser) Scalar(st taproot.ScalarType) []float64 {
	out := make([]float64, len(a.segs))
	for i := range a.segs {
		out[i] = a.segmentScalar(st, i)
	}
	return out
}

func (a *Analyser) segmentScalar(st taproot.ScalarType, i int) float64 {
	switch st {
	case taproot.ScalarLength:
		return a.SegmentLength(i)
	case taproot.ScalarSurface:
		return 2 * math.Pi * a.origins[i].Param().Radius * a.SegmentLength(i)
	case taproot.ScalarVolume:
		r := a.origins[i].Param().Radius
		return math.Pi * r * r * a.SegmentLength(i)
	case taproot.ScalarOne:
		return 1
	case taproot.ScalarTime:
		return a.times[i]
	default:
		return a.origins[i].Scalar(st)
	}
}

func (a *Analyser) keep(pred func(i int) bool) {
	segs := a.segs[:0]
	times := a.times[:0]
	origins := a.origins[:0]
	for i := range a.segs {
		if pred(i) {
			segs = append(segs, a.segs[i])
			times = append(times, a.times[i])
			origins = append(origins, a.origins[i])
		}
	}
	a.segs = segs
	a.times = times
	a.origins = origins
}

func (a *Analyser) clone() *Analyser {
	return &Analyser{
		nodes:   append([]r3.Vec(nil), a.nodes...),
		segs:    append([]taproot.Segment(nil), a.segs...),
		times:   append([]float64(nil), a.times...),
		origins: append([]*taproot.Root(nil), a.origins...),
	}
}

// surfacePoint bisects between an inside and an outside point until it
// lands on the geometry surface.
func surfacePoint(in, out r3.Vec, g sdf.Geometry) r3.Vec {
	for i := 0; i < 32; i++ {
		m := r3.Scale(0.5, r3.Add(in, out))
		if g.Dist(m) <= 0 {
			in = m
		} else {
			out = m
		}
	}
	return r3.Scale(0.5, r3.Add(in, out))
}

// slab is the horizontal layer between two depths.
type slab struct {
	top, bot float64
}

func (s slab) Dist(p r3.Vec) float64 {
	return math.Max(p.Z-s.top, s.bot-p.Z)
}
