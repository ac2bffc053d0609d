package taproot

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// TropismType identifies a tropism variant. The codes are stable and appear
// in parameter files.
type TropismType int

const (
	TropismPlagio TropismType = iota // stay horizontal
	TropismGravi                     // grow downward
	TropismExo                       // keep the insertion direction
	TropismHydro                     // follow the soil signal
)

// Frame is a right-handed orthonormal frame around a heading.
type Frame struct {
	H, U, V r3.Vec
}

// NewFrame builds a frame around h, which need not be normalized.
func NewFrame(h r3.Vec) Frame {
	h = r3.Unit(h)
	help := r3.Vec{X: 1}
	if math.Abs(h.Z) < 0.9 {
		help = r3.Vec{Z: 1}
	}
	u := r3.Unit(r3.Cross(h, help))
	v := r3.Cross(h, u)
	return Frame{H: h, U: u, V: v}
}

// Apply returns the heading tilted by alpha toward the normal plane, rotated
// around the heading by azimuth beta.
func (f Frame) Apply(alpha, beta float64) r3.Vec {
	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)
	n := r3.Add(r3.Scale(cb, f.U), r3.Scale(sb, f.V))
	return r3.Add(r3.Scale(ca, f.H), r3.Scale(sa, n))
}

// Tropism chooses the bending angles for the next segment of an axis.
// Implementations draw from rng in a fixed order so a seeded run replays
// exactly. ok is false when no admissible heading exists; only the
// confinement wrapper installed by the root system ever reports that.
type Tropism interface {
	Heading(rng *rand.Rand, pos r3.Vec, f Frame, dx float64, root *Root) (alpha, beta float64, ok bool)
	// Copy returns a snapshot-safe copy.
	Copy() Tropism
}

// Objective scores a candidate heading; smaller is better. The stochastic
// variants share the same trial machinery and differ only in their objective.
type Objective func(pos, dir r3.Vec, root *Root) float64

// trialHeading draws a random tilt and azimuth, then keeps the best of
// n*sqrt(dx) redraws under obj. The fractional part of the trial count is
// resolved with one extra uniform draw, so the expected count is exact.
func trialHeading(rng *rand.Rand, n, sigma, dx float64, pos r3.Vec, f Frame, root *Root, obj Objective) (float64, float64) {
	sdx := math.Sqrt(dx)
	alpha := sigma * rng.NormFloat64() * sdx
	beta := 2 * math.Pi * rng.Float64()
	t := n * sdx
	if t > 0 {
		trials := int(t)
		if rng.Float64() < t-float64(trials) {
			trials++
		}
		best := obj(pos, f.Apply(alpha, beta), root)
		for i := 0; i < trials; i++ {
			b := 2 * math.Pi * rng.Float64()
			a := sigma * rng.NormFloat64() * sdx
			if v := obj(pos, f.Apply(a, b), root); v < best {
				best, alpha, beta = v, a, b
			}
		}
	}
	return alpha, beta
}

// NewTropism builds the tropism for a code. N is the expected number of
// trials per cm, sigma the tilt standard deviation per cm. soil only affects
// hydrotropism and may be nil.
func NewTropism(tt TropismType, n, sigma float64, soil SoilLookup) (Tropism, error) {
	switch tt {
	case TropismPlagio:
		return Plagiotropism{N: n, Sigma: sigma}, nil
	case TropismGravi:
		return Gravitropism{N: n, Sigma: sigma}, nil
	case TropismExo:
		return Exotropism{N: n, Sigma: sigma}, nil
	case TropismHydro:
		return Hydrotropism{N: n, Sigma: sigma, Soil: soil}, nil
	default:
		return nil, fmt.Errorf("unknown tropism code %d", int(tt))
	}
}

// Gravitropism favors downward growth.
type Gravitropism struct {
	N, Sigma float64
}

// Objective is the candidate's vertical component; down is negative.
func (Gravitropism) Objective(_, dir r3.Vec, _ *Root) float64 { return dir.Z }

// Heading implements Tropism.
func (g Gravitropism) Heading(rng *rand.Rand, pos r3.Vec, f Frame, dx float64, root *Root) (float64, float64, bool) {
	a, b := trialHeading(rng, g.N, g.Sigma, dx, pos, f, root, g.Objective)
	return a, b, true
}

// Copy implements Tropism.
func (g Gravitropism) Copy() Tropism { return g }

// Plagiotropism favors horizontal growth.
type Plagiotropism struct {
	N, Sigma float64
}

// Objective is the magnitude of the candidate's vertical component.
func (Plagiotropism) Objective(_, dir r3.Vec, _ *Root) float64 { return math.Abs(dir.Z) }

// Heading implements Tropism.
func (p Plagiotropism) Heading(rng *rand.Rand, pos r3.Vec, f Frame, dx float64, root *Root) (float64, float64, bool) {
	a, b := trialHeading(rng, p.N, p.Sigma, dx, pos, f, root, p.Objective)
	return a, b, true
}

// Copy implements Tropism.
func (p Plagiotropism) Copy() Tropism { return p }

// Exotropism keeps the axis close to its initial heading.
type Exotropism struct {
	N, Sigma float64
}

// Objective is the angle to the axis's initial heading, normalized by pi.
func (Exotropism) Objective(_, dir r3.Vec, root *Root) float64 {
	c := r3.Dot(r3.Unit(dir), root.iheading)
	return math.Acos(math.Max(-1, math.Min(1, c))) / math.Pi
}

// Heading implements Tropism.
func (e Exotropism) Heading(rng *rand.Rand, pos r3.Vec, f Frame, dx float64, root *Root) (float64, float64, bool) {
	a, b := trialHeading(rng, e.N, e.Sigma, dx, pos, f, root, e.Objective)
	return a, b, true
}

// Copy implements Tropism.
func (e Exotropism) Copy() Tropism { return e }

// Hydrotropism climbs the soil signal. A nil soil disables the effect and
// leaves the perturbation purely random.
type Hydrotropism struct {
	N, Sigma float64
	Soil     SoilLookup
}

// Objective is the negated soil signal one step ahead of the candidate.
func (h Hydrotropism) Objective(pos, dir r3.Vec, _ *Root) float64 {
	if h.Soil == nil {
		return 0
	}
	return -h.Soil.Value(r3.Add(pos, dir))
}

// Heading implements Tropism.
func (h Hydrotropism) Heading(rng *rand.Rand, pos r3.Vec, f Frame, dx float64, root *Root) (float64, float64, bool) {
	a, b := trialHeading(rng, h.N, h.Sigma, dx, pos, f, root, func(p, dir r3.Vec, r *Root) float64 {
		return h.Objective(p, r3.Scale(dx, dir), r)
	})
	return a, b, true
}

// Copy implements Tropism.
func (h Hydrotropism) Copy() Tropism { return h }

// CombinedTropism blends several objectives with weights, sharing one set of
// stochastic trials. Use the Objective methods of the variant types as parts.
type CombinedTropism struct {
	N, Sigma float64
	Parts    []Objective
	Weights  []float64
}

// Heading implements Tropism.
func (c CombinedTropism) Heading(rng *rand.Rand, pos r3.Vec, f Frame, dx float64, root *Root) (float64, float64, bool) {
	a, b := trialHeading(rng, c.N, c.Sigma, dx, pos, f, root, func(p, dir r3.Vec, r *Root) float64 {
		v := 0.0
		for i, part := range c.Parts {
			v += c.Weights[i] * part(p, dir, r)
		}
		return v
	})
	return a, b, true
}

// Copy implements Tropism.
func (c CombinedTropism) Copy() Tropism {
	return CombinedTropism{
		N:       c.N,
		Sigma:   c.Sigma,
		Parts:   append([]Objective(nil), c.Parts...),
		Weights: append([]float64(nil), c.Weights...),
	}
}

// Confinement resampling bounds: per candidate tilt level the azimuth is
// redrawn a few times before the tilt is pushed further toward the normal
// plane.
const (
	confineTiltLevels   = 20
	confineAzimuthDraws = 5
)

// confinedTropism rejects candidate headings whose next node would leave the
// geometry. ok=false means every candidate failed and the axis should treat
// the step as a soft collision.
type confinedTropism struct {
	base Tropism
	geom SignedDistance
}

func (c confinedTropism) Heading(rng *rand.Rand, pos r3.Vec, f Frame, dx float64, root *Root) (float64, float64, bool) {
	alpha, beta, ok := c.base.Heading(rng, pos, f, dx, root)
	if !ok {
		return alpha, beta, false
	}
	if c.geom == nil || c.inside(pos, f, alpha, beta, dx) {
		return alpha, beta, true
	}
	for lvl := 0; lvl <= confineTiltLevels; lvl++ {
		a := alpha + float64(lvl)*math.Pi/2/confineTiltLevels
		for i := 0; i < confineAzimuthDraws; i++ {
			b := 2 * math.Pi * rng.Float64()
			if c.inside(pos, f, a, b, dx) {
				return a, b, true
			}
		}
	}
	return alpha, beta, false
}

func (c confinedTropism) inside(pos r3.Vec, f Frame, alpha, beta, dx float64) bool {
	p := r3.Add(pos, r3.Scale(dx, f.Apply(alpha, beta)))
	return c.geom.Dist(p) <= 0
}

func (c confinedTropism) Copy() Tropism {
	return confinedTropism{base: c.base.Copy(), geom: c.geom}
}
