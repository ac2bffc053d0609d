// Package params defines the plant-level and per-root-type parameter sets
// that drive a root system simulation, including YAML loading with embedded
// defaults and the stochastic realization of per-axis parameters.
package params

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxTypes is the highest addressable root type index. Types are 1-based;
// index 0 is reserved as invalid.
const MaxTypes = 100

// ScaleFunction supplies a positional scaling signal in [0,1] used to modulate
// elongation, insertion angles, or branching probability. A nil function means
// no scaling (factor 1).
type ScaleFunction interface {
	Value(p r3.Vec) float64
}

// RootType holds the parameters of one root type. Means and standard
// deviations describe the distributions the per-axis values are drawn from.
// Lengths are in cm, times in days, angles in radians.
type RootType struct {
	Type int    `yaml:"type"` // 1-based type index (0 is invalid)
	Name string `yaml:"name"`

	Lb    float64 `yaml:"lb"`     // basal zone length
	LbSD  float64 `yaml:"lb_sd"`
	La    float64 `yaml:"la"`     // apical zone length
	LaSD  float64 `yaml:"la_sd"`
	Ln    float64 `yaml:"ln"`     // inter-branch spacing
	LnSD  float64 `yaml:"ln_sd"`
	Nob   float64 `yaml:"nob"`    // number of branching opportunities
	NobSD float64 `yaml:"nob_sd"`

	R        float64 `yaml:"r"`         // initial elongation rate
	RSD      float64 `yaml:"r_sd"`
	Radius   float64 `yaml:"radius"`    // root radius
	RadiusSD float64 `yaml:"radius_sd"`
	Theta    float64 `yaml:"theta"`     // insertion angle relative to the parent axis
	ThetaSD  float64 `yaml:"theta_sd"`
	RLT      float64 `yaml:"rlt"`       // root life time
	RLTSD    float64 `yaml:"rlt_sd"`

	TropismType  int     `yaml:"tropism"`       // tropism code (0 plagio, 1 gravi, 2 exo, 3 hydro)
	TropismN     float64 `yaml:"tropism_n"`     // strength: expected trials per cm
	TropismSigma float64 `yaml:"tropism_sigma"` // flexibility: tilt sd per cm

	GrowthType int     `yaml:"growth"` // growth code (1 negexp, 2 linear); 0 defaults to negexp
	Dx         float64 `yaml:"dx"`     // axial resolution; 0 defaults to 0.25

	Successors []int     `yaml:"successors,flow"`  // candidate lateral types
	SuccessorP []float64 `yaml:"successor_p,flow"` // emergence probabilities, sum <= 1

	UserData1 float64 `yaml:"user_data1"`
	UserData2 float64 `yaml:"user_data2"`
	UserData3 float64 `yaml:"user_data3"`

	// Positional hooks, set programmatically. Not part of the YAML surface.
	ScaleElongation   ScaleFunction `yaml:"-"` // scales the per-step elongation
	ScaleAngle        ScaleFunction `yaml:"-"` // scales lateral insertion angles
	BranchProbability ScaleFunction `yaml:"-"` // gates lateral emergence
}

// NewRootType returns a root type with the library defaults: a 10 cm unbranched
// axis growing at 1 cm/day with mild gravitropism.
func NewRootType(typ int) *RootType {
	return &RootType{
		Type:         typ,
		La:           10,
		Ln:           1,
		R:            1,
		Radius:       0.1,
		Theta:        1.22,
		RLT:          1e9,
		TropismType:  1,
		TropismN:     1,
		TropismSigma: 0.2,
		GrowthType:   1,
		Dx:           0.25,
	}
}

// Normalize fills zero-valued fields that have non-zero defaults.
func (t *RootType) Normalize() {
	if t.Dx == 0 {
		t.Dx = 0.25
	}
	if t.GrowthType == 0 {
		t.GrowthType = 1
	}
	if t.RLT == 0 {
		t.RLT = 1e9
	}
}

// Validate reports structural configuration errors. Growth and tropism codes
// are checked later, when the variant objects are built.
func (t *RootType) Validate() error {
	if t.Type < 1 || t.Type > MaxTypes {
		return fmt.Errorf("root type index %d out of range [1,%d]", t.Type, MaxTypes)
	}
	if t.Dx <= 0 {
		return fmt.Errorf("root type %d: axial resolution dx must be positive, got %g", t.Type, t.Dx)
	}
	if len(t.Successors) != len(t.SuccessorP) {
		return fmt.Errorf("root type %d: %d successors but %d probabilities",
			t.Type, len(t.Successors), len(t.SuccessorP))
	}
	for i, s := range t.Successors {
		if s < 1 || s > MaxTypes {
			return fmt.Errorf("root type %d: successor %d has invalid type %d", t.Type, i, s)
		}
	}
	if p := floats.Sum(t.SuccessorP); p > 1+1e-9 {
		return fmt.Errorf("root type %d: successor probabilities sum to %g > 1", t.Type, p)
	}
	return nil
}

// Clone returns a deep copy. The positional hooks are shared by reference;
// they are externally owned collaborators, not state.
func (t *RootType) Clone() *RootType {
	c := *t
	c.Successors = append([]int(nil), t.Successors...)
	c.SuccessorP = append([]float64(nil), t.SuccessorP...)
	return &c
}

// Realize draws one realized parameter set from the type's distributions.
// The draw order is fixed: lb, la, nob, each inter-branch distance, r, radius,
// theta, rlt. Values are clamped to stay non-negative.
func (t *RootType) Realize(src rand.Source) *Realized {
	p := &Realized{Type: t.Type}
	p.Lb = sample(t.Lb, t.LbSD, 0, src)
	p.La = sample(t.La, t.LaSD, 0, src)
	p.Nob = int(math.Max(math.Round(sample(t.Nob, t.NobSD, 0, src)), 0))
	if p.Nob > 1 {
		p.Ln = make([]float64, p.Nob-1)
		for i := range p.Ln {
			p.Ln[i] = sample(t.Ln, t.LnSD, 1e-9, src)
		}
	}
	p.R = sample(t.R, t.RSD, 0, src)
	p.Radius = sample(t.Radius, t.RadiusSD, 0, src)
	p.Theta = sample(t.Theta, t.ThetaSD, 0, src)
	p.RLT = sample(t.RLT, t.RLTSD, 0, src)
	return p
}

// sample draws mu + sigma*N(0,1) from src and clamps it at lo. A single
// normal variate is consumed even when sigma is zero, keeping the draw
// sequence independent of the parameter values.
func sample(mu, sigma, lo float64, src rand.Source) float64 {
	v := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}.Rand()
	return math.Max(v, lo)
}

// Realized is one concrete parameter draw for a single axis.
type Realized struct {
	Type   int
	Lb     float64   // basal zone length
	La     float64   // apical zone length
	Ln     []float64 // realized inter-branch distances (Nob-1 entries)
	Nob    int       // branching opportunities
	R      float64   // initial elongation rate
	Radius float64
	Theta  float64 // insertion angle
	RLT    float64 // life time
}

// MaxLength is the asymptotic length k = lb + la + sum(ln).
func (p *Realized) MaxLength() float64 {
	return p.Lb + p.La + floats.Sum(p.Ln)
}

// BranchPoint returns the arc position of the i-th branching opportunity.
// Opportunity 0 sits at the end of the basal zone; the last one at k - la.
func (p *Realized) BranchPoint(i int) float64 {
	s := p.Lb
	for j := 0; j < i && j < len(p.Ln); j++ {
		s += p.Ln[j]
	}
	return s
}

// Clone returns a deep copy.
func (p *Realized) Clone() *Realized {
	c := *p
	c.Ln = append([]float64(nil), p.Ln...)
	return &c
}

// Plant holds the whole-plant parameters: seed position, simulation horizon,
// and the timing of basal and shoot-borne axis emergence.
type Plant struct {
	SeedPos r3.Vec  `yaml:"seed_pos"`
	SimTime float64 `yaml:"sim_time"` // default horizon for Run

	BasalType  int     `yaml:"basal_type"`  // root type of basal axes
	FirstBasal float64 `yaml:"first_basal"` // emergence time of the first basal axis
	BasalDelay float64 `yaml:"basal_delay"` // delay between successive basal axes

	ShootborneType  int     `yaml:"shootborne_type"`  // root type of shoot-borne axes
	CrownSize       int     `yaml:"crown_size"`       // shoot-borne axes per crown
	CrownSpacing    float64 `yaml:"crown_spacing"`    // vertical distance between crowns
	FirstShootborne float64 `yaml:"first_shootborne"` // emergence time of the first crown
	ShootborneDelay float64 `yaml:"shootborne_delay"` // delay between axes within a crown
	CrownDelay      float64 `yaml:"crown_delay"`      // delay between successive crowns
}

// NewPlant returns the default plant: seed 3 cm below the surface, a 30-day
// horizon, and basal/shoot-borne emergence pushed beyond any realistic run.
func NewPlant() *Plant {
	return &Plant{
		SeedPos:         r3.Vec{Z: -3},
		SimTime:         30,
		BasalType:       4,
		FirstBasal:      1e9,
		ShootborneType:  5,
		CrownSize:       1,
		CrownSpacing:    1,
		FirstShootborne: 1e9,
		ShootborneDelay: 1e9,
		CrownDelay:      1e9,
	}
}

// Normalize fills zero-valued fields that have non-zero defaults.
func (p *Plant) Normalize() {
	if p.BasalType == 0 {
		p.BasalType = 4
	}
	if p.ShootborneType == 0 {
		p.ShootborneType = 5
	}
	if p.CrownSize == 0 {
		p.CrownSize = 1
	}
	if p.SimTime == 0 {
		p.SimTime = 30
	}
}

// Clone returns a copy.
func (p *Plant) Clone() *Plant {
	c := *p
	return &c
}
