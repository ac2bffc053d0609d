// Package taproot simulates the architectural development of plant root
// systems: axes elongate along tropism-corrected headings, branch into
// lateral axes, and stay confined to a container geometry, all driven by one
// seeded random stream so whole trajectories replay exactly. The package is
// the growth engine only; geometry, soil signals, and output formats plug in
// through small interfaces.
package taproot

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/taproot/params"
)

// AllTypes selects every defined root type in SetTropism.
const AllTypes = -1

var (
	// ErrNotInitialized is returned by simulation calls before Initialize.
	ErrNotInitialized = errors.New("root system not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize without Reset.
	ErrAlreadyInitialized = errors.New("root system already initialized, call Reset first")
	// ErrEmptyStack is returned by Pop when no snapshot is stored.
	ErrEmptyStack = errors.New("state stack is empty")
)

// SignedDistance confines growth to a geometry. Dist is negative inside,
// positive outside; candidate nodes with positive distance are rejected.
type SignedDistance interface {
	Dist(p r3.Vec) float64
}

// SoilLookup samples a scalar soil signal at a position. It steers
// hydrotropism and the positional parameter hooks.
type SoilLookup interface {
	Value(p r3.Vec) float64
}

// RootSystem grows a whole root system from a seed: it owns the parameters,
// the per-type growth and tropism variants, the axis tree, the id counters,
// and the random stream. One instance belongs to one caller; none of its
// methods are safe for concurrent use.
type RootSystem struct {
	plant   *params.Plant
	rtparam [params.MaxTypes]*params.RootType
	gf      [params.MaxTypes]GrowthFunction
	tf      [params.MaxTypes]Tropism

	geometry SignedDistance
	soil     SoilLookup

	baseRoots []*Root
	crowns    int

	simtime      float64
	rid, nid     int // highest issued root and node ids
	oldNodeCount int // baselines captured at the start of each Simulate
	oldRootCount int

	initialized bool
	manualSeed  bool
	src         *rand.PCG
	rng         *rand.Rand

	rootsCache []*Root
	stack      []systemState
}

// New returns an empty root system with default plant parameters and a
// clock-seeded generator. Call SetSeed for reproducible runs.
func New() *RootSystem {
	now := uint64(time.Now().UnixNano())
	src := rand.NewPCG(now, now)
	return &RootSystem{
		plant: params.NewPlant(),
		rid:   -1,
		nid:   -1,
		src:   src,
		rng:   rand.New(src),
	}
}

// SetSeed reseeds the shared generator and marks the system as manually
// seeded. Reseeding mid-run is allowed but forfeits reproducibility relative
// to a run seeded once at the start.
func (s *RootSystem) SetSeed(seed uint64) {
	s.src.Seed(seed, seed)
	s.manualSeed = true
}

// Rand returns one uniform draw in [0,1) from the shared stream.
func (s *RootSystem) Rand() float64 { return s.rng.Float64() }

// Randn returns one standard normal draw from the shared stream.
func (s *RootSystem) Randn() float64 { return s.rng.NormFloat64() }

// SetRootTypeParameter registers the parameters for p.Type, replacing any
// earlier registration of that type.
func (s *RootSystem) SetRootTypeParameter(p *params.RootType) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	s.rtparam[p.Type-1] = p
	return nil
}

// RootTypeParameter returns the registered parameters of a type.
func (s *RootSystem) RootTypeParameter(typ int) (*params.RootType, error) {
	if typ < 1 || typ > params.MaxTypes || s.rtparam[typ-1] == nil {
		return nil, fmt.Errorf("root type %d is not defined", typ)
	}
	return s.rtparam[typ-1], nil
}

// SetPlantParameter replaces the whole-plant parameters.
func (s *RootSystem) SetPlantParameter(p *params.Plant) {
	p.Normalize()
	s.plant = p
}

// PlantParameter returns the whole-plant parameters.
func (s *RootSystem) PlantParameter() *params.Plant { return s.plant }

// SetParameters registers a whole parameter set: the plant parameters and
// every root type in it.
func (s *RootSystem) SetParameters(set *params.Set) error {
	for i := range set.Roots {
		if err := s.SetRootTypeParameter(&set.Roots[i]); err != nil {
			return err
		}
	}
	s.SetPlantParameter(set.Plant.Clone())
	return nil
}

// SetGeometry confines growth to a geometry; nil means unconfined. Set it
// before Initialize so the per-type tropisms are wrapped with it.
func (s *RootSystem) SetGeometry(g SignedDistance) { s.geometry = g }

// Geometry returns the confining geometry, or nil when growth is unconfined.
func (s *RootSystem) Geometry() SignedDistance { return s.geometry }

// SetSoil sets the soil signal consumed by hydrotropism; nil disables the
// effect. Set it before Initialize.
func (s *RootSystem) SetSoil(soil SoilLookup) { s.soil = soil }

// SetTropism overrides the tropism of one root type, or of every defined
// type when rootType is AllTypes. Initialize rebuilds tropisms from the type
// parameters, so call SetTropism after it. The tropism is wrapped with the
// confining geometry.
func (s *RootSystem) SetTropism(t Tropism, rootType int) error {
	if rootType == AllTypes {
		for i := range s.rtparam {
			if s.rtparam[i] != nil {
				s.tf[i] = confinedTropism{base: t.Copy(), geom: s.geometry}
			}
		}
		return nil
	}
	if rootType < 1 || rootType > params.MaxTypes || s.rtparam[rootType-1] == nil {
		return fmt.Errorf("root type %d is not defined", rootType)
	}
	s.tf[rootType-1] = confinedTropism{base: t, geom: s.geometry}
	return nil
}

// Initialize creates the base axes: the tap axis, basal axes of the plant's
// basal type sharing the seed node, and shoot-borne axes grouped into crowns
// stacked above the seed. Every root type reachable through successor
// references is validated and its variant objects are built before any state
// changes, so a failed Initialize leaves the system untouched. Initialize
// draws nothing from the generator; seeding before or after it is
// equivalent.
func (s *RootSystem) Initialize(basal, shootborne int) error {
	if s.initialized {
		return ErrAlreadyInitialized
	}
	if basal < 0 || shootborne < 0 {
		return fmt.Errorf("negative axis count (basal %d, shootborne %d)", basal, shootborne)
	}
	p := s.plant
	seedTypes := []int{1}
	if basal > 0 {
		seedTypes = append(seedTypes, p.BasalType)
	}
	if shootborne > 0 {
		seedTypes = append(seedTypes, p.ShootborneType)
	}
	if err := s.checkTypeClosure(seedTypes); err != nil {
		return err
	}
	var gf [params.MaxTypes]GrowthFunction
	var tf [params.MaxTypes]Tropism
	for i, tp := range s.rtparam {
		if tp == nil {
			continue
		}
		g, err := NewGrowthFunction(GrowthType(tp.GrowthType))
		if err != nil {
			return fmt.Errorf("root type %d: %w", tp.Type, err)
		}
		tr, err := NewTropism(TropismType(tp.TropismType), tp.TropismN, tp.TropismSigma, s.soil)
		if err != nil {
			return fmt.Errorf("root type %d: %w", tp.Type, err)
		}
		gf[i] = g
		tf[i] = confinedTropism{base: tr, geom: s.geometry}
	}
	s.gf = gf
	s.tf = tf

	down := r3.Vec{Z: -1}
	tap := newRoot(s, 1, down, 0, nil, 0, 0)
	tap.appendRecord(p.SeedPos, s.nextNodeID(), 0)
	s.baseRoots = append(s.baseRoots[:0], tap)

	for i := 0; i < basal; i++ {
		delay := p.FirstBasal + float64(i)*p.BasalDelay
		b := newRoot(s, p.BasalType, down, delay, nil, 0, 0)
		b.appendRecord(p.SeedPos, tap.nodeIDs[0], delay) // basal axes share the seed node
		s.baseRoots = append(s.baseRoots, b)
	}

	if shootborne > 0 {
		crowns := (shootborne + p.CrownSize - 1) / p.CrownSize
		s.crowns = crowns
		delay := p.FirstShootborne
		made := 0
		for c := 0; c < crowns; c++ {
			pos := r3.Add(p.SeedPos, r3.Vec{Z: float64(c+1) * p.CrownSpacing})
			first := newRoot(s, p.ShootborneType, down, delay, nil, 0, 0)
			first.appendRecord(pos, s.nextNodeID(), delay) // the crown node gets a fresh id
			s.baseRoots = append(s.baseRoots, first)
			made++
			mate := delay + p.ShootborneDelay
			for j := 1; j < p.CrownSize && made < shootborne; j++ {
				m := newRoot(s, p.ShootborneType, down, mate, nil, 0, 0)
				m.appendRecord(pos, first.nodeIDs[0], mate) // crown mates share the node
				s.baseRoots = append(s.baseRoots, m)
				made++
				mate += p.ShootborneDelay
			}
			delay += p.CrownDelay
		}
	}

	s.initialized = true
	s.simtime = 0
	s.oldNodeCount = s.NumberOfNodes()
	s.oldRootCount = 0
	s.rootsCache = nil
	slog.Debug("root system initialized",
		"basal", basal, "shootborne", shootborne, "crowns", s.crowns, "nodes", s.NumberOfNodes())
	return nil
}

// checkTypeClosure walks successor references from the given types and
// verifies every reachable type is defined.
func (s *RootSystem) checkTypeClosure(start []int) error {
	seen := map[int]bool{}
	queue := append([]int(nil), start...)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen[t] {
			continue
		}
		seen[t] = true
		if t < 1 || t > params.MaxTypes || s.rtparam[t-1] == nil {
			return fmt.Errorf("root type %d is referenced but not defined", t)
		}
		queue = append(queue, s.rtparam[t-1].Successors...)
	}
	return nil
}

// Simulate advances the whole system by dt days. The delta getters afterward
// report changes relative to the state before this call; dt zero refreshes
// them without growing anything.
func (s *RootSystem) Simulate(dt float64) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if dt < 0 {
		return fmt.Errorf("negative time step %g", dt)
	}
	s.oldNodeCount = s.NumberOfNodes()
	s.oldRootCount = len(s.Roots())
	for _, b := range s.baseRoots {
		b.simulate(dt)
	}
	s.rootsCache = nil
	s.simtime += dt
	slog.Debug("simulated step",
		"dt", dt, "time", s.simtime, "roots", s.NumberOfRoots(), "nodes", s.NumberOfNodes())
	return nil
}

// Run simulates the plant's whole configured duration in one call.
func (s *RootSystem) Run() error { return s.Simulate(s.plant.SimTime) }

// SimulateCapped advances by dt while capping the summed length increment at
// dt*maxInc. It bisects the scale of se between probe runs that are rolled
// back through the state stack; se must be installed as the elongation hook
// of the root types it throttles. The scale found stays set on se.
func (s *RootSystem) SimulateCapped(dt, maxInc float64, se *ProportionalElongation) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if dt < 0 {
		return fmt.Errorf("negative time step %g", dt)
	}
	if se == nil {
		return errors.New("nil proportional elongation")
	}
	const accuracy = 1e-3
	const maxIter = 20
	limit := dt * maxInc
	base := floats.Sum(s.Scalar(ScalarLength))

	s.Push()
	se.SetScale(1)
	if err := s.Simulate(dt); err != nil {
		return err
	}
	inc := floats.Sum(s.Scalar(ScalarLength)) - base
	if err := s.Pop(); err != nil {
		return err
	}
	slog.Debug("capped step probe", "increment", inc, "limit", limit)

	if inc > limit && math.Abs(inc-limit) > accuracy {
		lo, hi := 0.0, 1.0
		for i := 0; math.Abs(inc-limit) > accuracy && i < maxIter; i++ {
			mid := (lo + hi) / 2
			s.Push()
			se.SetScale(mid)
			if err := s.Simulate(dt); err != nil {
				return err
			}
			inc = floats.Sum(s.Scalar(ScalarLength)) - base
			if err := s.Pop(); err != nil {
				return err
			}
			if inc > limit {
				hi = mid
			} else {
				lo = mid
			}
			slog.Debug("capped step bisect", "scale", mid, "increment", inc)
		}
	}
	return s.Simulate(dt)
}

// Reset discards the axis tree, the id counters, the delta baselines, and
// the snapshot stack. Parameters, collaborators, and the generator state
// stay, so a fresh Initialize reuses the same configuration.
func (s *RootSystem) Reset() {
	s.baseRoots = nil
	s.crowns = 0
	s.simtime = 0
	s.rid = -1
	s.nid = -1
	s.oldNodeCount = 0
	s.oldRootCount = 0
	s.initialized = false
	s.rootsCache = nil
	s.stack = nil
}

func (s *RootSystem) nextRootID() int { s.rid++; return s.rid }

func (s *RootSystem) nextNodeID() int { s.nid++; return s.nid }

// pickLateral draws the type of the next lateral from the successor
// distribution of the parent type; 0 means no lateral emerges at this
// branching opportunity.
func (s *RootSystem) pickLateral(typ int) int {
	tp := s.rtparam[typ-1]
	if len(tp.Successors) == 0 {
		return 0
	}
	d := s.rng.Float64()
	for i, p := range tp.SuccessorP {
		if d <= p {
			return tp.Successors[i]
		}
		d -= p
	}
	return 0
}

// SimTime returns the accumulated simulation time.
func (s *RootSystem) SimTime() float64 { return s.simtime }

// NumberOfNodes returns the count of node ids issued so far.
func (s *RootSystem) NumberOfNodes() int { return s.nid + 1 }

// NumberOfSegments returns the segment count, excluding the artificial shoot
// connections to the crowns.
func (s *RootSystem) NumberOfSegments() int { return s.nid - s.crowns }

// NumberOfRoots counts axes that have grown at least one segment.
func (s *RootSystem) NumberOfRoots() int { return len(s.Roots()) }

// CreatedRoots counts every axis created so far, grown or not.
func (s *RootSystem) CreatedRoots() int { return s.rid + 1 }

// NumberOfCrowns returns the count of shoot-borne crowns.
func (s *RootSystem) NumberOfCrowns() int { return s.crowns }

// BaseRoots returns the base axes (tap, basal, shoot-borne), grown or not.
func (s *RootSystem) BaseRoots() []*Root { return s.baseRoots }

// Roots returns every axis with at least one segment, parents before their
// laterals. The slice is cached until the next mutation; treat it as
// read-only.
func (s *RootSystem) Roots() []*Root {
	if s.rootsCache == nil {
		var v []*Root
		for _, b := range s.baseRoots {
			b.collect(&v)
		}
		s.rootsCache = v
	}
	return s.rootsCache
}

// String summarizes the system for debugging.
func (s *RootSystem) String() string {
	return fmt.Sprintf("root system: time %g, %d base axes, %d roots, %d nodes, %d segments",
		s.simtime, len(s.baseRoots), s.NumberOfRoots(), s.NumberOfNodes(), s.NumberOfSegments())
}

// ProportionalElongation is the length-limiting hook used by SimulateCapped:
// a settable factor, optionally multiplied onto a base lookup. Install one
// instance as the ScaleElongation of every root type it should throttle.
type ProportionalElongation struct {
	scale float64
	base  SoilLookup
}

// NewProportionalElongation returns the hook with scale 1.
func NewProportionalElongation() *ProportionalElongation {
	return &ProportionalElongation{scale: 1}
}

// SetScale sets the elongation factor.
func (p *ProportionalElongation) SetScale(s float64) { p.scale = s }

// Scale returns the current elongation factor.
func (p *ProportionalElongation) Scale() float64 { return p.scale }

// SetBase chains a lookup whose value is multiplied with the factor.
func (p *ProportionalElongation) SetBase(b SoilLookup) { p.base = b }

// Value implements SoilLookup and the parameter hooks.
func (p *ProportionalElongation) Value(pos r3.Vec) float64 {
	if p.base == nil {
		return p.scale
	}
	return p.scale * p.base.Value(pos)
}
