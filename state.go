package taproot

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/taproot/params"
)

// systemState is one snapshot on the state stack: the value of everything a
// Simulate call can change, captured by value so later growth cannot alias
// into it. Node storage is append-only, so per-axis counts are enough to
// roll the geometry back.
type systemState struct {
	roots        []axisState
	simtime      float64
	rid, nid     int
	oldNodeCount int
	oldRootCount int
	crowns       int
	initialized  bool
	manualSeed   bool
	src          rand.PCG
	gf           [params.MaxTypes]GrowthFunction
	tf           [params.MaxTypes]Tropism
}

// axisState captures one axis and, recursively, the laterals it had at
// snapshot time. Laterals created later sit past len(children) and are
// dropped on restore.
type axisState struct {
	alive, active bool
	age           float64
	length        float64
	expr          float64
	slots         int
	param         *params.Realized
	iheading      r3.Vec
	nodes         int
	children      []axisState
}

func captureAxis(r *Root) axisState {
	st := axisState{
		alive:    r.alive,
		active:   r.active,
		age:      r.age,
		length:   r.length,
		expr:     r.expr,
		slots:    r.slots,
		param:    r.param,
		iheading: r.iheading,
		nodes:    len(r.nodes),
	}
	st.children = make([]axisState, len(r.children))
	for i, c := range r.children {
		st.children[i] = captureAxis(c)
	}
	return st
}

func restoreAxis(r *Root, st axisState) {
	r.alive = st.alive
	r.active = st.active
	r.age = st.age
	r.length = st.length
	r.expr = st.expr
	r.slots = st.slots
	r.param = st.param
	r.iheading = st.iheading
	r.nodes = r.nodes[:st.nodes]
	r.nodeIDs = r.nodeIDs[:st.nodes]
	r.nodeTimes = r.nodeTimes[:st.nodes]
	r.children = r.children[:len(st.children)]
	for i, c := range r.children {
		restoreAxis(c, st.children[i])
	}
}

// Push stores a snapshot of the whole system, including the generator state,
// on the stack. A later Pop rewinds to it exactly, so the growth after the
// Pop replays the growth after the Push draw for draw. Registered parameters,
// the geometry, and the soil are run-wide configuration, not snapshot state.
func (s *RootSystem) Push() {
	st := systemState{
		simtime:      s.simtime,
		rid:          s.rid,
		nid:          s.nid,
		oldNodeCount: s.oldNodeCount,
		oldRootCount: s.oldRootCount,
		crowns:       s.crowns,
		initialized:  s.initialized,
		manualSeed:   s.manualSeed,
		src:          *s.src,
	}
	for i := range s.gf {
		if s.gf[i] != nil {
			st.gf[i] = s.gf[i].Copy()
		}
		if s.tf[i] != nil {
			st.tf[i] = s.tf[i].Copy()
		}
	}
	st.roots = make([]axisState, len(s.baseRoots))
	for i, b := range s.baseRoots {
		st.roots[i] = captureAxis(b)
	}
	s.stack = append(s.stack, st)
}

// Pop restores the most recent snapshot and removes it from the stack. It
// returns ErrEmptyStack when nothing was pushed.
func (s *RootSystem) Pop() error {
	if len(s.stack) == 0 {
		return ErrEmptyStack
	}
	st := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	s.simtime = st.simtime
	s.rid = st.rid
	s.nid = st.nid
	s.oldNodeCount = st.oldNodeCount
	s.oldRootCount = st.oldRootCount
	s.crowns = st.crowns
	s.initialized = st.initialized
	s.manualSeed = st.manualSeed
	s.gf = st.gf
	s.tf = st.tf
	*s.src = st.src // the wrapping rand.Rand holds no state of its own

	s.baseRoots = s.baseRoots[:len(st.roots)]
	for i, b := range s.baseRoots {
		restoreAxis(b, st.roots[i])
	}
	s.rootsCache = nil
	return nil
}

// StackSize returns the number of stored snapshots.
func (s *RootSystem) StackSize() int { return len(s.stack) }

// Copy returns an independent clone of the system: same parameters, same
// axis tree, same generator state, so both copies simulate the identical
// future until one of them is touched. The snapshot stack is not carried
// over, and the geometry and soil collaborators are shared, not copied.
func (s *RootSystem) Copy() *RootSystem {
	ns := &RootSystem{
		plant:        s.plant.Clone(),
		geometry:     s.geometry,
		soil:         s.soil,
		crowns:       s.crowns,
		simtime:      s.simtime,
		rid:          s.rid,
		nid:          s.nid,
		oldNodeCount: s.oldNodeCount,
		oldRootCount: s.oldRootCount,
		initialized:  s.initialized,
		manualSeed:   s.manualSeed,
	}
	src := *s.src
	ns.src = &src
	ns.rng = rand.New(ns.src)
	for i := range s.rtparam {
		if s.rtparam[i] != nil {
			ns.rtparam[i] = s.rtparam[i].Clone()
		}
		if s.gf[i] != nil {
			ns.gf[i] = s.gf[i].Copy()
		}
		if s.tf[i] != nil {
			ns.tf[i] = s.tf[i].Copy()
		}
	}
	ns.baseRoots = make([]*Root, len(s.baseRoots))
	for i, b := range s.baseRoots {
		ns.baseRoots[i] = b.deepCopy(ns, nil)
	}
	return ns
}
