package taproot

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/taproot/params"
)

// minSegment is the shortest segment worth expressing; boundary flushes below
// this stay part of the unexpressed tail.
const minSegment = 1e-6

// Root is one axis of the system: an append-only polyline of nodes, the
// realized parameters drawn for it, and the child axes branching off it.
// Axes are created by the root system and owned by their parent.
type Root struct {
	sys *RootSystem

	id  int
	typ int

	param     *params.Realized // nil until the first growth step
	insertion r3.Vec           // parent heading at the branch point
	iheading  r3.Vec           // initial heading after the insertion-angle rotation
	delay     float64          // time between creation and emergence

	parent     *Root
	parentBase float64 // parent arc length at the branch point
	parentNode int     // index of the shared node within the parent
	children   []*Root
	slots      int // branching opportunities already decided

	nodes     []r3.Vec
	nodeIDs   []int
	nodeTimes []float64

	alive  bool
	active bool
	age    float64 // negative while dormant
	length float64 // functional length; the polyline trails it by less than dx
	expr   float64 // expressed polyline arc length
}

// newRoot creates an axis without drawing from the generator; parameters are
// realized lazily on the first growth step.
func newRoot(sys *RootSystem, typ int, heading r3.Vec, delay float64, parent *Root, parentBase float64, parentNode int) *Root {
	return &Root{
		sys:        sys,
		id:         sys.nextRootID(),
		typ:        typ,
		insertion:  heading,
		delay:      delay,
		parent:     parent,
		parentBase: parentBase,
		parentNode: parentNode,
		age:        -delay,
		alive:      true,
		active:     true,
	}
}

// appendRecord writes one node triple. Node history is append-only.
func (r *Root) appendRecord(pos r3.Vec, id int, t float64) {
	r.nodes = append(r.nodes, pos)
	r.nodeIDs = append(r.nodeIDs, id)
	r.nodeTimes = append(r.nodeTimes, t)
}

// simulate grows the axis and its subtree by dt. A dead axis freezes its
// whole subtree.
func (r *Root) simulate(dt float64) {
	if !r.alive {
		return
	}
	if r.param == nil {
		r.realize()
	}
	p := r.param
	if r.age+dt > p.RLT { // life time reached within this step
		dt = p.RLT - r.age
		r.alive = false
	}
	r.age += dt
	if r.age > 0 && r.age-dt <= 0 { // the axis emerges in this step
		if sbp := r.typeParam().BranchProbability; sbp != nil {
			if pr := sbp.Value(r.tip()); pr < 1 {
				pe := 1 - math.Pow(1-pr, dt) // chance of emerging within dt
				if r.sys.Rand() > pe {
					r.age -= dt // postponed to a later step
					return
				}
			}
		}
	}
	if r.age <= 0 { // still dormant
		return
	}
	for _, c := range r.children { // children grow even when the axis is done
		c.simulate(dt)
	}
	if r.active {
		// Re-basing the age on the achieved length lets an impeded axis
		// catch up once the impediment is gone.
		age := r.calcAge(r.length)
		step := dt
		if r.age < dt { // emerged mid-step
			step = r.age
		}
		e := r.calcLength(age+step) - r.length
		scale := 1.0
		if se := r.typeParam().ScaleElongation; se != nil {
			scale = se.Value(r.tip())
		}
		if dl := math.Max(scale*e, 0); dl > 0 {
			r.grow(dl)
		}
		r.active = r.length < p.MaxLength()-r.dx()/10
	}
}

// realize draws the axis's parameter set and initial heading. The draw order
// is fixed: the parameter samples first, then one uniform azimuth.
func (r *Root) realize() {
	tp := r.typeParam()
	r.param = tp.Realize(r.sys.src)
	beta := 2 * math.Pi * r.sys.Rand()
	theta := r.param.Theta
	if r.parent != nil {
		if sa := tp.ScaleAngle; sa != nil {
			theta *= sa.Value(r.parent.node(r.parentNode))
		}
	}
	r.iheading = NewFrame(r.insertion).Apply(theta, beta)
}

// grow distributes a length increment over the basal, branching, and apical
// zones, creating laterals exactly at the branch points.
func (r *Root) grow(dl float64) {
	p := r.param
	if p.Nob == 0 {
		r.elongate(dl, false)
		return
	}
	if r.length < p.Lb { // basal zone
		s := p.Lb - r.length
		if s > dl {
			r.elongate(dl, false)
			return
		}
		if !r.elongate(s, true) {
			return
		}
		dl -= s
	}
	for dl > 0 && r.slots < p.Nob { // branching zone
		bp := p.BranchPoint(r.slots)
		if r.length < bp {
			s := bp - r.length
			if s > dl {
				r.elongate(dl, false)
				return
			}
			if !r.elongate(s, true) {
				return
			}
			dl -= s
		}
		r.createLateral()
		r.slots++
	}
	if dl > 0 { // apical zone
		r.elongate(dl, false)
	}
}

// elongate advances the functional length by dl, emitting a node every dx
// along tropism-chosen headings. The sub-dx remainder stays unexpressed
// unless flush forces a node exactly at a zone boundary. Returns false when
// the confining geometry blocks a node; the unexpressed remainder is then
// forfeited and the axis retries next step.
func (r *Root) elongate(dl float64, flush bool) bool {
	target := r.length + dl
	dx := r.dx()
	for target-r.expr >= dx {
		if !r.appendNode(dx) {
			r.length = r.expr
			return false
		}
	}
	if flush {
		if tail := target - r.expr; tail > minSegment {
			if !r.appendNode(tail) {
				r.length = r.expr
				return false
			}
		}
	}
	r.length = target
	return true
}

// appendNode emits one node at segLen along the tropism-chosen heading.
func (r *Root) appendNode(segLen float64) bool {
	f := NewFrame(r.heading())
	alpha, beta, ok := r.tropism().Heading(r.sys.rng, r.tip(), f, segLen, r)
	if !ok {
		return false
	}
	pos := r3.Add(r.tip(), r3.Scale(segLen, f.Apply(alpha, beta)))
	t := r.creationTime(r.expr + segLen)
	r.appendRecord(pos, r.sys.nextNodeID(), t)
	r.expr += segLen
	return true
}

// createLateral decides the branching opportunity at the current tip: the
// successor dice pick a lateral type (or none), and the new axis immediately
// consumes the time the parent has already spent past the branch point.
func (r *Root) createLateral() {
	lt := r.sys.pickLateral(r.typ)
	if lt == 0 {
		return
	}
	ageLN := r.calcAge(r.length)              // age when the branch point was reached
	ageLG := r.calcAge(r.length + r.param.La) // age when the apical zone clears it
	delay := ageLG - ageLN
	l := newRoot(r.sys, lt, r.heading(), delay, r, r.length, len(r.nodes)-1)
	i := len(r.nodes) - 1
	l.appendRecord(r.nodes[i], r.nodeIDs[i], r.nodeTimes[i]+delay)
	r.children = append(r.children, l)
	l.simulate(r.age - ageLN)
}

// creationTime returns the absolute time the axis reaches arc length l,
// assuming unimpeded growth. For a lateral this recurses into the parent at
// the arc where the apical zone cleared the branch point.
func (r *Root) creationTime(l float64) float64 {
	age := r.calcAge(l)
	if r.parent != nil {
		return age + r.parent.creationTime(r.parentBase+r.parent.param.La)
	}
	return age + r.delay
}

func (r *Root) calcLength(age float64) float64 {
	return r.growth().Length(age, r.param.R, r.param.MaxLength(), r)
}

func (r *Root) calcAge(length float64) float64 {
	return r.growth().Age(length, r.param.R, r.param.MaxLength(), r)
}

// heading is the current growth direction: the last segment's direction, or
// the initial heading while the axis has a single node.
func (r *Root) heading() r3.Vec {
	if n := len(r.nodes); n > 1 {
		return r3.Unit(r3.Sub(r.nodes[n-1], r.nodes[n-2]))
	}
	return r.iheading
}

func (r *Root) tip() r3.Vec { return r.nodes[len(r.nodes)-1] }

func (r *Root) node(i int) r3.Vec { return r.nodes[i] }

func (r *Root) typeParam() *params.RootType { return r.sys.rtparam[r.typ-1] }

func (r *Root) tropism() Tropism { return r.sys.tf[r.typ-1] }

func (r *Root) growth() GrowthFunction { return r.sys.gf[r.typ-1] }

func (r *Root) dx() float64 { return r.typeParam().Dx }

// collect appends the axis (if it has grown a segment) and its subtree in
// pre-order.
func (r *Root) collect(v *[]*Root) {
	if len(r.nodes) > 1 {
		*v = append(*v, r)
	}
	for _, c := range r.children {
		c.collect(v)
	}
}

// deepCopy clones the axis subtree for an independent system.
func (r *Root) deepCopy(sys *RootSystem, parent *Root) *Root {
	c := *r
	c.sys = sys
	c.parent = parent
	if r.param != nil {
		c.param = r.param.Clone()
	}
	c.nodes = append([]r3.Vec(nil), r.nodes...)
	c.nodeIDs = append([]int(nil), r.nodeIDs...)
	c.nodeTimes = append([]float64(nil), r.nodeTimes...)
	c.children = make([]*Root, len(r.children))
	for i, ch := range r.children {
		c.children[i] = ch.deepCopy(sys, &c)
	}
	return &c
}

// ID returns the axis id, unique and monotonic within one system lifetime.
func (r *Root) ID() int { return r.id }

// Type returns the root type index.
func (r *Root) Type() int { return r.typ }

// Parent returns the parent axis, or nil for a base axis.
func (r *Root) Parent() *Root { return r.parent }

// Children returns the child axes. The slice is a live view; do not modify.
func (r *Root) Children() []*Root { return r.children }

// Order returns the topological order: 0 for base axes, 1 for their
// laterals, and so on.
func (r *Root) Order() int {
	o := 0
	for p := r.parent; p != nil; p = p.parent {
		o++
	}
	return o
}

// NumberOfNodes returns the node count of this axis, including the node
// shared with the parent.
func (r *Root) NumberOfNodes() int { return len(r.nodes) }

// Node returns the i-th node position.
func (r *Root) Node(i int) r3.Vec { return r.nodes[i] }

// NodeID returns the i-th node's global id.
func (r *Root) NodeID(i int) int { return r.nodeIDs[i] }

// NodeTime returns the i-th node's emergence time.
func (r *Root) NodeTime(i int) float64 { return r.nodeTimes[i] }

// Age returns the accumulated age; negative while the axis is dormant.
func (r *Root) Age() float64 { return r.age }

// Length returns the functional length, which the expressed polyline trails
// by less than the axial resolution.
func (r *Root) Length() float64 { return r.length }

// Alive reports whether the axis's life time has not yet run out.
func (r *Root) Alive() bool { return r.alive }

// Active reports whether the axis is still elongating.
func (r *Root) Active() bool { return r.active }

// Param returns the realized parameter set, or nil before the first growth
// step.
func (r *Root) Param() *params.Realized { return r.param }
