package taproot

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment connects two global node ids, base before tip.
type Segment struct {
	From, To int
}

// Nodes returns every node position indexed by global node id. Ids are dense
// and start at 0, so the slice length equals NumberOfNodes.
func (s *RootSystem) Nodes() []r3.Vec {
	nodes := make([]r3.Vec, s.NumberOfNodes())
	for _, b := range s.baseRoots {
		nodes[b.nodeIDs[0]] = b.nodes[0]
	}
	for _, r := range s.Roots() {
		for i := 1; i < len(r.nodes); i++ {
			nodes[r.nodeIDs[i]] = r.nodes[i]
		}
	}
	return nodes
}

// NodeTimes returns every node emergence time indexed by global node id. For
// base nodes shared between axes, the axis that issued the id wins; base
// axes are walked in reverse so issuers, which precede sharers, write last.
func (s *RootSystem) NodeTimes() []float64 {
	times := make([]float64, s.NumberOfNodes())
	for i := len(s.baseRoots) - 1; i >= 0; i-- {
		b := s.baseRoots[i]
		times[b.nodeIDs[0]] = b.nodeTimes[0]
	}
	for _, r := range s.Roots() {
		for i := 1; i < len(r.nodes); i++ {
			times[r.nodeIDs[i]] = r.nodeTimes[i]
		}
	}
	return times
}

// Segments returns every grown segment, in Roots order and per-axis node
// order. Artificial shoot connections are not included; see ShootSegments.
func (s *RootSystem) Segments() []Segment {
	segs := make([]Segment, 0, s.NumberOfSegments())
	for _, r := range s.Roots() {
		for i := 1; i < len(r.nodes); i++ {
			segs = append(segs, Segment{From: r.nodeIDs[i-1], To: r.nodeIDs[i]})
		}
	}
	return segs
}

// SegmentOrigins returns, for each segment in Segments order, the axis that
// grew it.
func (s *RootSystem) SegmentOrigins() []*Root {
	origins := make([]*Root, 0, s.NumberOfSegments())
	for _, r := range s.Roots() {
		for i := 1; i < len(r.nodes); i++ {
			origins = append(origins, r)
		}
	}
	return origins
}

// SegmentTimes returns, for each segment in Segments order, the emergence
// time of its tip node.
func (s *RootSystem) SegmentTimes() []float64 {
	times := make([]float64, 0, s.NumberOfSegments())
	for _, r := range s.Roots() {
		for i := 1; i < len(r.nodes); i++ {
			times = append(times, r.nodeTimes[i])
		}
	}
	return times
}

// ShootSegments returns the artificial connections from the seed up through
// the shoot-borne crowns. Crown nodes are issued ids 1..NumberOfCrowns at
// initialization, so the connections chain consecutive ids.
func (s *RootSystem) ShootSegments() []Segment {
	segs := make([]Segment, s.crowns)
	for i := range segs {
		segs[i] = Segment{From: i, To: i + 1}
	}
	return segs
}

// Polylines returns a copy of each grown axis's node positions, in Roots
// order.
func (s *RootSystem) Polylines() [][]r3.Vec {
	roots := s.Roots()
	lines := make([][]r3.Vec, len(roots))
	for i, r := range roots {
		lines[i] = append([]r3.Vec(nil), r.nodes...)
	}
	return lines
}

// PolylineTimes returns a copy of each grown axis's node emergence times, in
// Roots order.
func (s *RootSystem) PolylineTimes() [][]float64 {
	roots := s.Roots()
	times := make([][]float64, len(roots))
	for i, r := range roots {
		times[i] = append([]float64(nil), r.nodeTimes...)
	}
	return times
}

// RootTips returns the tip position of each grown axis, in Roots order.
func (s *RootSystem) RootTips() []r3.Vec {
	roots := s.Roots()
	tips := make([]r3.Vec, len(roots))
	for i, r := range roots {
		tips[i] = r.tip()
	}
	return tips
}

// RootBases returns the base position of each grown axis, in Roots order.
func (s *RootSystem) RootBases() []r3.Vec {
	roots := s.Roots()
	bases := make([]r3.Vec, len(roots))
	for i, r := range roots {
		bases[i] = r.nodes[0]
	}
	return bases
}

// NumberOfNewNodes returns the count of nodes created by the last Simulate
// call.
func (s *RootSystem) NumberOfNewNodes() int { return s.NumberOfNodes() - s.oldNodeCount }

// NumberOfNewRoots returns the count of axes that grew their first segment
// during the last Simulate call.
func (s *RootSystem) NumberOfNewRoots() int { return len(s.Roots()) - s.oldRootCount }

// NewNodeIndices returns the ids issued by the last Simulate call. Ids are
// issued densely, so the range is contiguous.
func (s *RootSystem) NewNodeIndices() []int {
	idx := make([]int, 0, s.NumberOfNewNodes())
	for i := s.oldNodeCount; i < s.NumberOfNodes(); i++ {
		idx = append(idx, i)
	}
	return idx
}

// NewNodes returns the positions of the nodes created by the last Simulate
// call, in id order.
func (s *RootSystem) NewNodes() []r3.Vec {
	return s.Nodes()[s.oldNodeCount:]
}

// UpdatedNodeIndices returns the ids of nodes whose records changed during
// the last Simulate call. Node records are immutable once written, so this
// is the same set as NewNodeIndices.
func (s *RootSystem) UpdatedNodeIndices() []int { return s.NewNodeIndices() }

// UpdatedNodes returns the positions for UpdatedNodeIndices.
func (s *RootSystem) UpdatedNodes() []r3.Vec { return s.NewNodes() }

// NewSegments returns the segments grown by the last Simulate call. A
// segment is new exactly when its tip node is.
func (s *RootSystem) NewSegments() []Segment {
	var segs []Segment
	for _, r := range s.Roots() {
		for i := 1; i < len(r.nodes); i++ {
			if r.nodeIDs[i] >= s.oldNodeCount {
				segs = append(segs, Segment{From: r.nodeIDs[i-1], To: r.nodeIDs[i]})
			}
		}
	}
	return segs
}

// NewSegmentOrigins returns, for each segment in NewSegments order, the axis
// that grew it.
func (s *RootSystem) NewSegmentOrigins() []*Root {
	var origins []*Root
	for _, r := range s.Roots() {
		for i := 1; i < len(r.nodes); i++ {
			if r.nodeIDs[i] >= s.oldNodeCount {
				origins = append(origins, r)
			}
		}
	}
	return origins
}
