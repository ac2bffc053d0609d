package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/taproot"
)

// SegmentRecord is one row of the segment table, one segment per row with
// its end point coordinates and the axis it belongs to.
type SegmentRecord struct {
	From   int     `csv:"from"`
	To     int     `csv:"to"`
	X1     float64 `csv:"x1"`
	Y1     float64 `csv:"y1"`
	Z1     float64 `csv:"z1"`
	X2     float64 `csv:"x2"`
	Y2     float64 `csv:"y2"`
	Z2     float64 `csv:"z2"`
	Time   float64 `csv:"time"`
	Root   int     `csv:"root"`
	Type   int     `csv:"type"`
	Order  int     `csv:"order"`
	Radius float64 `csv:"radius"`
}

// RootRecord is one row of the per-axis summary table.
type RootRecord struct {
	ID       int     `csv:"root"`
	Type     int     `csv:"type"`
	Parent   int     `csv:"parent"`
	Order    int     `csv:"order"`
	Nodes    int     `csv:"nodes"`
	Length   float64 `csv:"length"`
	Age      float64 `csv:"age"`
	Radius   float64 `csv:"radius"`
	Surface  float64 `csv:"surface"`
	Volume   float64 `csv:"volume"`
	Branches int     `csv:"branches"`
}

// SegmentRecords builds the segment table for the current simulation state.
func SegmentRecords(s *taproot.RootSystem) []SegmentRecord {
	nodes := s.Nodes()
	segs := s.Segments()
	times := s.SegmentTimes()
	origins := s.SegmentOrigins()

	recs := make([]SegmentRecord, len(segs))
	for i, seg := range segs {
		r := origins[i]
		a, b := nodes[seg.From], nodes[seg.To]
		recs[i] = SegmentRecord{
			From: seg.From, To: seg.To,
			X1: a.X, Y1: a.Y, Z1: a.Z,
			X2: b.X, Y2: b.Y, Z2: b.Z,
			Time:   times[i],
			Root:   r.ID(),
			Type:   r.Type(),
			Order:  r.Order(),
			Radius: r.Param().Radius,
		}
	}
	return recs
}

// RootRecords builds the per-axis summary table for the current simulation
// state, grown axes only, in the same order as the scalar getters.
func RootRecords(s *taproot.RootSystem) []RootRecord {
	roots := s.Roots()
	recs := make([]RootRecord, len(roots))
	for i, r := range roots {
		parent := -1
		if p := r.Parent(); p != nil {
			parent = p.ID()
		}
		recs[i] = RootRecord{
			ID:       r.ID(),
			Type:     r.Type(),
			Parent:   parent,
			Order:    r.Order(),
			Nodes:    r.NumberOfNodes(),
			Length:   r.Length(),
			Age:      r.Age(),
			Radius:   r.Param().Radius,
			Surface:  r.Scalar(taproot.ScalarSurface),
			Volume:   r.Scalar(taproot.ScalarVolume),
			Branches: len(r.Children()),
		}
	}
	return recs
}

// WriteSegments writes the segment table as CSV.
func WriteSegments(s *taproot.RootSystem, w io.Writer) error {
	if err := gocsv.Marshal(SegmentRecords(s), w); err != nil {
		return fmt.Errorf("writing segments: %w", err)
	}
	return nil
}

// WriteRoots writes the per-axis summary table as CSV.
func WriteRoots(s *taproot.RootSystem, w io.Writer) error {
	if err := gocsv.Marshal(RootRecords(s), w); err != nil {
		return fmt.Errorf("writing roots: %w", err)
	}
	return nil
}
