package taproot

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// grownSystem returns a stochastic system advanced a few days, ready for
// snapshot tests.
func grownSystem(t *testing.T, seed uint64) *RootSystem {
	t.Helper()
	s := newSystem(t, stochasticSet()...)
	s.SetSeed(seed)
	if err := s.Initialize(0, 0); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := s.Simulate(3); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	return s
}

// observe flattens everything a snapshot must preserve.
type observation struct {
	simtime float64
	nodes   []r3.Vec
	times   []float64
	segs    []Segment
	roots   int
	created int
}

func observe(s *RootSystem) observation {
	return observation{
		simtime: s.SimTime(),
		nodes:   s.Nodes(),
		times:   s.NodeTimes(),
		segs:    s.Segments(),
		roots:   s.NumberOfRoots(),
		created: s.CreatedRoots(),
	}
}

func equalObservations(t *testing.T, got, want observation, context string) {
	t.Helper()
	if got.simtime != want.simtime {
		t.Errorf("%s: simulation time %g, want %g", context, got.simtime, want.simtime)
	}
	if got.roots != want.roots {
		t.Errorf("%s: %d roots, want %d", context, got.roots, want.roots)
	}
	if got.created != want.created {
		t.Errorf("%s: %d created roots, want %d", context, got.created, want.created)
	}
	if len(got.nodes) != len(want.nodes) {
		t.Fatalf("%s: %d nodes, want %d", context, len(got.nodes), len(want.nodes))
	}
	for i := range got.nodes {
		if got.nodes[i] != want.nodes[i] {
			t.Fatalf("%s: node %d is %v, want %v", context, i, got.nodes[i], want.nodes[i])
		}
	}
	for i := range got.times {
		if got.times[i] != want.times[i] {
			t.Fatalf("%s: node time %d is %g, want %g", context, i, got.times[i], want.times[i])
		}
	}
	if len(got.segs) != len(want.segs) {
		t.Fatalf("%s: %d segments, want %d", context, len(got.segs), len(want.segs))
	}
	for i := range got.segs {
		if got.segs[i] != want.segs[i] {
			t.Fatalf("%s: segment %d is %v, want %v", context, i, got.segs[i], want.segs[i])
		}
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	s := grownSystem(t, 42)
	before := observe(s)

	s.Push()
	if err := s.Simulate(4); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if got := s.NumberOfNodes(); got <= len(before.nodes) {
		t.Fatalf("expected growth between push and pop, still %d nodes", got)
	}
	if err := s.Pop(); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}

	equalObservations(t, observe(s), before, "after pop")
	if got := s.StackSize(); got != 0 {
		t.Errorf("expected an empty stack after pop, got depth %d", got)
	}
}

func TestPopReplaysTrajectory(t *testing.T) {
	s := grownSystem(t, 42)

	// Grow past the snapshot, rewind, grow again: the generator state is
	// part of the snapshot, so both futures are draw for draw identical.
	s.Push()
	if err := s.Simulate(5); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	first := observe(s)

	if err := s.Pop(); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if err := s.Simulate(5); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	equalObservations(t, observe(s), first, "replayed growth")
}

func TestNestedPushPop(t *testing.T) {
	s := grownSystem(t, 17)
	outer := observe(s)
	s.Push()

	if err := s.Simulate(2); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	inner := observe(s)
	s.Push()

	if err := s.Simulate(2); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if got := s.StackSize(); got != 2 {
		t.Fatalf("expected stack depth 2, got %d", got)
	}

	if err := s.Pop(); err != nil {
		t.Fatalf("inner Pop failed: %v", err)
	}
	equalObservations(t, observe(s), inner, "after inner pop")

	if err := s.Pop(); err != nil {
		t.Fatalf("outer Pop failed: %v", err)
	}
	equalObservations(t, observe(s), outer, "after outer pop")
}

func TestPopEmptyStack(t *testing.T) {
	s := grownSystem(t, 3)
	if err := s.Pop(); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected ErrEmptyStack, got %v", err)
	}
	// The failed pop must not corrupt the system.
	if err := s.Simulate(1); err != nil {
		t.Errorf("Simulate after failed Pop: %v", err)
	}
}

func TestResetClearsStack(t *testing.T) {
	s := grownSystem(t, 3)
	s.Push()
	s.Reset()
	if err := s.Pop(); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("expected ErrEmptyStack after Reset, got %v", err)
	}
}

func TestCopySimulatesIdenticalFuture(t *testing.T) {
	s := grownSystem(t, 42)
	c := s.Copy()

	equalObservations(t, observe(c), observe(s), "fresh copy")

	if err := s.Simulate(5); err != nil {
		t.Fatalf("Simulate on the original failed: %v", err)
	}
	if err := c.Simulate(5); err != nil {
		t.Fatalf("Simulate on the copy failed: %v", err)
	}
	equalObservations(t, observe(c), observe(s), "parallel growth")
}

func TestCopyIsIndependent(t *testing.T) {
	s := grownSystem(t, 8)
	c := s.Copy()
	snapshot := observe(c)

	// Growing the original must not leak into the copy.
	if err := s.Simulate(6); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	equalObservations(t, observe(c), snapshot, "copy after original grew")

	// The snapshot stack belongs to the original alone.
	s.Push()
	c2 := s.Copy()
	if err := c2.Pop(); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("expected the copy to start with an empty stack, got %v", err)
	}
}
