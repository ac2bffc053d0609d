package params

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Plant.SeedPos.Z != -3 {
		t.Errorf("seed depth: got %g, want -3", s.Plant.SeedPos.Z)
	}
	if s.Plant.SimTime != 30 {
		t.Errorf("simulation horizon: got %g, want 30", s.Plant.SimTime)
	}
	if s.Plant.BasalType != 4 || s.Plant.ShootborneType != 5 {
		t.Errorf("base axis types: got %d/%d, want 4/5", s.Plant.BasalType, s.Plant.ShootborneType)
	}
	if len(s.Roots) != 5 {
		t.Fatalf("expected 5 default root types, got %d", len(s.Roots))
	}

	tap := s.Roots[0]
	if tap.Type != 1 || tap.Name != "taproot" {
		t.Errorf("first type: got %d %q, want 1 %q", tap.Type, tap.Name, "taproot")
	}
	if tap.Nob != 25 || tap.R != 1.5 {
		t.Errorf("taproot branching/rate: got %g/%g, want 25/1.5", tap.Nob, tap.R)
	}
	if len(tap.Successors) != 1 || tap.Successors[0] != 2 {
		t.Errorf("taproot successors: got %v, want [2]", tap.Successors)
	}
	fine := s.Roots[2]
	if fine.Nob != 0 || len(fine.Successors) != 0 {
		t.Errorf("fine lateral must not branch: nob %g, successors %v", fine.Nob, fine.Successors)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	file := `
plant:
  sim_time: 12
roots:
  - type: 1
    name: stub
    la: 4
    r: 2
`
	if err := os.WriteFile(path, []byte(file), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Overridden fields take the file's values.
	if s.Plant.SimTime != 12 {
		t.Errorf("simulation horizon: got %g, want 12", s.Plant.SimTime)
	}
	// Untouched plant fields keep their defaults.
	if s.Plant.SeedPos.Z != -3 {
		t.Errorf("seed depth: got %g, want -3", s.Plant.SeedPos.Z)
	}
	// A roots section replaces the default types wholesale.
	if len(s.Roots) != 1 {
		t.Fatalf("expected the file's single root type, got %d", len(s.Roots))
	}
	if s.Roots[0].Name != "stub" || s.Roots[0].La != 4 {
		t.Errorf("root type: got %q la %g, want %q la 4", s.Roots[0].Name, s.Roots[0].La, "stub")
	}
	// Normalization fills structural defaults the file omitted.
	if s.Roots[0].Dx != 0.25 {
		t.Errorf("axial resolution default: got %g, want 0.25", s.Roots[0].Dx)
	}
	if s.Roots[0].GrowthType != 1 {
		t.Errorf("growth default: got %d, want 1", s.Roots[0].GrowthType)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.Plant.SimTime = 14
	s.Roots[0].R = 2.25

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := s.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written file failed: %v", err)
	}
	if loaded.Plant.SimTime != 14 {
		t.Errorf("simulation horizon: got %g, want 14", loaded.Plant.SimTime)
	}
	if len(loaded.Roots) != len(s.Roots) {
		t.Fatalf("root type count: got %d, want %d", len(loaded.Roots), len(s.Roots))
	}
	if loaded.Roots[0].R != 2.25 {
		t.Errorf("growth rate: got %g, want 2.25", loaded.Roots[0].R)
	}
	if loaded.Roots[1].Theta != s.Roots[1].Theta {
		t.Errorf("insertion angle: got %g, want %g", loaded.Roots[1].Theta, s.Roots[1].Theta)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		mutil func(*RootType)
	}{
		{"type zero", func(t *RootType) { t.Type = 0 }},
		{"type out of range", func(t *RootType) { t.Type = MaxTypes + 1 }},
		{"negative dx", func(t *RootType) { t.Dx = -0.1 }},
		{"successor length mismatch", func(t *RootType) {
			t.Successors = []int{2, 3}
			t.SuccessorP = []float64{1}
		}},
		{"successor type out of range", func(t *RootType) {
			t.Successors = []int{0}
			t.SuccessorP = []float64{1}
		}},
		{"probability sum above one", func(t *RootType) {
			t.Successors = []int{2, 3}
			t.SuccessorP = []float64{0.8, 0.4}
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewRootType(1)
			c.mutil(p)
			if err := p.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	if err := NewRootType(1).Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestSetValidateDuplicateType(t *testing.T) {
	s := &Set{Roots: []RootType{*NewRootType(1), *NewRootType(1)}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for duplicate type indices")
	}
}

func TestNormalize(t *testing.T) {
	p := &RootType{Type: 1}
	p.Normalize()
	if p.Dx != 0.25 {
		t.Errorf("dx default: got %g, want 0.25", p.Dx)
	}
	if p.GrowthType != 1 {
		t.Errorf("growth default: got %d, want 1", p.GrowthType)
	}
	if p.RLT != 1e9 {
		t.Errorf("life time default: got %g, want 1e9", p.RLT)
	}

	pl := &Plant{}
	pl.Normalize()
	if pl.BasalType != 4 || pl.ShootborneType != 5 {
		t.Errorf("base types: got %d/%d, want 4/5", pl.BasalType, pl.ShootborneType)
	}
	if pl.CrownSize != 1 {
		t.Errorf("crown size default: got %d, want 1", pl.CrownSize)
	}
	if pl.SimTime != 30 {
		t.Errorf("horizon default: got %g, want 30", pl.SimTime)
	}
}

func TestRealizeDeterministicMeans(t *testing.T) {
	p := NewRootType(1)
	p.Lb = 1
	p.La = 3
	p.Ln = 0.5
	p.Nob = 5
	p.R = 2
	p.Radius = 0.15
	p.Theta = 1.1
	// All spreads zero: the realization equals the means exactly.
	rp := p.Realize(rand.NewPCG(1, 1))

	if rp.Lb != 1 || rp.La != 3 || rp.R != 2 || rp.Radius != 0.15 || rp.Theta != 1.1 {
		t.Errorf("realized values deviate from the means: %+v", rp)
	}
	if rp.Nob != 5 {
		t.Errorf("branching opportunities: got %d, want 5", rp.Nob)
	}
	if len(rp.Ln) != 4 {
		t.Fatalf("inter-branch distances: got %d, want 4", len(rp.Ln))
	}
	for i, ln := range rp.Ln {
		if ln != 0.5 {
			t.Errorf("distance %d: got %g, want 0.5", i, ln)
		}
	}
	if got, want := rp.MaxLength(), 1+3+4*0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("maximal length: got %g, want %g", got, want)
	}
	for i, want := range []float64{1, 1.5, 2, 2.5, 3} {
		if got := rp.BranchPoint(i); math.Abs(got-want) > 1e-12 {
			t.Errorf("branch point %d: got %g, want %g", i, got, want)
		}
	}
}

func TestRealizeClamping(t *testing.T) {
	p := NewRootType(1)
	p.Lb = -5 // nonsense means clamp to zero rather than fail
	p.La = 2
	p.Theta = -1
	p.Nob = 0
	rp := p.Realize(rand.NewPCG(2, 2))

	if rp.Lb != 0 {
		t.Errorf("basal zone: got %g, want 0", rp.Lb)
	}
	if rp.Theta != 0 {
		t.Errorf("insertion angle: got %g, want 0", rp.Theta)
	}
	if rp.Nob != 0 || len(rp.Ln) != 0 {
		t.Errorf("unbranched type realized branches: nob %d, distances %d", rp.Nob, len(rp.Ln))
	}
}

func TestRealizeDrawLockstep(t *testing.T) {
	// The spread values must not change how much randomness a realization
	// consumes, or seeded runs would diverge on parameter edits.
	a := NewRootType(1)
	a.Nob = 5

	b := NewRootType(1)
	b.Nob = 5
	b.LbSD, b.LaSD, b.LnSD, b.RSD, b.RadiusSD, b.ThetaSD, b.RLTSD = 1, 1, 0.1, 1, 0.1, 0.5, 10

	srcA := rand.NewPCG(7, 7)
	srcB := rand.NewPCG(7, 7)
	a.Realize(srcA)
	b.Realize(srcB)

	if gotA, gotB := srcA.Uint64(), srcB.Uint64(); gotA != gotB {
		t.Errorf("sources diverged after realization: %d vs %d", gotA, gotB)
	}
}

func TestRealizeReproducible(t *testing.T) {
	p := NewRootType(2)
	p.LbSD, p.LaSD, p.ThetaSD = 0.3, 0.8, 0.2
	p.Nob = 6
	p.NobSD = 2
	p.LnSD = 0.2

	a := p.Realize(rand.NewPCG(9, 9))
	b := p.Realize(rand.NewPCG(9, 9))
	if a.Lb != b.Lb || a.La != b.La || a.Theta != b.Theta || a.Nob != b.Nob {
		t.Errorf("same seed produced different realizations: %+v vs %+v", a, b)
	}
	for i := range a.Ln {
		if a.Ln[i] != b.Ln[i] {
			t.Errorf("distance %d differs: %g vs %g", i, a.Ln[i], b.Ln[i])
		}
	}
}

func TestClones(t *testing.T) {
	p := NewRootType(1)
	p.Successors = []int{2, 3}
	p.SuccessorP = []float64{0.5, 0.5}
	c := p.Clone()
	c.Successors[0] = 9
	if p.Successors[0] != 2 {
		t.Error("RootType.Clone shares the successors slice")
	}

	rp := p.Realize(rand.NewPCG(3, 3))
	rc := rp.Clone()
	if len(rp.Ln) > 0 {
		rc.Ln[0] = -1
		if rp.Ln[0] == -1 {
			t.Error("Realized.Clone shares the distances slice")
		}
	}

	pl := NewPlant()
	cl := pl.Clone()
	cl.SimTime = 99
	if pl.SimTime == 99 {
		t.Error("Plant.Clone shares state with the original")
	}
}
