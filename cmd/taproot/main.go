// Package main runs headless root system growth simulations and writes the
// results for analysis and visualization.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/taproot"
	"github.com/pthm-cable/taproot/analysis"
	"github.com/pthm-cable/taproot/export"
	"github.com/pthm-cable/taproot/params"
	"github.com/pthm-cable/taproot/sdf"
)

func main() {
	paramsPath := flag.String("params", "", "Parameter YAML file (empty = built-in defaults)")
	duration := flag.Float64("time", 0, "Simulation duration in days (0 = from parameter file)")
	dt := flag.Float64("dt", 1, "Time step in days")
	seed := flag.Uint64("seed", 0, "Random seed (0 = time based)")
	basal := flag.Int("basal", 0, "Number of basal roots")
	shootborne := flag.Int("shootborne", 0, "Number of shoot-borne roots")
	container := flag.String("container", "", "Confinement preset: box, pot or rhizotron (empty = unconfined)")
	maxInc := flag.Float64("maxinc", 0, "Cap on total length increment per day in cm (0 = uncapped)")
	outputDir := flag.String("output", "results", "Output directory")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if *dt <= 0 {
		log.Fatal("-dt must be positive")
	}

	set, err := params.Load(*paramsPath)
	if err != nil {
		log.Fatalf("loading parameters: %v", err)
	}

	// The cap hook throttles every root type through one shared factor.
	var se *taproot.ProportionalElongation
	if *maxInc > 0 {
		se = taproot.NewProportionalElongation()
		for i := range set.Roots {
			set.Roots[i].ScaleElongation = se
		}
	}

	s := taproot.New()
	if *seed != 0 {
		s.SetSeed(*seed)
	}
	if err := s.SetParameters(set); err != nil {
		log.Fatalf("applying parameters: %v", err)
	}

	geom, err := containerPreset(*container)
	if err != nil {
		log.Fatal(err)
	}
	if geom != nil {
		s.SetGeometry(geom)
	}

	if err := s.Initialize(*basal, *shootborne); err != nil {
		log.Fatalf("initializing root system: %v", err)
	}

	days := *duration
	if days <= 0 {
		days = set.Plant.SimTime
	}

	start := time.Now()
	for done := 0.0; done < days-1e-9; {
		step := math.Min(*dt, days-done)
		if se != nil {
			err = s.SimulateCapped(step, *maxInc, se)
		} else {
			err = s.Simulate(step)
		}
		if err != nil {
			log.Fatalf("simulating: %v", err)
		}
		done += step
		fmt.Printf("day %5.1f: %4d roots, %6d nodes (+%d)\n",
			s.SimTime(), s.NumberOfRoots(), s.NumberOfNodes(), s.NumberOfNewNodes())
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}
	for _, name := range []string{"roots.vtp", "roots.rsml", "segments.csv"} {
		if err := export.Write(s, filepath.Join(*outputDir, name)); err != nil {
			log.Fatal(err)
		}
	}
	if err := writeRootsTable(s, filepath.Join(*outputDir, "roots.csv")); err != nil {
		log.Fatal(err)
	}
	if geom != nil {
		if err := export.Write(s, filepath.Join(*outputDir, "geometry.py")); err != nil {
			log.Fatal(err)
		}
	}
	if err := set.Write(filepath.Join(*outputDir, "params.yaml")); err != nil {
		log.Fatal(err)
	}

	printSummary(s, elapsed)
	fmt.Printf("results written to %s\n", *outputDir)
}

// containerPreset builds the confining geometry for a preset name. The pot
// tapers like a nursery container; the rhizotron is a thin deep box.
func containerPreset(name string) (sdf.Geometry, error) {
	switch name {
	case "":
		return nil, nil
	case "box":
		return sdf.NewBox(27, 27, 27), nil
	case "pot":
		return sdf.NewContainer(4.5, 2.5, 20), nil
	case "rhizotron":
		return sdf.NewBox(96, 2, 126), nil
	}
	return nil, fmt.Errorf("unknown container preset %q", name)
}

func writeRootsTable(s *taproot.RootSystem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteRoots(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printSummary prints whole-system totals and a depth profile of root
// length.
func printSummary(s *taproot.RootSystem, elapsed time.Duration) {
	a := analysis.New(s)

	depth := 0.0
	for _, n := range s.Nodes() {
		depth = math.Min(depth, n.Z)
	}

	fmt.Printf("\nsimulated %.1f days in %s\n", s.SimTime(), elapsed)
	fmt.Printf("roots: %d  nodes: %d  segments: %d\n",
		s.NumberOfRoots(), s.NumberOfNodes(), s.NumberOfSegments())
	fmt.Printf("length: %.1f cm  surface: %.1f cm2  volume: %.2f cm3  depth: %.1f cm\n",
		a.Summed(taproot.ScalarLength), a.Summed(taproot.ScalarSurface),
		a.Summed(taproot.ScalarVolume), -depth)

	span := math.Ceil(-depth/10) * 10
	if span <= 0 {
		return
	}
	const layers = 10
	dist := a.Distribution(taproot.ScalarLength, 0, -span, layers, false)
	dz := span / layers
	fmt.Println("\nroot length by depth:")
	for k, v := range dist {
		if v == 0 {
			continue
		}
		fmt.Printf("  %6.1f to %6.1f cm: %8.1f cm\n", -float64(k)*dz, -float64(k+1)*dz, v)
	}
}
