package taproot

import (
	"fmt"
	"math"
)

// GrowthType identifies a growth function variant. The codes are stable and
// appear in parameter files.
type GrowthType int

const (
	GrowthNegExp GrowthType = 1 // asymptotic to the maximal length
	GrowthLinear GrowthType = 2 // linear until the maximal length
)

// GrowthFunction maps axis age to unimpeded cumulative length and back.
// r is the initial elongation rate, k the maximal length. Implementations
// must be pure: equal inputs always produce equal outputs.
type GrowthFunction interface {
	// Length returns the cumulative length of an unimpeded axis at age.
	Length(age, r, k float64, root *Root) float64
	// Age returns the age at which an unimpeded axis reaches length.
	Age(length, r, k float64, root *Root) float64
	// Copy returns a snapshot-safe copy.
	Copy() GrowthFunction
}

// NewGrowthFunction builds the growth function for a code.
func NewGrowthFunction(gt GrowthType) (GrowthFunction, error) {
	switch gt {
	case GrowthNegExp:
		return NegExpGrowth{}, nil
	case GrowthLinear:
		return LinearGrowth{}, nil
	default:
		return nil, fmt.Errorf("unknown growth function code %d", int(gt))
	}
}

// NegExpGrowth approaches the maximal length asymptotically:
// l(t) = k*(1-exp(-r*t/k)). Non-positive r or k means the axis never grows.
type NegExpGrowth struct{}

// Length implements GrowthFunction.
func (NegExpGrowth) Length(age, r, k float64, _ *Root) float64 {
	if r <= 0 || k <= 0 {
		return 0
	}
	return k * (1 - math.Exp(-(r/k)*age))
}

// Age implements GrowthFunction. Lengths at or beyond k are clamped just
// below the asymptote.
func (NegExpGrowth) Age(length, r, k float64, _ *Root) float64 {
	if r <= 0 || k <= 0 {
		return 0
	}
	l := math.Min(length, k*(1-1e-12))
	return -k / r * math.Log(1-l/k)
}

// Copy implements GrowthFunction.
func (g NegExpGrowth) Copy() GrowthFunction { return g }

// LinearGrowth elongates at constant rate r until the maximal length.
type LinearGrowth struct{}

// Length implements GrowthFunction.
func (LinearGrowth) Length(age, r, k float64, _ *Root) float64 {
	if r <= 0 || k <= 0 {
		return 0
	}
	return math.Min(k, r*age)
}

// Age implements GrowthFunction.
func (LinearGrowth) Age(length, r, k float64, _ *Root) float64 {
	if r <= 0 || k <= 0 {
		return 0
	}
	return length / r
}

// Copy implements GrowthFunction.
func (g LinearGrowth) Copy() GrowthFunction { return g }
