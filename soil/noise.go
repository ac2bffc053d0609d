package soil

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"gonum.org/v1/gonum/spatial/r3"
)

// Noise is a coherent random field, useful as a stand-in for patchy soil
// properties. The same seed always produces the same field. Frequency
// controls feature size (higher means smaller patches) and values are
// mapped into [Min, Max].
type Noise struct {
	Frequency float64
	Min       float64
	Max       float64

	src opensimplex.Noise
}

// NewNoise creates a noise field from a seed with feature sizes around
// ten length units and values in [0, 1].
func NewNoise(seed int64) *Noise {
	return &Noise{
		Frequency: 0.1,
		Min:       0,
		Max:       1,
		src:       opensimplex.NewNormalized(seed),
	}
}

func (n *Noise) Value(p r3.Vec) float64 {
	v := n.src.Eval3(p.X*n.Frequency, p.Y*n.Frequency, p.Z*n.Frequency)
	return n.Min + (n.Max-n.Min)*v
}
