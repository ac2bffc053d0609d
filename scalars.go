package taproot

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ScalarType selects a per-root quantity for Scalar and the tabular
// exporters.
type ScalarType int

const (
	ScalarRootType ScalarType = iota
	ScalarRadius
	ScalarOrder
	ScalarTime // emergence time
	ScalarAge
	ScalarLength
	ScalarSurface
	ScalarVolume
	ScalarOne // unit weight, for counting
	ScalarUserData1
	ScalarUserData2
	ScalarUserData3
	ScalarParentType
	ScalarBasalZone
	ScalarApicalZone
	ScalarBranches
	ScalarGrowthRate
	ScalarInsertionAngle
	ScalarLifeTime
	ScalarMeanSpacing
	ScalarSpacingSD

	numScalarTypes
)

var scalarNames = [numScalarTypes]string{
	"type", "radius", "order", "time", "age", "length", "surface", "volume",
	"one", "user_data1", "user_data2", "user_data3", "parent_type",
	"basal_zone", "apical_zone", "branches", "growth_rate",
	"insertion_angle", "life_time", "mean_spacing", "spacing_sd",
}

// String returns the column name used by the tabular exporters.
func (st ScalarType) String() string {
	if st < 0 || st >= numScalarTypes {
		return "unknown"
	}
	return scalarNames[st]
}

// Scalar returns the selected quantity for this axis. Inter-branch spacing
// statistics are computed from the realized spacing draws; axes with fewer
// than two spacings report a standard deviation of zero.
func (r *Root) Scalar(st ScalarType) float64 {
	switch st {
	case ScalarRootType:
		return float64(r.typ)
	case ScalarRadius:
		return r.param.Radius
	case ScalarOrder:
		return float64(r.Order())
	case ScalarTime:
		return r.nodeTimes[0]
	case ScalarAge:
		return r.age
	case ScalarLength:
		return r.length
	case ScalarSurface:
		return 2 * math.Pi * r.param.Radius * r.length
	case ScalarVolume:
		return math.Pi * r.param.Radius * r.param.Radius * r.length
	case ScalarOne:
		return 1
	case ScalarUserData1:
		return r.typeParam().UserData1
	case ScalarUserData2:
		return r.typeParam().UserData2
	case ScalarUserData3:
		return r.typeParam().UserData3
	case ScalarParentType:
		if r.parent == nil {
			return 0
		}
		return float64(r.parent.typ)
	case ScalarBasalZone:
		return r.param.Lb
	case ScalarApicalZone:
		return r.param.La
	case ScalarBranches:
		return float64(r.param.Nob)
	case ScalarGrowthRate:
		return r.param.R
	case ScalarInsertionAngle:
		return r.param.Theta
	case ScalarLifeTime:
		return r.param.RLT
	case ScalarMeanSpacing:
		if len(r.param.Ln) == 0 {
			return 0
		}
		return stat.Mean(r.param.Ln, nil)
	case ScalarSpacingSD:
		if len(r.param.Ln) < 2 {
			return 0
		}
		return stat.StdDev(r.param.Ln, nil)
	}
	return math.NaN()
}

// Scalar returns the selected quantity for every grown axis, in Roots
// order. Unknown scalar types yield NaN entries.
func (s *RootSystem) Scalar(st ScalarType) []float64 {
	roots := s.Roots()
	v := make([]float64, len(roots))
	for i, r := range roots {
		v[i] = r.Scalar(st)
	}
	return v
}
