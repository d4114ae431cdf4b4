package vizutil

import "math"

// Series is one data stream of a chart.
type Series struct {
	Key    string    `json:"key" yaml:"key"`
	Values []float64 `json:"values" yaml:"values"`
}

// CalcTicksX returns how many x axis ticks to draw for series: the
// requested count, capped below the longest series length, never less
// than one.
func CalcTicksX(numTicks float64, series []*Series) int {
	numValues := 1
	for _, s := range series {
		if s != nil && len(s.Values) > numValues {
			numValues = len(s.Values)
		}
	}
	if numTicks > float64(numValues) {
		numTicks = float64(numValues - 1)
	}
	if numTicks < 1 {
		numTicks = 1
	}
	return int(math.Floor(numTicks))
}
