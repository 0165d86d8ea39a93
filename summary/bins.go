package summary

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-sqlt/paperflix"
	"github.com/montanaflynn/stats"
)

var (
	ErrZeroBaseline     = errors.New("zero baseline")
	ErrUnknownTransform = errors.New("unknown transform")
)

// Bin places x into right-closed bins (lo+i*width, lo+(i+1)*width].
// The first bin also holds lo itself.
func Bin(x, lo, width float64) int {
	if width <= 0 || x <= lo {
		return 0
	}

	return int(math.Ceil((x-lo)/width)) - 1
}

func BinLabel(i int, lo, width float64) string {
	left, right := lo+float64(i)*width, lo+float64(i+1)*width

	if i == 0 {
		return fmt.Sprintf("[%g, %g]", left, right)
	}

	return fmt.Sprintf("(%g, %g]", left, right)
}

// Cumulative counts values into buckets of the given width spanning
// [0, max] and returns, for each bucket, the percentage of values at or
// below its upper edge. Values past the last full bucket still count
// towards the total.
func Cumulative(values []float64, width, max float64) []float64 {
	if width <= 0 || len(values) == 0 {
		return nil
	}

	// edges are 0, width, 2*width, ... strictly below max+1
	buckets := int(math.Ceil((max+1)/width)) - 1
	if buckets < 1 {
		return nil
	}

	top := float64(buckets) * width
	counts := make([]float64, buckets)

	for _, v := range values {
		if v < 0 || v > top {
			continue
		}

		i := int(math.Floor(v / width))
		if i >= buckets {
			i = buckets - 1
		}

		counts[i]++
	}

	out := make([]float64, buckets)
	total := 0.0

	for i, c := range counts {
		total += c
		out[i] = total / float64(len(values)) * 100
	}

	return out
}

// Relative rescales every group against the mean Y at its smallest X:
// y/baseline - 1.
func Relative(ms []paperflix.Measurement) ([]paperflix.Measurement, error) {
	base := map[string]float64{}

	for _, g := range GroupBy(ms, ByGroup) {
		minX := math.Inf(1)

		for _, m := range g.Measurements {
			minX = math.Min(minX, m.X)
		}

		var ys []float64

		for _, m := range g.Measurements {
			if m.X == minX {
				ys = append(ys, m.Y)
			}
		}

		mean := paperflix.IgnoreErr(stats.Mean(ys))
		if mean == 0 {
			return nil, fmt.Errorf("%w: group %q", ErrZeroBaseline, g.Key)
		}

		base[g.Key] = mean
	}

	out := make([]paperflix.Measurement, len(ms))

	for i, m := range ms {
		out[i] = paperflix.Measurement{Group: m.Group, X: m.X, Y: m.Y/base[m.Group] - 1}
	}

	return out, nil
}

// Transform applies a named transformation to Y. Log transforms drop
// non-positive values.
func Transform(ms []paperflix.Measurement, name string) ([]paperflix.Measurement, error) {
	var fn func(float64) float64

	switch name {
	case "", "none":
		return ms, nil
	case "relative":
		return Relative(ms)
	case "log":
		fn = math.Log
	case "log2":
		fn = math.Log2
	case "log10":
		fn = math.Log10
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransform, name)
	}

	out := make([]paperflix.Measurement, 0, len(ms))

	for _, m := range ms {
		if m.Y <= 0 {
			continue
		}

		out = append(out, paperflix.Measurement{Group: m.Group, X: m.X, Y: fn(m.Y)})
	}

	return out, nil
}
