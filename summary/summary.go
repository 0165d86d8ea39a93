package summary

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode"

	"github.com/go-sqlt/paperflix"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrEmptyInput        = errors.New("empty input")
	ErrInvalidConfidence = errors.New("confidence must be within (0, 1)")
)

type Summary struct {
	Key       string
	N         int
	Outliers  int
	Mean      float64
	Low       float64
	High      float64
	Quartiles stats.Quartiles
}

func (s Summary) IQR() float64 {
	return s.Quartiles.Q3 - s.Quartiles.Q1
}

// FilterOutliers keeps the values within [Q1 - k*IQR, Q3 + k*IQR].
// The input is left untouched and the original order is kept.
func FilterOutliers(values []float64, k float64) []float64 {
	if k <= 0 || len(values) < 2 {
		return slices.Clone(values)
	}

	q := Quartiles(values)
	iqr := q.Q3 - q.Q1
	lo, hi := q.Q1-k*iqr, q.Q3+k*iqr

	kept := make([]float64, 0, len(values))

	for _, v := range values {
		if v >= lo && v <= hi {
			kept = append(kept, v)
		}
	}

	return kept
}

// Quartiles interpolates linearly between the closest ranks, which is the
// method pandas and numpy use by default.
func Quartiles(values []float64) stats.Quartiles {
	if len(values) == 0 {
		return stats.Quartiles{}
	}

	sorted := slices.Sorted(slices.Values(values))

	return stats.Quartiles{
		Q1: quantile(sorted, 0.25),
		Q2: quantile(sorted, 0.5),
		Q3: quantile(sorted, 0.75),
	}
}

func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo, hi := int(math.Floor(h)), int(math.Ceil(h))

	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Interval returns the sample mean and the two-sided Student's t confidence
// interval around it. With fewer than two values, or no spread, the interval
// collapses onto the mean.
func Interval(values []float64, confidence float64) (mean, low, high float64, err error) {
	if !(confidence > 0 && confidence < 1) {
		return 0, 0, 0, fmt.Errorf("%w: %g", ErrInvalidConfidence, confidence)
	}

	mean, err = stats.Mean(values)
	if err != nil {
		return 0, 0, 0, ErrEmptyInput
	}

	if len(values) < 2 {
		return mean, mean, mean, nil
	}

	sd, err := stats.StandardDeviationSample(values)
	if err != nil || sd == 0 || math.IsNaN(sd) {
		return mean, mean, mean, nil
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(values) - 1)}.Quantile(1 - (1-confidence)/2)
	half := t * sd / math.Sqrt(float64(len(values)))

	return mean, mean - half, mean + half, nil
}

func Summarize(key string, values []float64, k, confidence float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{Key: key}, ErrEmptyInput
	}

	kept := FilterOutliers(values, k)

	mean, low, high, err := Interval(kept, confidence)
	if err != nil {
		return Summary{Key: key}, err
	}

	s := Summary{
		Key:      key,
		N:        len(kept),
		Outliers: len(values) - len(kept),
		Mean:     mean,
		Low:      low,
		High:     high,
	}

	s.Quartiles = Quartiles(kept)

	return s, nil
}

type Group struct {
	Key          string
	Measurements []paperflix.Measurement
}

func (g Group) Ys() []float64 {
	ys := make([]float64, len(g.Measurements))

	for i, m := range g.Measurements {
		ys[i] = m.Y
	}

	return ys
}

// GroupBy buckets measurements by key. Groups come back sorted with
// CompareKeys, so the result does not depend on the order of ms.
func GroupBy(ms []paperflix.Measurement, key func(paperflix.Measurement) string) []Group {
	index := map[string]int{}

	var groups []Group

	for _, m := range ms {
		k := key(m)

		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}

		groups[i].Measurements = append(groups[i].Measurements, m)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return CompareKeys(a.Key, b.Key)
	})

	return groups
}

func ByGroup(m paperflix.Measurement) string {
	return m.Group
}

// CompareKeys orders numerically when both keys are numbers and naturally
// otherwise, so P@5 sorts before P@10.
func CompareKeys(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)

	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	ra, rb := []rune(a), []rune(b)

	i, j := 0, 0

	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}

			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}

			na := paperflix.IgnoreErr(strconv.ParseFloat(string(ra[si:i]), 64))
			nb := paperflix.IgnoreErr(strconv.ParseFloat(string(rb[sj:j]), 64))

			if na != nb {
				if na < nb {
					return -1
				}

				return 1
			}

			continue
		}

		if ra[i] != rb[j] {
			if ra[i] < rb[j] {
				return -1
			}

			return 1
		}

		i++
		j++
	}

	switch {
	case len(ra)-i < len(rb)-j:
		return -1
	case len(ra)-i > len(rb)-j:
		return 1
	}

	if a < b {
		return -1
	}

	if a > b {
		return 1
	}

	return 0
}
