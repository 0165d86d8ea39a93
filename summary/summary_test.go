package summary_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/paperflix/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterOutliers(t *testing.T) {
	values := []float64{10, 11, 12, 13, 14, 15, 500}

	kept := summary.FilterOutliers(values, 1.5)
	assert.Equal(t, []float64{10, 11, 12, 13, 14, 15}, kept)
	assert.Len(t, values, 7, "input must not be modified")

	assert.Equal(t, values, summary.FilterOutliers(values, 200))
	assert.Equal(t, values, summary.FilterOutliers(values, 0))
}

func TestFilterOutliersInterpolatesQuartiles(t *testing.T) {
	// pandas: Series([1, 2, 3, 4, 100]).quantile([.25, .75]) == [2, 4]
	assert.Equal(t, []float64{1, 2, 3, 4}, summary.FilterOutliers([]float64{1, 2, 3, 4, 100}, 1.5))
	assert.Equal(t, []float64{4, 100, 1, 3, 2}, summary.FilterOutliers([]float64{4, 100, 1, 3, 2}, 50))
}

func TestQuartiles(t *testing.T) {
	q := summary.Quartiles([]float64{100, 4, 3, 2, 1})
	assert.Equal(t, 2.0, q.Q1)
	assert.Equal(t, 3.0, q.Q2)
	assert.Equal(t, 4.0, q.Q3)

	// pandas: Series([10, 11, 12, 13, 14, 15]).quantile([.25, .5, .75])
	q = summary.Quartiles([]float64{10, 11, 12, 13, 14, 15})
	assert.InDelta(t, 11.25, q.Q1, 1e-9)
	assert.InDelta(t, 12.5, q.Q2, 1e-9)
	assert.InDelta(t, 13.75, q.Q3, 1e-9)

	q = summary.Quartiles([]float64{7})
	assert.Equal(t, []float64{7, 7, 7}, []float64{q.Q1, q.Q2, q.Q3})
}

func TestFilterOutliersSmallInputs(t *testing.T) {
	assert.Empty(t, summary.FilterOutliers(nil, 1.5))
	assert.Equal(t, []float64{7}, summary.FilterOutliers([]float64{7}, 1.5))
	assert.Equal(t, []float64{1, 2}, summary.FilterOutliers([]float64{1, 2}, 1.5))
}

func TestFilterOutliersNeverGrows(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		values := make([]float64, 1+r.IntN(40))
		for i := range values {
			values[i] = r.NormFloat64() * 100
		}

		for _, k := range []float64{0.5, 1.5, 3} {
			assert.LessOrEqual(t, len(summary.FilterOutliers(values, k)), len(values))
		}
	}
}

func TestInterval(t *testing.T) {
	mean, low, high, err := summary.Interval([]float64{1, 2, 3, 4, 5}, 0.95)
	require.NoError(t, err)

	// t(0.975, 4) = 2.776445, s = 1.581139
	assert.InDelta(t, 3, mean, 1e-9)
	assert.InDelta(t, 1.036757, low, 1e-4)
	assert.InDelta(t, 4.963243, high, 1e-4)
}

func TestIntervalCollapses(t *testing.T) {
	mean, low, high, err := summary.Interval([]float64{4}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 4}, []float64{mean, low, high})

	mean, low, high, err = summary.Interval([]float64{2, 2, 2}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, []float64{mean, low, high})

	_, _, _, err = summary.Interval(nil, 0.95)
	assert.ErrorIs(t, err, summary.ErrEmptyInput)
}

func TestIntervalRejectsConfidence(t *testing.T) {
	for _, c := range []float64{0, 1, 95, -0.5} {
		_, _, _, err := summary.Interval([]float64{1, 2, 3}, c)
		assert.ErrorIs(t, err, summary.ErrInvalidConfidence, "%g", c)

		_, err = summary.Summarize("g", []float64{1, 2, 3}, 0, c)
		assert.ErrorIs(t, err, summary.ErrInvalidConfidence, "%g", c)
	}
}

func TestSummarize(t *testing.T) {
	s, err := summary.Summarize("lev=1", []float64{10, 11, 12, 13, 14, 15, 500}, 1.5, 0.95)
	require.NoError(t, err)

	assert.Equal(t, "lev=1", s.Key)
	assert.Equal(t, 6, s.N)
	assert.Equal(t, 1, s.Outliers)
	assert.InDelta(t, 12.5, s.Mean, 1e-9)
	assert.Less(t, s.Low, s.Mean)
	assert.Greater(t, s.High, s.Mean)
	assert.InDelta(t, 2.5, s.IQR(), 1e-9)

	_, err = summary.Summarize("empty", nil, 1.5, 0.95)
	assert.ErrorIs(t, err, summary.ErrEmptyInput)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	values := []float64{3.2, 9.1, 4.4, 4.8, 120, 5.0, 4.1}

	a, err := summary.Summarize("k", values, 1.5, 0.95)
	require.NoError(t, err)

	b, err := summary.Summarize("k", values, 1.5, 0.95)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGroupByIsOrderIndependent(t *testing.T) {
	ms := []paperflix.Measurement{
		{Group: "2", X: 1, Y: 10},
		{Group: "1", X: 1, Y: 3},
		{Group: "10", X: 2, Y: 7},
		{Group: "1", X: 2, Y: 5},
		{Group: "2", X: 3, Y: 12},
		{Group: "10", X: 1, Y: 9},
	}

	means := func(ms []paperflix.Measurement) map[string]summary.Summary {
		out := map[string]summary.Summary{}

		for _, g := range summary.GroupBy(ms, summary.ByGroup) {
			out[g.Key] = paperflix.Must(summary.Summarize(g.Key, g.Ys(), 0, 0.95))
		}

		return out
	}

	want := means(ms)

	groups := summary.GroupBy(ms, summary.ByGroup)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"1", "2", "10"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})

	r := rand.New(rand.NewPCG(3, 4))

	for range 20 {
		shuffled := append([]paperflix.Measurement(nil), ms...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := means(shuffled)

		for k, s := range want {
			assert.InDelta(t, s.Mean, got[k].Mean, 1e-12)
			assert.InDelta(t, s.Low, got[k].Low, 1e-12)
			assert.InDelta(t, s.High, got[k].High, 1e-12)
		}
	}
}

func TestCompareKeys(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "2", -1},
		{"10", "2", 1},
		{"0.5", "0.25", 1},
		{"P@1", "P@5", -1},
		{"P@5", "P@10", -1},
		{"P@10", "P@All", -1},
		{"Δ=1", "Δ=2", -1},
		{"abc", "abc", 0},
		{"ab", "abc", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, summary.CompareKeys(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestBin(t *testing.T) {
	assert.Equal(t, 0, summary.Bin(10, 10, 2))
	assert.Equal(t, 0, summary.Bin(12, 10, 2))
	assert.Equal(t, 1, summary.Bin(12.5, 10, 2))
	assert.Equal(t, 1, summary.Bin(14, 10, 2))
	assert.Equal(t, 2, summary.Bin(15, 10, 2))

	assert.Equal(t, "[10, 12]", summary.BinLabel(0, 10, 2))
	assert.Equal(t, "(12, 14]", summary.BinLabel(1, 10, 2))
}

func TestCumulative(t *testing.T) {
	got := summary.Cumulative([]float64{1, 2, 2, 5}, 1, 5)
	assert.Equal(t, []float64{0, 25, 75, 75, 100}, got)

	got = summary.Cumulative([]float64{10, 150, 250}, 100, 250)
	require.Len(t, got, 2)
	assert.InDelta(t, 100.0/3, got[0], 1e-9)
	assert.InDelta(t, 200.0/3, got[1], 1e-9)

	assert.Nil(t, summary.Cumulative(nil, 1, 5))
	assert.Nil(t, summary.Cumulative([]float64{1}, 0, 5))
}

func TestRelative(t *testing.T) {
	ms := []paperflix.Measurement{
		{Group: "holes=2", X: 2, Y: 15},
		{Group: "holes=2", X: 1, Y: 10},
		{Group: "holes=3", X: 1, Y: 4},
		{Group: "holes=3", X: 2, Y: 8},
	}

	got, err := summary.Relative(ms)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, got[0].Y, 1e-12)
	assert.InDelta(t, 0, got[1].Y, 1e-12)
	assert.InDelta(t, 0, got[2].Y, 1e-12)
	assert.InDelta(t, 1, got[3].Y, 1e-12)

	_, err = summary.Relative([]paperflix.Measurement{{Group: "a", X: 1, Y: 0}})
	assert.ErrorIs(t, err, summary.ErrZeroBaseline)
}

func TestTransform(t *testing.T) {
	ms := []paperflix.Measurement{{X: 1, Y: 8}, {X: 2, Y: 0}, {X: 3, Y: -1}}

	got, err := summary.Transform(ms, "log2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 3, got[0].Y, 1e-12)

	got, err = summary.Transform(ms, "log")
	require.NoError(t, err)
	assert.InDelta(t, math.Log(8), got[0].Y, 1e-12)

	got, err = summary.Transform(ms, "")
	require.NoError(t, err)
	assert.Equal(t, ms, got)

	_, err = summary.Transform(ms, "sqrt")
	assert.ErrorIs(t, err, summary.ErrUnknownTransform)
}
