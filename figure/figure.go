package figure

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/paperflix/summary"
)

type Kind string

const (
	Bar        Kind = "bar"
	Scatter    Kind = "scatter"
	ErrorBar   Kind = "errorbar"
	Cumulative Kind = "cumulative"
	Sankey     Kind = "sankey"
)

var (
	ErrEmptyInput      = errors.New("no measurements")
	ErrUnknownKind     = errors.New("unknown figure kind")
	ErrInvalidFlow     = errors.New("invalid flow")
	ErrInvalidInterval = errors.New("confidence must be within (0, 1)")
)

type Point struct {
	X    float64
	Y    float64
	Low  float64
	High float64
	N    int
}

type Series struct {
	Name   string
	Points []Point
}

type Flow struct {
	Label       string
	Value       float64
	Orientation int
}

// Figure is a renderer independent chart. Bar, errorbar and cumulative
// figures place their points at category indexes, scatter figures at the
// measured X.
type Figure struct {
	Kind       Kind
	Title      string
	XLabel     string
	YLabel     string
	Caption    string
	Label      string
	Width      string
	Height     string
	LogY       bool
	ErrorBars  bool
	Categories []string
	Series     []Series
	Flows      []Flow
	Residual   float64
}

type Options struct {
	Bin        float64
	IQR        float64
	Confidence float64
	Bucket     float64
	Transform  string
	XScale     float64
	LogY       bool
}

func (o Options) confidence() (float64, error) {
	if o.Confidence == 0 {
		return 0.95, nil
	}

	if o.Confidence <= 0 || o.Confidence >= 1 {
		return 0, fmt.Errorf("%w: %g", ErrInvalidInterval, o.Confidence)
	}

	return o.Confidence, nil
}

func New(kind Kind, ms []paperflix.Measurement, flows []Flow, opts Options) (Figure, error) {
	if kind == Sankey {
		return NewSankey(flows)
	}

	ms, err := summary.Transform(ms, opts.Transform)
	if err != nil {
		return Figure{}, err
	}

	switch kind {
	case Bar:
		return NewBar(ms, opts)
	case Scatter:
		return NewScatter(ms, opts)
	case ErrorBar:
		return NewErrorBar(ms, opts)
	case Cumulative:
		return NewCumulative(ms, opts)
	default:
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NewBar draws one bar per (group, x); repeated measurements are averaged.
func NewBar(ms []paperflix.Measurement, opts Options) (Figure, error) {
	if len(ms) == 0 {
		return Figure{}, ErrEmptyInput
	}

	confidence, err := opts.confidence()
	if err != nil {
		return Figure{}, err
	}

	xs := distinctX(ms)
	fig := Figure{Kind: Bar, LogY: opts.LogY, Categories: labels(xs, opts.XScale)}

	for _, g := range summary.GroupBy(ms, summary.ByGroup) {
		series := Series{Name: g.Key}

		for _, c := range summary.GroupBy(g.Measurements, byX) {
			s, err := summary.Summarize(c.Key, c.Ys(), opts.IQR, confidence)
			if err != nil {
				return Figure{}, err
			}

			series.Points = append(series.Points, Point{
				X:    float64(slices.Index(xs, c.Measurements[0].X)),
				Y:    s.Mean,
				Low:  s.Low,
				High: s.High,
				N:    s.N,
			})
		}

		fig.Series = append(fig.Series, series)
	}

	return fig, nil
}

// NewScatter plots every measurement. On a log axis non-positive values
// cannot be drawn and are dropped.
func NewScatter(ms []paperflix.Measurement, opts Options) (Figure, error) {
	fig := Figure{Kind: Scatter, LogY: opts.LogY}

	for _, g := range summary.GroupBy(ms, summary.ByGroup) {
		series := Series{Name: g.Key}

		for _, m := range g.Measurements {
			if opts.LogY && m.Y <= 0 {
				continue
			}

			x := m.X
			if opts.XScale != 0 {
				x *= opts.XScale
			}

			series.Points = append(series.Points, Point{X: x, Y: m.Y, Low: m.Y, High: m.Y, N: 1})
		}

		if len(series.Points) == 0 {
			continue
		}

		slices.SortStableFunc(series.Points, func(a, b Point) int {
			return cmpFloat(a.X, b.X)
		})

		fig.Series = append(fig.Series, series)
	}

	if len(fig.Series) == 0 {
		return Figure{}, ErrEmptyInput
	}

	return fig, nil
}

// NewErrorBar plots the per group mean with its confidence interval. With
// opts.Bin set, X is first cut into equal width bins starting at the
// smallest X.
func NewErrorBar(ms []paperflix.Measurement, opts Options) (Figure, error) {
	if len(ms) == 0 {
		return Figure{}, ErrEmptyInput
	}

	confidence, err := opts.confidence()
	if err != nil {
		return Figure{}, err
	}

	lo := math.Inf(1)

	for _, m := range ms {
		lo = math.Min(lo, m.X)
	}

	var (
		category func(paperflix.Measurement) int
		names    []string
	)

	if opts.Bin > 0 {
		category = func(m paperflix.Measurement) int { return summary.Bin(m.X, lo, opts.Bin) }
	} else {
		xs := distinctX(ms)
		category = func(m paperflix.Measurement) int { return slices.Index(xs, m.X) }
		names = labels(xs, opts.XScale)
	}

	used := map[int]bool{}

	for _, m := range ms {
		used[category(m)] = true
	}

	var order []int

	for c := range used {
		order = append(order, c)
	}

	slices.Sort(order)

	fig := Figure{Kind: ErrorBar, LogY: opts.LogY, ErrorBars: true}

	for _, c := range order {
		if opts.Bin > 0 {
			fig.Categories = append(fig.Categories, summary.BinLabel(c, lo, opts.Bin))
		} else {
			fig.Categories = append(fig.Categories, names[c])
		}
	}

	for _, g := range summary.GroupBy(ms, summary.ByGroup) {
		series := Series{Name: g.Key}

		cells := summary.GroupBy(g.Measurements, func(m paperflix.Measurement) string {
			return strconv.Itoa(category(m))
		})

		for _, cell := range cells {
			s, err := summary.Summarize(cell.Key, cell.Ys(), opts.IQR, confidence)
			if err != nil {
				return Figure{}, err
			}

			series.Points = append(series.Points, Point{
				X:    float64(slices.Index(order, category(cell.Measurements[0]))),
				Y:    s.Mean,
				Low:  s.Low,
				High: s.High,
				N:    s.N,
			})
		}

		fig.Series = append(fig.Series, series)
	}

	return fig, nil
}

// NewCumulative shows, per group, which share of the Y values lies at or
// below each bucket edge. Buckets are shared across groups and run up to
// the overall maximum.
func NewCumulative(ms []paperflix.Measurement, opts Options) (Figure, error) {
	if len(ms) == 0 {
		return Figure{}, ErrEmptyInput
	}

	width := opts.Bucket
	if width <= 0 {
		width = 1
	}

	top := math.Inf(-1)

	for _, m := range ms {
		top = math.Max(top, m.Y)
	}

	fig := Figure{Kind: Cumulative, LogY: opts.LogY}

	for _, g := range summary.GroupBy(ms, summary.ByGroup) {
		pct := summary.Cumulative(g.Ys(), width, top)

		series := Series{Name: g.Key}

		for i, p := range pct {
			series.Points = append(series.Points, Point{X: float64(i), Y: p, Low: p, High: p, N: len(g.Measurements)})
		}

		fig.Series = append(fig.Series, series)

		if len(pct) > len(fig.Categories) {
			fig.Categories = fig.Categories[:0]

			for i := range pct {
				fig.Categories = append(fig.Categories, format(float64(i+1)*width))
			}
		}
	}

	if len(fig.Categories) == 0 {
		return Figure{}, fmt.Errorf("%w: bucket %g wider than data", ErrEmptyInput, width)
	}

	return fig, nil
}

// NewSankey expects the inflow first. Orientation 1 bends a flow up, -1
// down and 0 keeps it straight. Residual holds how far the flows are from
// balancing out.
func NewSankey(flows []Flow) (Figure, error) {
	if len(flows) < 2 {
		return Figure{}, fmt.Errorf("%w: need an inflow and at least one outflow", ErrInvalidFlow)
	}

	fig := Figure{Kind: Sankey}

	for i, f := range flows {
		if f.Orientation < -1 || f.Orientation > 1 {
			return Figure{}, fmt.Errorf("%w: %s has orientation %d", ErrInvalidFlow, f.Label, f.Orientation)
		}

		if i == 0 && f.Value <= 0 {
			return Figure{}, fmt.Errorf("%w: inflow %s must be positive", ErrInvalidFlow, f.Label)
		}

		if i > 0 && f.Value > 0 {
			f.Value = -f.Value
		}

		fig.Residual += f.Value
		fig.Flows = append(fig.Flows, f)
	}

	return fig, nil
}

func byX(m paperflix.Measurement) string {
	return strconv.FormatFloat(m.X, 'g', -1, 64)
}

func distinctX(ms []paperflix.Measurement) []float64 {
	xs := make([]float64, 0, len(ms))

	for _, m := range ms {
		xs = append(xs, m.X)
	}

	slices.Sort(xs)

	return slices.Compact(xs)
}

func labels(xs []float64, scale float64) []string {
	out := make([]string, len(xs))

	for i, x := range xs {
		if scale != 0 {
			x *= scale
		}

		out[i] = format(x)
	}

	return out
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
