package paperflix

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

var ErrMissingColumn = errors.New("missing column")

// Measurement is one observation of Y at X, tagged with the series it belongs to.
type Measurement struct {
	Group string  `db:"series"`
	X     float64 `db:"x"`
	Y     float64 `db:"y"`
}

type MeasurementParams struct {
	Figure string
	Groups []string
	Limit  uint64
}

type Repository interface {
	QueryMeasurements(ctx context.Context, params MeasurementParams) ([]Measurement, error)
}

// Table is the raw form every reader produces. Cells stay text until a
// figure asks for specific columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

func Must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}

	return t
}

func IgnoreErr[T any](t T, err error) T {
	return t
}

func (t Table) Column(name string) int {
	return slices.Index(t.Columns, name)
}

func (t Table) Measurements(x, y, group string) ([]Measurement, error) {
	xi, yi := t.Column(x), t.Column(y)

	var missing []string

	if xi < 0 {
		missing = append(missing, x)
	}

	if yi < 0 {
		missing = append(missing, y)
	}

	gi := -1

	if group != "" {
		if gi = t.Column(group); gi < 0 {
			missing = append(missing, group)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	ms := make([]Measurement, 0, len(t.Rows))

	for _, row := range t.Rows {
		if xi >= len(row) || yi >= len(row) || gi >= len(row) {
			continue
		}

		xv, ok := number(row[xi])
		if !ok {
			continue
		}

		yv, ok := number(row[yi])
		if !ok {
			continue
		}

		m := Measurement{X: xv, Y: yv}

		if gi >= 0 {
			m.Group = row[gi]
		}

		ms = append(ms, m)
	}

	return ms, nil
}

// number parses a finite float. NaN and Inf cells count as malformed.
func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
