package pgxflix

import (
	"context"

	"github.com/go-sqlt/paperflix"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	Pool *pgxpool.Pool
}

var QueryMeasurements = `
	SELECT
		m.series
		, m.x
		, m.y
	FROM measurements m
	WHERE
		m.figure = $1
		AND (cardinality($2::TEXT[]) = 0 OR m.series = ANY ($2))
	ORDER BY m.id
	LIMIT NULLIF($3::BIGINT, 0);
`

func (r Repository) QueryMeasurements(ctx context.Context, params paperflix.MeasurementParams) ([]paperflix.Measurement, error) {
	groups := params.Groups
	if groups == nil {
		groups = []string{}
	}

	rows, err := r.Pool.Query(ctx, QueryMeasurements, params.Figure, groups, int64(params.Limit))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (paperflix.Measurement, error) {
		var m paperflix.Measurement

		if err := row.Scan(&m.Group, &m.X, &m.Y); err != nil {
			return m, err
		}

		return m, nil
	})
}

// InsertMeasurements copies ms into the measurements table under figure.
func (r Repository) InsertMeasurements(ctx context.Context, figure string, ms []paperflix.Measurement) (int64, error) {
	return r.Pool.CopyFrom(ctx,
		pgx.Identifier{"measurements"},
		[]string{"figure", "series", "x", "y"},
		pgx.CopyFromSlice(len(ms), func(i int) ([]any, error) {
			return []any{figure, ms[i].Group, ms[i].X, ms[i].Y}, nil
		}),
	)
}

func (r Repository) DeleteMeasurements(ctx context.Context, figure string) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM measurements WHERE figure = $1`, figure)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
