package sqlxflix

import (
	"context"

	"github.com/go-sqlt/paperflix"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	DB *sqlx.DB
}

const queryStatement = `
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

	var rows []paperflix.Measurement

	err := r.DB.SelectContext(ctx, &rows, queryStatement,
		params.Figure, pq.Array(groups), int64(params.Limit))
	if err != nil {
		return nil, err
	}

	return rows, nil
}
