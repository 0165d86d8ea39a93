package squirrelflix

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/go-sqlt/paperflix"
)

type Repository struct {
	DB     *sql.DB
	Select squirrel.SelectBuilder
}

func (r Repository) QueryMeasurements(ctx context.Context, params paperflix.MeasurementParams) ([]paperflix.Measurement, error) {
	sb := r.Select.Columns("m.series", "m.x", "m.y").
		From("measurements AS m").
		Where(squirrel.Eq{"m.figure": params.Figure}).
		OrderBy("m.id")

	if len(params.Groups) > 0 {
		sb = sb.Where(squirrel.Eq{"m.series": params.Groups})
	}

	if params.Limit > 0 {
		sb = sb.Limit(params.Limit)
	}

	rows, err := sb.RunWith(r.DB).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var measurements = make([]paperflix.Measurement, 0, params.Limit)

	for rows.Next() {
		var m paperflix.Measurement

		if err := rows.Scan(&m.Group, &m.X, &m.Y); err != nil {
			return nil, err
		}

		measurements = append(measurements, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return measurements, nil
}
