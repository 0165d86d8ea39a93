package sqlflix

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sqlt/paperflix"
	"github.com/lib/pq"
)

func NewRepository(conn string, min, max int, idle time.Duration) Repository {
	db := paperflix.Must(sql.Open("pgx", conn))

	db.SetMaxOpenConns(max)
	db.SetMaxIdleConns(min)
	db.SetConnMaxIdleTime(idle)

	return Repository{
		DB: db,
	}
}

type Repository struct {
	DB *sql.DB
}

func (r Repository) QueryMeasurements(ctx context.Context, params paperflix.MeasurementParams) ([]paperflix.Measurement, error) {
	groups := params.Groups
	if groups == nil {
		groups = []string{}
	}

	rows, err := r.DB.QueryContext(ctx, `
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
	`, params.Figure, pq.StringArray(groups), int64(params.Limit))
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
