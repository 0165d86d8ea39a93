package sqltflix

import (
	"context"

	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/sqlt"
	"github.com/jackc/pgx/v5/pgxpool"
)

func New(pool *pgxpool.Pool, config sqlt.Config) Repository {
	return Repository{
		Pool: pool,
		QueryMeasurementsStatement: sqlt.AllPgx[paperflix.MeasurementParams, paperflix.Measurement](
			config,
			sqlt.Parse(`
				SELECT
					m.series        {{ Scan.String.To "Group" }}
					, m.x           {{ Scan.Float.To "X" }}
					, m.y           {{ Scan.Float.To "Y" }}
				FROM measurements m
				WHERE m.figure = {{ .Figure }}
				{{ if .Groups }} AND m.series = ANY ({{ .Groups }}){{ end }}
				ORDER BY m.id
				{{ if gt .Limit 0 }} LIMIT {{ .Limit }}{{ end }}
			`),
		),
	}
}

type Repository struct {
	Pool                       *pgxpool.Pool
	QueryMeasurementsStatement sqlt.PgxStatement[paperflix.MeasurementParams, []paperflix.Measurement]
}

func (r Repository) QueryMeasurements(ctx context.Context, params paperflix.MeasurementParams) ([]paperflix.Measurement, error) {
	return r.QueryMeasurementsStatement.Exec(ctx, r.Pool, params)
}
