package paperflix_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sqlt/paperflix"
	"github.com/go-sqlt/paperflix/gormflix"
	"github.com/go-sqlt/paperflix/pgxflix"
	"github.com/go-sqlt/paperflix/sqlflix"
	"github.com/go-sqlt/paperflix/sqltflix"
	"github.com/go-sqlt/paperflix/sqlxflix"
	"github.com/go-sqlt/paperflix/squirrelflix"
	"github.com/go-sqlt/sqlt"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	MaxConns    = 4
	MinConns    = 1
	IdleTimeout = 2 * time.Minute
)

type NamedRepository struct {
	Name       string
	Repository func(t *testing.T, conn string) paperflix.Repository
}

func pool(t *testing.T, conn string) *pgxpool.Pool {
	cfg := paperflix.Must(pgxpool.ParseConfig(conn))

	cfg.MaxConns = int32(MaxConns)
	cfg.MinConns = int32(MinConns)
	cfg.MaxConnIdleTime = IdleTimeout

	p := paperflix.Must(pgxpool.NewWithConfig(context.Background(), cfg))

	t.Cleanup(p.Close)

	return p
}

var repositories = []NamedRepository{
	{
		Name: "SQL",
		Repository: func(t *testing.T, conn string) paperflix.Repository {
			repo := sqlflix.NewRepository(conn, MinConns, MaxConns, IdleTimeout)

			t.Cleanup(func() { _ = repo.DB.Close() })

			return repo
		},
	},
	{
		Name: "PGX",
		Repository: func(t *testing.T, conn string) paperflix.Repository {
			return pgxflix.Repository{
				Pool: pool(t, conn),
			}
		},
	},
	{
		Name: "SQUIRREL",
		Repository: func(t *testing.T, conn string) paperflix.Repository {
			db := paperflix.Must(sql.Open("pgx", conn))

			t.Cleanup(func() { _ = db.Close() })

			return squirrelflix.Repository{
				DB:     db,
				Select: squirrel.Select().PlaceholderFormat(squirrel.Dollar),
			}
		},
	},
	{
		Name: "SQLX",
		Repository: func(t *testing.T, conn string) paperflix.Repository {
			db := paperflix.Must(sqlx.Connect("postgres", conn))

			t.Cleanup(func() { _ = db.Close() })

			return sqlxflix.Repository{
				DB: db,
			}
		},
	},
	{
		Name: "GORM",
		Repository: func(t *testing.T, conn string) paperflix.Repository {
			db := paperflix.Must(gorm.Open(postgres.Open(conn), &gorm.Config{
				Logger:                 logger.Default.LogMode(logger.Silent),
				SkipDefaultTransaction: true,
			}))

			return gormflix.Repository{
				DB: db,
			}
		},
	},
	{
		Name: "SQLT",
		Repository: func(t *testing.T, conn string) paperflix.Repository {
			return sqltflix.New(pool(t, conn), sqlt.Config{})
		},
	},
}

var measurements = []paperflix.Measurement{
	{Group: "1", X: 10, Y: 100},
	{Group: "2", X: 10, Y: 200},
	{Group: "1", X: 11, Y: 110},
	{Group: "3", X: 12, Y: 300},
	{Group: "2", X: 12, Y: 220},
}

func TestRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	if !paperflix.DockerAvailable() {
		t.Skip("docker is not reachable")
	}

	conn, resource, err := paperflix.InitializePostgres("paperflix-test")
	require.NoError(t, err)

	t.Cleanup(func() { _ = resource.Close() })

	ctx := context.Background()

	store := pgxflix.Repository{Pool: pool(t, conn)}

	n, err := store.InsertMeasurements(ctx, "throughput", measurements)
	require.NoError(t, err)
	require.EqualValues(t, len(measurements), n)

	_, err = store.InsertMeasurements(ctx, "other", measurements[:1])
	require.NoError(t, err)

	for _, r := range repositories {
		t.Run(r.Name, func(t *testing.T) {
			repo := r.Repository(t, conn)

			all, err := repo.QueryMeasurements(ctx, paperflix.MeasurementParams{Figure: "throughput"})
			require.NoError(t, err)
			assert.Equal(t, measurements, all)

			some, err := repo.QueryMeasurements(ctx, paperflix.MeasurementParams{
				Figure: "throughput",
				Groups: []string{"2", "3"},
			})
			require.NoError(t, err)
			assert.Equal(t, []paperflix.Measurement{measurements[1], measurements[3], measurements[4]}, some)

			limited, err := repo.QueryMeasurements(ctx, paperflix.MeasurementParams{Figure: "throughput", Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, measurements[:2], limited)

			none, err := repo.QueryMeasurements(ctx, paperflix.MeasurementParams{Figure: "missing"})
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}

	deleted, err := store.DeleteMeasurements(ctx, "other")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
