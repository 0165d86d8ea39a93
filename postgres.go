package paperflix

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/ory/dockertest"
	"github.com/ory/dockertest/docker"
)

const Schema = `
	CREATE TABLE IF NOT EXISTS measurements (
		id SERIAL PRIMARY KEY
		, figure TEXT NOT NULL
		, series TEXT NOT NULL
		, x DOUBLE PRECISION NOT NULL
		, y DOUBLE PRECISION NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_figure_series ON measurements (figure, series);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)

	return err
}

// InitializePostgres starts a throwaway postgres container with the
// measurements schema and returns its connection string.
func InitializePostgres(name string) (string, *dockertest.Resource, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", nil, err
	}

	resource, err := dockerPostgres(pool, name)
	if err != nil {
		return "", nil, err
	}

	conn := fmt.Sprintf("host=localhost port=%s user=user password=password dbname=db sslmode=disable timezone=UTC", resource.GetPort("5432/tcp"))

	db, err := pgxpool.New(context.Background(), conn)
	if err != nil {
		_ = resource.Close()

		return "", nil, err
	}

	defer db.Close()

	if err = Migrate(context.Background(), db); err != nil {
		_ = resource.Close()

		return "", nil, fmt.Errorf("migrate: %w", err)
	}

	return conn, resource, nil
}

func DockerAvailable() bool {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return false
	}

	return pool.Client.Ping() == nil
}

func dockerPostgres(pool *dockertest.Pool, name string) (*dockertest.Resource, error) {
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to Docker: %w", err)
	}

	if err := removePostgresContainer(pool, name); err != nil {
		return nil, fmt.Errorf("removing old container: %w", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       name,
		Repository: "postgres",
		Tag:        "17",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=password",
			"POSTGRES_DB=db",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, err
	}

	if err := pool.Retry(func() error {
		db, err := sql.Open("pgx", fmt.Sprintf(
			"host=localhost port=%s user=user password=password dbname=db sslmode=disable",
			resource.GetPort("5432/tcp"),
		))
		if err != nil {
			return err
		}
		defer db.Close()

		return db.Ping()
	}); err != nil {
		_ = resource.Close()

		return nil, fmt.Errorf("postgres never became ready: %w", err)
	}

	return resource, nil
}

func removePostgresContainer(pool *dockertest.Pool, name string) error {
	containers, err := pool.Client.ListContainers(docker.ListContainersOptions{All: true})
	if err != nil {
		return err
	}

	for _, c := range containers {
		if slices.Contains(c.Names, "/"+name) {
			return pool.Client.RemoveContainer(docker.RemoveContainerOptions{
				ID:    c.ID,
				Force: true,
			})
		}
	}

	return nil
}
