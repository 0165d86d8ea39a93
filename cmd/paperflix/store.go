package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	MaxConns    = 6
	MinConns    = 1
	IdleTimeout = 2 * time.Minute
)

var errNoDSN = errors.New("no connection string: set --dsn or PAPERFLIX_DSN")

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errNoDSN
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = int32(MaxConns)
	cfg.MinConns = int32(MinConns)
	cfg.MaxConnIdleTime = IdleTimeout

	return pgxpool.NewWithConfig(ctx, cfg)
}

// openRepository connects the store selected with --store. The returned
// close func is never nil.
func openRepository(ctx context.Context) (paperflix.Repository, func(), error) {
	if dsn == "" {
		return nil, func() {}, errNoDSN
	}

	log.Debug("opening store", "store", store)

	switch store {
	case "sql":
		repo := sqlflix.NewRepository(dsn, MinConns, MaxConns, IdleTimeout)

		return repo, func() { _ = repo.DB.Close() }, nil

	case "pgx", "sqlt":
		pool, err := openPool(ctx)
		if err != nil {
			return nil, func() {}, err
		}

		if store == "sqlt" {
			return sqltflix.New(pool, sqlt.Config{}), pool.Close, nil
		}

		return pgxflix.Repository{Pool: pool}, pool.Close, nil

	case "squirrel":
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, func() {}, err
		}

		db.SetMaxOpenConns(MaxConns)
		db.SetMaxIdleConns(MinConns)
		db.SetConnMaxIdleTime(IdleTimeout)

		return squirrelflix.Repository{
			DB:     db,
			Select: squirrel.Select().PlaceholderFormat(squirrel.Dollar),
		}, func() { _ = db.Close() }, nil

	case "sqlx":
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			return nil, func() {}, err
		}

		db.SetMaxOpenConns(MaxConns)
		db.SetMaxIdleConns(MinConns)
		db.SetConnMaxIdleTime(IdleTimeout)

		return sqlxflix.Repository{DB: db}, func() { _ = db.Close() }, nil

	case "gorm":
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                 logger.Default.LogMode(logger.Silent),
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		})
		if err != nil {
			return nil, func() {}, err
		}

		sqldb, err := db.DB()
		if err != nil {
			return nil, func() {}, err
		}

		sqldb.SetMaxOpenConns(MaxConns)
		sqldb.SetMaxIdleConns(MinConns)
		sqldb.SetConnMaxIdleTime(IdleTimeout)

		return gormflix.Repository{DB: db}, func() { _ = sqldb.Close() }, nil
	}

	return nil, func() {}, fmt.Errorf("unknown store %q", store)
}
