package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	*sqlStore
}

type PostgresOptions struct {
	MigrationsDir string
}

func NewPostgresStore(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	d := dialect{
		name:       "postgres",
		positional: true,
		timeValue:  func(t time.Time) any { return t.UTC() },
	}
	if err := applyMigrations(db, d, migrationSource("postgres", opts.MigrationsDir)); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{sqlStore: &sqlStore{db: db, dialect: d}}, nil
}
