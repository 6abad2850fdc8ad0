package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/chiesa2k/testeagent/internal/config"
	"github.com/chiesa2k/testeagent/internal/query"
)

const defaultMaxConcurrent = 10

// DB is the shared connection pool. Every statement holds one semaphore
// slot while it runs.
type DB struct {
	*sqlx.DB
	sem     *semaphore.Weighted
	dialect query.Dialect
}

// NewDB opens a connection pool for cfg.Driver and pings it.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite3"
	}

	db, err := sqlx.Connect(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "sqlite3" {
		// a single writer keeps in-memory databases and file locks consistent
		if strings.Contains(cfg.DSN(), ":memory:") || strings.Contains(cfg.DSN(), "mode=memory") {
			db.SetMaxOpenConns(1)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	log.Info().Str("driver", driver).Msg("database connection established")

	return Wrap(db, query.DialectFor(driver), cfg.MaxConcurrent), nil
}

// Wrap adopts an existing pool; maxConcurrent <= 0 uses the default bound.
func Wrap(db *sqlx.DB, dialect query.Dialect, maxConcurrent int64) *DB {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &DB{
		DB:      db,
		sem:     semaphore.NewWeighted(maxConcurrent),
		dialect: dialect,
	}
}

// Dialect is the SQL dialect statements for this pool must be rendered in.
func (db *DB) Dialect() query.Dialect { return db.dialect }

func (db *DB) acquire(ctx context.Context) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	return nil
}

func (db *DB) release() { db.sem.Release(1) }

// WithTx executes fn within a transaction, rolling back when it fails.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.acquire(ctx); err != nil {
		return err
	}
	defer db.release()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
