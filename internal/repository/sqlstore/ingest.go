package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/chiesa2k/testeagent/internal/repository"
)

type ingestRepository struct {
	db *DB
}

func NewIngestRepository(db *DB) *ingestRepository {
	return &ingestRepository{db: db}
}

var _ repository.IngestRepository = (*ingestRepository)(nil)

// ReplaceTable drops and recreates table, then inserts rows, all in one
// transaction. progress, when set, is called with the number of rows written
// so far after each insert.
func (r *ingestRepository) ReplaceTable(ctx context.Context, table string, columns []repository.Column, rows [][]interface{}, progress func(n int)) error {
	if len(columns) == 0 {
		return fmt.Errorf("table %s needs at least one column", table)
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}

		if _, err := tx.ExecContext(ctx, r.createTableSQL(table, columns)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}

		insertSQL, err := r.insertSQL(table, columns)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			if len(row) != len(columns) {
				return fmt.Errorf("row %d has %d values, want %d", i+1, len(row), len(columns))
			}
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i+1, err)
			}
			if progress != nil {
				progress(i + 1)
			}
		}

		return nil
	})
}

func (r *ingestRepository) createTableSQL(table string, columns []repository.Column) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col.Name) + " " + r.columnType(col.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func (r *ingestRepository) insertSQL(table string, columns []repository.Column) (string, error) {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(col.Name)
	}

	sql, _, err := r.db.Dialect().StatementBuilder().
		Insert(quoteIdent(table)).
		Columns(names...).
		Values(make([]interface{}, len(columns))...).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build insert for %s: %w", table, err)
	}
	return sql, nil
}

func (r *ingestRepository) columnType(kind repository.ColumnKind) string {
	postgres := r.db.Dialect().Name == "postgres"
	switch kind {
	case repository.KindDate:
		if postgres {
			return "DATE"
		}
		return "TEXT"
	case repository.KindNumber:
		if postgres {
			return "NUMERIC"
		}
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
