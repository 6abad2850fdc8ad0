package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/repository"
)

type recordsRepository struct {
	db *DB
}

// NewRecordsRepository returns the read-only accessor over db.
func NewRecordsRepository(db *DB) *recordsRepository {
	return &recordsRepository{db: db}
}

var (
	_ repository.RecordsRepository   = (*recordsRepository)(nil)
	_ repository.DescriptionSearcher = (*recordsRepository)(nil)
)

func (r *recordsRepository) Scalar(ctx context.Context, stmt query.Statement) (decimal.Decimal, error) {
	if err := r.db.acquire(ctx); err != nil {
		return decimal.Zero, err
	}
	defer r.db.release()

	var value decimal.NullDecimal
	if err := r.db.QueryRowxContext(ctx, stmt.SQL, stmt.Args...).Scan(&value); err != nil {
		return decimal.Zero, fmt.Errorf("failed to run scalar query: %w", err)
	}
	if !value.Valid {
		return decimal.Zero, nil
	}

	return value.Decimal, nil
}

func (r *recordsRepository) Series(ctx context.Context, stmt query.Statement) ([]domain.SeriesPoint, error) {
	if err := r.db.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.release()

	points := []domain.SeriesPoint{}
	if err := r.db.SelectContext(ctx, &points, stmt.SQL, stmt.Args...); err != nil {
		return nil, fmt.Errorf("failed to run grouped query: %w", err)
	}

	return points, nil
}

func (r *recordsRepository) SearchHits(ctx context.Context, stmt query.Statement) ([]domain.SearchHit, error) {
	if err := r.db.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.release()

	hits := []domain.SearchHit{}
	if err := r.db.SelectContext(ctx, &hits, stmt.SQL, stmt.Args...); err != nil {
		return nil, fmt.Errorf("failed to run search query: %w", err)
	}

	return hits, nil
}

func (r *recordsRepository) Table(ctx context.Context, stmt query.Statement, maxRows int) (*domain.Table, error) {
	if err := r.db.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.release()

	rows, err := r.db.QueryxContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	table := &domain.Table{Columns: columns, Rows: [][]string{}}
	for rows.Next() {
		if maxRows > 0 && len(table.Rows) == maxRows {
			table.Truncated = true
			break
		}

		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cellText(v)
		}
		table.Rows = append(table.Rows, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return table, nil
}

func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format(domain.DateLayout)
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
