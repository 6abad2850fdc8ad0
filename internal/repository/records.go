package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/query"
)

// RecordsRepository executes read-only statements against the record table.
// Every method returns either a value or an error; empty results are zero
// values, never nil.
type RecordsRepository interface {
	Scalar(ctx context.Context, stmt query.Statement) (decimal.Decimal, error)
	Series(ctx context.Context, stmt query.Statement) ([]domain.SeriesPoint, error)
	// Table reads at most maxRows rows; maxRows <= 0 means no limit.
	Table(ctx context.Context, stmt query.Statement, maxRows int) (*domain.Table, error)
}

// DescriptionSearcher runs the keyword search statement.
type DescriptionSearcher interface {
	SearchHits(ctx context.Context, stmt query.Statement) ([]domain.SearchHit, error)
}

// Column describes one column of a table being loaded.
type Column struct {
	Name string
	Kind ColumnKind
}

type ColumnKind int

const (
	KindText ColumnKind = iota
	KindDate
	KindNumber
)

// IngestRepository replaces the record table wholesale.
type IngestRepository interface {
	ReplaceTable(ctx context.Context, table string, columns []Column, rows [][]interface{}, progress func(n int)) error
}
