package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiesa2k/testeagent/internal/query"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return Wrap(sqlx.NewDb(conn, "sqlmock"), query.SQLite, 2), mock
}

func TestScalar(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecordsRepository(db)

	stmt := query.Statement{SQL: "SELECT COALESCE(SUM(valor_venda_total), 0) FROM minha_tabela_principal WHERE servico_regime = ?", Args: []interface{}{"Naval"}}
	mock.ExpectQuery(regexp.QuoteMeta(stmt.SQL)).
		WithArgs("Naval").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1234.5))

	value, err := repo.Scalar(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, "1234.5", value.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScalarNullIsZero(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(nil))

	value, err := NewRecordsRepository(db).Scalar(context.Background(), query.Statement{SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}

func TestScalarError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("no such table: minha_tabela_principal"))

	_, err := NewRecordsRepository(db).Scalar(context.Background(), query.Statement{SQL: "SELECT 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
}

func TestSeries(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("GROUP BY label").
		WillReturnRows(sqlmock.NewRows([]string{"label", "value"}).
			AddRow("2024-01", 10.5).
			AddRow("2024-02", int64(3)))

	points, err := NewRecordsRepository(db).Series(context.Background(), query.Statement{SQL: "SELECT label, value FROM t GROUP BY label"})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01", points[0].Label)
	assert.Equal(t, "10.5", points[0].Value.String())
	assert.Equal(t, "3", points[1].Value.String())
}

func TestSeriesEmptyIsNotNil(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"label", "value"}))

	points, err := NewRecordsRepository(db).Series(context.Background(), query.Statement{SQL: "SELECT label, value FROM t"})
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestTableTruncates(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"regime", "valor", "quando"}).
			AddRow([]byte("Naval"), 12.25, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).
			AddRow(nil, int64(7), "2024-02-03").
			AddRow("Offshore", 1.0, nil))

	table, err := NewRecordsRepository(db).Table(context.Background(), query.Statement{SQL: "SELECT regime, valor, quando FROM t"}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"regime", "valor", "quando"}, table.Columns)
	assert.Equal(t, [][]string{
		{"Naval", "12.25", "2024-01-02"},
		{"", "7", "2024-02-03"},
	}, table.Rows)
	assert.True(t, table.Truncated)
}

func TestSemaphoreHonorsContext(t *testing.T) {
	db, _ := newMockDB(t)
	require.NoError(t, db.sem.Acquire(context.Background(), 2))
	defer db.sem.Release(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRecordsRepository(db).Scalar(ctx, query.Statement{SQL: "SELECT 1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
