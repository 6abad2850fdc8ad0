package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiesa2k/testeagent/internal/config"
	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/query"
)

type countingRepo struct {
	scalarCalls int
	seriesCalls int
	tableCalls  int
	err         error
}

func (r *countingRepo) Scalar(ctx context.Context, stmt query.Statement) (decimal.Decimal, error) {
	r.scalarCalls++
	if r.err != nil {
		return decimal.Zero, r.err
	}
	return decimal.RequireFromString("1234.56"), nil
}

func (r *countingRepo) Series(ctx context.Context, stmt query.Statement) ([]domain.SeriesPoint, error) {
	r.seriesCalls++
	if r.err != nil {
		return nil, r.err
	}
	return []domain.SeriesPoint{{Label: "2024-01", Value: decimal.NewFromInt(5)}}, nil
}

func (r *countingRepo) Table(ctx context.Context, stmt query.Statement, maxRows int) (*domain.Table, error) {
	r.tableCalls++
	return &domain.Table{}, nil
}

func newTestCache(t *testing.T, inner *countingRepo) (RecordsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRecordsCache(client, 30*time.Second, inner), mr
}

var stmt = query.Statement{SQL: "SELECT COUNT(*) FROM minha_tabela_principal WHERE servico_regime = ?", Args: []interface{}{"Naval"}}

func TestScalarIsCached(t *testing.T) {
	inner := &countingRepo{}
	c, mr := newTestCache(t, inner)
	ctx := context.Background()

	first, err := c.Scalar(ctx, stmt)
	require.NoError(t, err)
	second, err := c.Scalar(ctx, stmt)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.scalarCalls)
	assert.True(t, first.Equal(second))
	assert.Equal(t, "1234.56", second.String())

	key := statementKey("scalar", stmt)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Second, mr.TTL(key))
}

func TestDifferentArgsMiss(t *testing.T) {
	inner := &countingRepo{}
	c, _ := newTestCache(t, inner)
	ctx := context.Background()

	_, err := c.Scalar(ctx, stmt)
	require.NoError(t, err)
	_, err = c.Scalar(ctx, query.Statement{SQL: stmt.SQL, Args: []interface{}{"Offshore"}})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.scalarCalls)
}

func TestSeriesIsCached(t *testing.T) {
	inner := &countingRepo{}
	c, _ := newTestCache(t, inner)
	ctx := context.Background()

	_, err := c.Series(ctx, stmt)
	require.NoError(t, err)
	points, err := c.Series(ctx, stmt)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.seriesCalls)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-01", points[0].Label)
	assert.Equal(t, "5", points[0].Value.String())
}

func TestErrorsAreNotCached(t *testing.T) {
	inner := &countingRepo{err: errors.New("database is locked")}
	c, mr := newTestCache(t, inner)
	ctx := context.Background()

	_, err := c.Scalar(ctx, stmt)
	require.Error(t, err)
	_, err = c.Scalar(ctx, stmt)
	require.Error(t, err)

	assert.Equal(t, 2, inner.scalarCalls)
	assert.Empty(t, mr.Keys())
}

func TestRedisOutageFallsThrough(t *testing.T) {
	inner := &countingRepo{}
	c, mr := newTestCache(t, inner)
	mr.Close()

	value, err := c.Scalar(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", value.String())
}

func TestTableBypassesCache(t *testing.T) {
	inner := &countingRepo{}
	c, mr := newTestCache(t, inner)

	_, err := c.Table(context.Background(), stmt, 10)
	require.NoError(t, err)
	_, err = c.Table(context.Background(), stmt, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.tableCalls)
	assert.Empty(t, mr.Keys())
}

func TestInvalidateAll(t *testing.T) {
	inner := &countingRepo{}
	c, mr := newTestCache(t, inner)
	ctx := context.Background()
	require.NoError(t, mr.Set("unrelated", "keep"))

	_, err := c.Scalar(ctx, stmt)
	require.NoError(t, err)
	_, err = c.Series(ctx, stmt)
	require.NoError(t, err)

	require.NoError(t, c.InvalidateAll(ctx))

	for _, key := range mr.Keys() {
		assert.False(t, strings.HasPrefix(key, keyPrefix), key)
	}
	assert.True(t, mr.Exists("unrelated"))
}

func TestNewRecordsCache(t *testing.T) {
	inner := &countingRepo{}

	disabled, err := NewRecordsCache(config.CacheConfig{Enabled: false}, inner)
	require.NoError(t, err)
	assert.IsType(t, &noopRecordsCache{}, disabled)
	assert.NoError(t, disabled.InvalidateAll(context.Background()))

	mr := miniredis.RunT(t)
	enabled, err := NewRecordsCache(config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr()}, inner)
	require.NoError(t, err)
	assert.IsType(t, &redisRecordsCache{}, enabled)

	_, err = NewRecordsCache(config.CacheConfig{Enabled: true, RedisURL: "::not a url"}, inner)
	assert.Error(t, err)
}
