// Package cache memoizes metric statements in Redis for tool calls.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chiesa2k/testeagent/internal/config"
	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/repository"
)

const (
	keyPrefix     = "marina:records:"
	scanBatchSize = 100
	defaultTTL    = time.Minute
)

// RecordsCache decorates a RecordsRepository. Cache failures never fail a
// read; they are logged and the inner repository answers.
type RecordsCache interface {
	repository.RecordsRepository
	InvalidateAll(ctx context.Context) error
}

type redisRecordsCache struct {
	inner  repository.RecordsRepository
	client *redis.Client
	ttl    time.Duration
}

type noopRecordsCache struct {
	repository.RecordsRepository
}

// NewRecordsCache connects to Redis when caching is enabled; otherwise it
// returns a pass-through.
func NewRecordsCache(cfg config.CacheConfig, inner repository.RecordsRepository) (RecordsCache, error) {
	if !cfg.Enabled {
		return NewNoopRecordsCache(inner), nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisRecordsCache(client, time.Duration(cfg.MetricTTLSeconds)*time.Second, inner), nil
}

// NewRedisRecordsCache wraps inner with an existing client. ttl <= 0 uses a
// one minute default.
func NewRedisRecordsCache(client *redis.Client, ttl time.Duration, inner repository.RecordsRepository) RecordsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisRecordsCache{inner: inner, client: client, ttl: ttl}
}

func NewNoopRecordsCache(inner repository.RecordsRepository) RecordsCache {
	return &noopRecordsCache{RecordsRepository: inner}
}

func (c *redisRecordsCache) Scalar(ctx context.Context, stmt query.Statement) (decimal.Decimal, error) {
	key := statementKey("scalar", stmt)

	var cached decimal.Decimal
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	value, err := c.inner.Scalar(ctx, stmt)
	if err != nil {
		return value, err
	}
	c.store(ctx, key, value)

	return value, nil
}

func (c *redisRecordsCache) Series(ctx context.Context, stmt query.Statement) ([]domain.SeriesPoint, error) {
	key := statementKey("series", stmt)

	var cached []domain.SeriesPoint
	if c.load(ctx, key, &cached) && cached != nil {
		return cached, nil
	}

	points, err := c.inner.Series(ctx, stmt)
	if err != nil {
		return points, err
	}
	c.store(ctx, key, points)

	return points, nil
}

// Table is never cached: it serves ad-hoc queries.
func (c *redisRecordsCache) Table(ctx context.Context, stmt query.Statement, maxRows int) (*domain.Table, error) {
	return c.inner.Table(ctx, stmt, maxRows)
}

func (c *redisRecordsCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *redisRecordsCache) load(ctx context.Context, key string, dest interface{}) bool {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("records cache get failed")
		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("records cache entry undecodable")
		return false
	}
	return true
}

func (c *redisRecordsCache) store(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("records cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("records cache set failed")
	}
}

func (n *noopRecordsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// statementKey hashes the SQL text and its bound arguments.
func statementKey(kind string, stmt query.Statement) string {
	h := sha1.New()
	h.Write([]byte(stmt.SQL))
	for _, arg := range stmt.Args {
		fmt.Fprintf(h, "|%T:%v", arg, arg)
	}
	return keyPrefix + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
