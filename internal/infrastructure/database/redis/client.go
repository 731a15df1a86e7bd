// Package redis provides the Redis-backed read-through cache that sits in
// front of the part store.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/pkg/errors"
)

// Config holds the connection and caching parameters.
type Config struct {
	Addr         string
	Password     string
	DB           int
	TTL          time.Duration
	KeyPrefix    string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

const (
	defaultKeyPrefix = "c4w:part:"
	defaultTTL       = time.Hour
)

func applyDefaults(cfg *Config) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
}

// NewClient opens a connection and verifies it with PING.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (*redis.Client, error) {
	applyDefaults(&cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.CodeCache, "failed to connect to redis").WithDetail(cfg.Addr)
	}

	log.Info("Redis client connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return rdb, nil
}

// NewPartCacheFromConfig connects and wraps the client in a PartCache.
func NewPartCacheFromConfig(ctx context.Context, cfg Config, log logging.Logger) (*PartCache, *redis.Client, error) {
	rdb, err := NewClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return NewPartCache(rdb, cfg, log), rdb, nil
}
