package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Address  string // Redis server address (host:port)
	Password string // Redis password (empty if no password)
	DB       int    // Redis database number (0-15)

	PoolSize     int
	MinIdleConns int
}

func (c Config) options() *redis.Options {
	poolSize := c.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	minIdle := c.MinIdleConns
	if minIdle <= 0 {
		minIdle = 5
	}

	return &redis.Options{
		Addr:     c.Address,
		Password: c.Password,
		DB:       c.DB,

		PoolSize:     poolSize,
		MinIdleConns: minIdle,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewClient opens a Redis client and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(cfg.options())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return client, nil
}
