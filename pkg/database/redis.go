package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection configuration for the report cache.
type RedisConfig struct {
	Host       string
	Port       int
	Password   string
	DB         int
	ClientName string
}

// DefaultRedisConfig returns defaults suitable for local development.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:       "localhost",
		Port:       6379,
		Password:   "",
		DB:         0,
		ClientName: "reviews",
	}
}

// Addr returns the Redis address string.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewRedisClient creates a Redis client for the report cache and verifies
// the connection. The client name shows up in CLIENT LIST, which helps
// attribute cache traffic when the instance is shared.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr(),
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: cfg.ClientName,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
