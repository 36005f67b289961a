package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedis initializes the Redis client used for leaderboard and
// search-suggestion caching. Redis is optional; when addr is empty the
// caches simply stay cold.
func InitRedis(addr, password string, database int) error {
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	redisClient = rdb
	return nil
}

// GetRedisClient returns the Redis client, or nil when caching is disabled
func GetRedisClient() *redis.Client {
	return redisClient
}
