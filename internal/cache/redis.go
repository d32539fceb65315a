package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"studygate-bot/pkg/config"
)

var (
	redisClient *redis.Client
	once        sync.Once
)

// GetRedisClient returns the shared connection used for purchase-flow
// state. Redis holds only transient wizard data here; a failed ping at
// startup is fatal because every flow handler depends on it.
func GetRedisClient() *redis.Client {
	once.Do(func() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         config.RedisAddr,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			panic(fmt.Sprintf("redis connect failed (%s): %v", config.RedisAddr, err))
		}
	})
	return redisClient
}

func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// HealthCheck is used by the API ping endpoint.
func HealthCheck(ctx context.Context) error {
	return GetRedisClient().Ping(ctx).Err()
}
