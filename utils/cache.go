// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"medichat/config"

	"github.com/go-redis/redis/v8"
)

var (
	// ContextCacheClient is the dedicated client for session context storage.
	ContextCacheClient *redis.Client
)

// InitRedis initializes all Redis clients used by the service.
func InitRedis() {
	InitContextCache()
}

// InitContextCache initializes the Redis client backing the session context store.
func InitContextCache() {
	ContextCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisContextDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ContextCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Context Cache): %v", err)
	}
}

// GetContextCacheClient returns the Redis client for session context storage.
func GetContextCacheClient() *redis.Client {
	if ContextCacheClient == nil {
		InitContextCache()
	}
	return ContextCacheClient
}
