package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"youthgroup_backend/internals/configs"
)

// =======================
// REDIS CONNECTOR
// =======================
// ConnectRedis returns the live-attendance client. Unlike Mongo this is a
// hard requirement when set: a bad REDIS_URL should fail fast at boot rather
// than on the first check-in of the night.
func ConnectRedis(cfg *configs.AppConfig) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Println("⚠️ Redis disabled (no REDIS_URL). Live attendance will be unavailable.")
		return nil, nil
	}

	log.Println("🔌 Connecting to Redis...")
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Println("✅ Redis connected.")
	return client, nil
}
