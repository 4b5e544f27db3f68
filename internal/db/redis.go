package db

import (
	"time"

	"backend-drivemate/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when redis is not configured; callers treat that as
// "no live fan-out across instances and no redis trip store".
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
