package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"job_tracker/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// SetupRedis connects to Redis and verifies the connection with a ping.
func SetupRedis(ctx context.Context, redisCfg *config.RedisConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(redisCfg.Host, redisCfg.Port)

	dbNum, err := strconv.Atoi(redisCfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis DB number %q: %w", redisCfg.RedisDB, err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: redisCfg.RedisPassword,
		DB:       dbNum,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to Redis at %s: %w", addr, err)
	}

	logrus.WithField("addr", addr).Info("Redis connection established successfully")
	return rdb, nil
}
