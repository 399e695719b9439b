package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sitebuilder/internal/config"
	"sitebuilder/internal/domain"
)

const redisKeyPrefix = "sitebuilder:"

// RedisStore keeps each key as a plain string without expiry.
type RedisStore struct {
	client *redis.Client
}

var _ domain.StateStore = (*RedisStore)(nil)

func OpenRedis(ctx context.Context, cfg config.StorageConfig) (*RedisStore, error) {
	addr := cfg.DSN
	if addr == "" {
		port := cfg.Port
		if port == 0 {
			port = 6379
		}
		addr = cfg.Host + ":" + strconv.Itoa(port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     cfg.User,
		Password:     cfg.Password,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("put state %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
