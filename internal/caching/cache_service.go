package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"rentalbill/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Monthly summary caching
	GetMonthlySummary(ctx context.Context, key string) ([]*models.MonthlySummaryRow, error)
	SetMonthlySummary(ctx context.Context, key string, rows []*models.MonthlySummaryRow, ttl time.Duration) error
	InvalidateMonthlySummaries(ctx context.Context) error

	// Login throttling
	LoginFailures(ctx context.Context, username string) (int64, error)
	IncrementLoginFailure(ctx context.Context, username string, window time.Duration) (int64, error)
	ResetLoginFailures(ctx context.Context, username string) error

	// Generic string operations
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func summaryKey(key string) string {
	return "summary:monthly:" + key
}

func (s *redisCacheService) GetMonthlySummary(ctx context.Context, key string) ([]*models.MonthlySummaryRow, error) {
	data, err := s.client.Get(ctx, summaryKey(key)).Result()
	if err != nil {
		return nil, err
	}
	var rows []*models.MonthlySummaryRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("corrupt cached summary: %w", err)
	}
	return rows, nil
}

func (s *redisCacheService) SetMonthlySummary(ctx context.Context, key string, rows []*models.MonthlySummaryRow, ttl time.Duration) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, summaryKey(key), data, ttl).Err()
}

func (s *redisCacheService) InvalidateMonthlySummaries(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, summaryKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("Failed to delete cache key %s: %v", iter.Val(), err)
		}
	}
	return iter.Err()
}

func loginFailureKey(username string) string {
	return "login:failures:" + username
}

func (s *redisCacheService) LoginFailures(ctx context.Context, username string) (int64, error) {
	count, err := s.client.Get(ctx, loginFailureKey(username)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func (s *redisCacheService) IncrementLoginFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	key := loginFailureKey(username)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("Failed to set expiry on %s: %v", key, err)
		}
	}
	return count, nil
}

func (s *redisCacheService) ResetLoginFailures(ctx context.Context, username string) error {
	return s.client.Del(ctx, loginFailureKey(username)).Err()
}

func (s *redisCacheService) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *redisCacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
