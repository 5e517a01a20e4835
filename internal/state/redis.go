package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/optionwatch/optionwatch/internal/config"
	"github.com/optionwatch/optionwatch/internal/models"
)

const keyPrefix = "alert:"

// RedisStore persists alert records in Redis with a TTL so session records
// expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedis connects to Redis and verifies the connection. An unreachable or
// unauthorized backend is a configuration problem and fails the whole pass,
// unlike per-ticker command errors which are transient.
func NewRedis(ctx context.Context, cfg config.StateConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("alert state backend unavailable at %s: %w", cfg.RedisAddr, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &RedisStore{client: client, ttl: ttl, now: time.Now}, nil
}

// Get fetches the alert record for the ticker's current session, or nil when
// the ticker has not alerted this session.
func (s *RedisStore) Get(ctx context.Context, ticker string, prevClose float64) (*models.AlertRecord, error) {
	key := keyPrefix + CompositeKey(ticker, prevClose)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read alert state for %s: %w", ticker, err)
	}

	var record models.AlertRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt alert state for %s: %w", ticker, err)
	}
	return &record, nil
}

// Put writes the alert record for the ticker's current session, refreshing
// the expiry on every update.
func (s *RedisStore) Put(ctx context.Context, ticker string, percentChange, prevClose float64, alertCount int) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	record := models.AlertRecord{
		Ticker:             ticker,
		SessionKey:         SessionKey(prevClose),
		PrevClose:          prevClose,
		LastAlertedPercent: percentChange,
		AlertCount:         alertCount,
		Timestamp:          s.now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode alert state for %s: %w", ticker, err)
	}

	key := keyPrefix + CompositeKey(ticker, prevClose)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write alert state for %s: %w", ticker, err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
