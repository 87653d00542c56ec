// Package quotestore keeps each client's quote draft and note in Redis.
package quotestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/redis/go-redis/v9"
)

// Connect parses a redis:// URL and checks the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Store implements core.QuoteStore. Every save refreshes the TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps a client. ttl <= 0 keeps quotes forever.
func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl < 0 {
		ttl = 0
	}
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(client string) string {
	return fmt.Sprintf("quote:info:%s", client)
}

// LoadQuote returns the stored info, or an empty QuoteInfo if none exists.
func (s *Store) LoadQuote(ctx context.Context, client string) (core.QuoteInfo, error) {
	data, err := s.client.Get(ctx, s.key(client)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.QuoteInfo{}, nil
	}
	if err != nil {
		return core.QuoteInfo{}, fmt.Errorf("get quote: %w", err)
	}

	var info core.QuoteInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return core.QuoteInfo{}, fmt.Errorf("decode quote: %w", err)
	}
	return info, nil
}

// SaveQuote overwrites the client's info.
func (s *Store) SaveQuote(ctx context.Context, client string, info core.QuoteInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	if err := s.client.Set(ctx, s.key(client), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set quote: %w", err)
	}
	return nil
}

var _ core.QuoteStore = (*Store)(nil)
