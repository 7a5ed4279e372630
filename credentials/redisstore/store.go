// Package redisstore keeps the credential pair in Redis so several client
// processes on one host can share a session.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Store = (*Store)(nil)

type Store struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL expires both secrets after d. Zero keeps them until cleared.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
	}
}

func New(rdb redis.UniversalClient, prefix string, options ...Option) *Store {
	if prefix == "" {
		prefix = "credentials"
	}
	s := &Store{rdb: rdb, prefix: prefix}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) GetAccess(ctx context.Context) (string, error) {
	return s.get(ctx, s.accessKey())
}

func (s *Store) SetAccess(ctx context.Context, token string) error {
	return s.set(ctx, s.accessKey(), token)
}

func (s *Store) GetRefresh(ctx context.Context) (string, error) {
	return s.get(ctx, s.refreshKey())
}

func (s *Store) SetRefresh(ctx context.Context, token string) error {
	return s.set(ctx, s.refreshKey(), token)
}

func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.accessKey(), s.refreshKey()).Err(); err != nil {
		return fmt.Errorf("redis clear credentials: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, token string) error {
	var err error
	if token == "" {
		err = s.rdb.Del(ctx, key).Err()
	} else {
		err = s.rdb.Set(ctx, key, token, s.ttl).Err()
	}
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) accessKey() string {
	return s.prefix + ":access"
}

func (s *Store) refreshKey() string {
	return s.prefix + ":refresh"
}
