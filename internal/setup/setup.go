// Package setup builds the client and its credential store from configuration
package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/boltstore"
	"github.com/jrsteele09/go-auth-client/credentials/redisstore"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/refresh"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CloseFunc releases whatever backs a store
type CloseFunc func() error

func noClose() error { return nil }

// NewStore opens the configured credential store, sealed when a seal key is set
func NewStore(ctx context.Context, cfg config.StoreConfig) (credentials.Store, CloseFunc, error) {
	var (
		store      credentials.Store
		closeStore CloseFunc = noClose
	)

	switch kind := cfg.GetStoreKind(); kind {
	case config.StoreMemory:
		store = credentials.NewMemoryStore()
	case config.StoreBolt:
		path := cfg.GetBoltPath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create credentials folder: %w", err)
		}
		bs, err := boltstore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		store, closeStore = bs, bs.Close
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.GetRedisAddr(), err)
		}
		store, closeStore = redisstore.New(rdb, cfg.GetRedisKeyPrefix()), rdb.Close
	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", kind)
	}

	if encoded := cfg.GetSealKey(); encoded != "" {
		key, err := credentials.ParseSealKey(encoded)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		sealed, err := credentials.NewSealedStore(store, key)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		store = sealed
	}
	return store, closeStore, nil
}

// NewClient returns a client for the configured API backed by store
func NewClient(cfg config.ClientConfig, store credentials.Store, logger zerolog.Logger) (*apiclient.Client, error) {
	invoker, err := transport.NewHTTPInvoker(cfg.GetAPIBaseURL(), transport.WithTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		return nil, err
	}

	return apiclient.New(invoker, store,
		apiclient.WithLogger(logger),
		apiclient.WithRenewer(refresh.NewEndpointRenewer(invoker, refresh.WithRefreshPath(cfg.GetRefreshPath()))),
		apiclient.WithRenewTimeout(cfg.GetRefreshTimeout()),
		apiclient.WithLoginPath(cfg.GetLoginPath()),
	), nil
}
