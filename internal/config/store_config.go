package config

import "strings"

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreBolt   StoreKind = "bolt"
	StoreRedis  StoreKind = "redis"
)

type StoreConfig interface {
	GetStoreKind() StoreKind
	GetBoltPath() string
	GetRedisAddr() string
	GetRedisKeyPrefix() string
	GetSealKey() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetStoreKind defaults to bolt so the CLI keeps its session between runs
func (Store) GetStoreKind() StoreKind {
	return StoreKind(strings.ToLower(GetEnv("CREDENTIAL_STORE", string(StoreBolt))))
}

func (Store) GetBoltPath() string {
	return GetEnv("BOLT_PATH", "./data/credentials.db")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "apiclient")
}

// GetSealKey returns the hex or base64 encoded 32 byte key used to encrypt
// stored credentials. Empty means credentials are stored as-is.
func (Store) GetSealKey() string {
	return GetEnv("CREDENTIAL_SEAL_KEY", "")
}
