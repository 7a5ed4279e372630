package config

import (
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	StoreConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	IsDev() bool
}

type mainConfig struct {
	EnvVars
	Client
	Store
	DevServer
}

// New returns the environment backed configuration. Call LoadDotEnv first
// to pick up values from .env files.
func New() Config {
	return mainConfig{}
}

// LoadDotEnv loads the given .env files (".env" when none are given) into the
// process environment. Missing files are ignored and variables already set
// in the environment win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}
