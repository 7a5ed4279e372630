package config

import (
	"fmt"
	"time"
)

type DevServerConfig interface {
	GetDevPort() string
	GetDevAccessTokenTTL() time.Duration
	GetDevRefreshTokenTTL() time.Duration
	GetDevSigningSecret() string
}

type DevServer struct{}

var _ DevServerConfig = DevServer{}

func (DevServer) GetDevPort() string {
	port := GetEnv("DEV_PORT", "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetDevAccessTokenTTL is short by default so renewals are easy to observe
func (DevServer) GetDevAccessTokenTTL() time.Duration {
	return GetDuration("DEV_ACCESS_TTL", 30*time.Second)
}

func (DevServer) GetDevRefreshTokenTTL() time.Duration {
	return GetDuration("DEV_REFRESH_TTL", 24*time.Hour)
}

func (DevServer) GetDevSigningSecret() string {
	return GetEnv("DEV_SIGNING_SECRET", "dev-signing-secret-change-me")
}
