package config

import "time"

type ClientConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetRefreshPath() string
	GetLoginPath() string
}

type Client struct{}

var _ ClientConfig = Client{}

// GetAPIBaseURL returns the server every request path is resolved against (e.g. "https://api.example.com")
func (Client) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8080")
}

func (Client) GetRequestTimeout() time.Duration {
	return GetDuration("REQUEST_TIMEOUT", 10*time.Second)
}

func (Client) GetRefreshTimeout() time.Duration {
	return GetDuration("REFRESH_TIMEOUT", 15*time.Second)
}

func (Client) GetRefreshPath() string {
	return GetEnv("REFRESH_PATH", "/auth/refresh")
}

func (Client) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "/auth/login")
}
