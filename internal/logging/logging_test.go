package logging_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutsideDev(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("APP_NAME", "test-app")

	var buf bytes.Buffer
	logger := logging.New(config.New(), &buf)

	logger.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["message"])
	require.Equal(t, "test-app", entry["app"])
	require.Equal(t, "warn", entry["level"])
}

func TestNew_ConsoleInDev(t *testing.T) {
	t.Setenv("ENV", "DEV")
	t.Setenv("LOG_LEVEL", "bogus")

	var buf bytes.Buffer
	logger := logging.New(config.New(), &buf)
	logger.Info().Msg("hello")

	require.Contains(t, buf.String(), "hello")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestMiddleware(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	logger := logging.New(config.New(), &buf)

	h := middleware.RequestID(logging.Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "req-1", entry["request_id"])
	require.Equal(t, float64(http.StatusUnauthorized), entry["status"])
	require.Equal(t, "warn", entry["level"])
}
