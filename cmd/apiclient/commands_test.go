package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/internal/devserver"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	defer a.close()

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_SessionLifecycle(t *testing.T) {
	dev := devserver.New(devserver.Options{SigningSecret: "cli", AccessTokenTTL: time.Minute})
	dev.AddUser("jane@example.com", "pa55")
	srv := httptest.NewServer(dev)
	t.Cleanup(srv.Close)

	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("CREDENTIAL_STORE", "bolt")
	t.Setenv("BOLT_PATH", filepath.Join(t.TempDir(), "creds.db"))
	t.Setenv("CREDENTIAL_SEAL_KEY", "")
	envFile := filepath.Join(t.TempDir(), "none.env")

	out, err := execute(t, "--env-file", envFile, "login", "-q", "--email", "jane@example.com", "--password", "pa55")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as jane@example.com")

	// credentials survive between invocations, and an expired token is renewed
	dev.ExpireAccessTokens()
	out, err = execute(t, "--env-file", envFile, "send", "GET", "/api/ping")
	require.NoError(t, err)
	require.Contains(t, out, `"status": "ok"`)
	require.Equal(t, int64(1), dev.RefreshCalls())

	out, err = execute(t, "--env-file", envFile, "send", "post", "/api/echo", "-d", `{"a":1}`, "-H", "X-Trace: abc")
	require.NoError(t, err)
	require.Contains(t, out, `"a": 1`)

	out, err = execute(t, "--env-file", envFile, "token", "show")
	require.NoError(t, err)
	require.Contains(t, out, "(valid)")

	out, err = execute(t, "--env-file", envFile, "token", "clear")
	require.NoError(t, err)
	require.Contains(t, out, "Credentials cleared")

	_, err = execute(t, "--env-file", envFile, "send", "GET", "/api/ping")
	require.ErrorIs(t, err, apierrors.ErrSessionExpired)
}

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest("patch", "/api/items/1", `{"qty":2}`, []string{"X-One: 1", "X-One: 2"})
	require.NoError(t, err)
	require.Equal(t, "PATCH", req.Method)
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	require.Equal(t, []string{"1", "2"}, req.Header.Values("X-One"))

	_, err = buildRequest("POST", "/api", `{not json`, nil)
	require.ErrorContains(t, err, "valid JSON")

	_, err = buildRequest("GET", "/api", "", []string{"no-colon"})
	require.ErrorContains(t, err, "invalid header")
}

func TestMask(t *testing.T) {
	require.Equal(t, "(none)", mask(""))
	require.Equal(t, "*****", mask("short"))
	require.Equal(t, "abcdef...wxyz", mask("abcdefghijklmnopqrstuvwxyz"))
}

func TestPromptLine(t *testing.T) {
	var out bytes.Buffer
	v, err := promptLine(bytes.NewBufferString("\n  jane@example.com \n"), &out, "Email: ")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", v)
	require.Contains(t, out.String(), "cannot be empty")
}
