package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/stretchr/testify/require"
)

func newInvoker(t *testing.T, handler http.HandlerFunc, options ...transport.HTTPInvokerOption) *transport.HTTPInvoker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	inv, err := transport.NewHTTPInvoker(srv.URL+"/v1", options...)
	require.NoError(t, err)
	return inv
}

func TestHTTPInvoker_Success(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotContentType string
	var gotBody []byte
	inv := newInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"c-1"}`))
	})

	req, err := transport.NewJSONRequest(http.MethodPost, "/customers?page=2", map[string]string{"name": "Acme"})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer abc")

	res, err := inv.Invoke(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, "yes", res.Header.Get("X-Test"))
	require.Equal(t, "/v1/customers", gotPath)
	require.Equal(t, "page=2", gotQuery)
	require.Equal(t, "Bearer abc", gotAuth)
	require.Equal(t, "application/json", gotContentType)
	require.JSONEq(t, `{"name":"Acme"}`, string(gotBody))

	var decoded struct {
		ID string `json:"id"`
	}
	require.NoError(t, res.DecodeJSON(&decoded))
	require.Equal(t, "c-1", decoded.ID)
}

func TestHTTPInvoker_Classification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		unauthorized bool
	}{
		{name: "401 is unauthorized", status: http.StatusUnauthorized, unauthorized: true},
		{name: "403 is another http error", status: http.StatusForbidden},
		{name: "500 is another http error", status: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := newInvoker(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("nope"))
			})

			res, err := inv.Invoke(context.Background(), transport.NewRequest(http.MethodGet, "/products", nil))
			require.Nil(t, res)
			require.Error(t, err)
			require.Equal(t, tc.unauthorized, apierrors.IsUnauthorized(err))

			var httpErr *apierrors.HTTPError
			require.True(t, errors.As(err, &httpErr))
			require.Equal(t, tc.status, httpErr.StatusCode)
			require.Equal(t, "nope", string(httpErr.Body))
			require.False(t, errors.Is(err, apierrors.ErrNetwork))
		})
	}
}

func TestHTTPInvoker_NetworkErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		inv, err := transport.NewHTTPInvoker(url)
		require.NoError(t, err)

		_, err = inv.Invoke(context.Background(), transport.NewRequest(http.MethodGet, "/ping", nil))
		require.ErrorIs(t, err, apierrors.ErrNetwork)
		require.Equal(t, 0, apierrors.StatusCode(err))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		inv := newInvoker(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, transport.WithTimeout(50*time.Millisecond))
		defer close(release)

		_, err := inv.Invoke(context.Background(), transport.NewRequest(http.MethodGet, "/slow", nil))
		require.ErrorIs(t, err, apierrors.ErrNetwork)
	})

	t.Run("cancelled context", func(t *testing.T) {
		inv := newInvoker(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := inv.Invoke(ctx, transport.NewRequest(http.MethodGet, "/ping", nil))
		require.ErrorIs(t, err, apierrors.ErrNetwork)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewHTTPInvoker_Validation(t *testing.T) {
	for _, base := range []string{"", "localhost:8080", "ftp://example.com", "http://"} {
		_, err := transport.NewHTTPInvoker(base)
		require.Error(t, err, base)
	}
}

func TestRequest_Clone(t *testing.T) {
	req := transport.NewRequest(http.MethodPut, "/payroll/1", []byte(`{"a":1}`))
	req.Header.Set("X-Original", "1")

	clone := req.Clone()
	clone.Header.Set("X-Original", "2")
	clone.Body[0] = '['

	require.Equal(t, "1", req.Header.Get("X-Original"))
	require.Equal(t, byte('{'), req.Body[0])
	require.Equal(t, "PUT /payroll/1", clone.String())

	empty := transport.Request{Method: http.MethodGet, Path: "/x"}.Clone()
	require.NotNil(t, empty.Header)
	require.Nil(t, empty.Body)
}
