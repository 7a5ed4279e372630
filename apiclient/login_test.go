package apiclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/storefake"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/stretchr/testify/require"
)

func loginInvoker(status int, body string, got *transport.Request) transport.InvokerFunc {
	return func(ctx context.Context, req transport.Request) (*transport.Response, error) {
		*got = req
		if status >= http.StatusBadRequest {
			return nil, &apierrors.HTTPError{Method: req.Method, Path: req.Path, StatusCode: status, Body: []byte(body)}
		}
		return &transport.Response{StatusCode: status, Body: []byte(body)}, nil
	}
}

func TestClient_Login(t *testing.T) {
	t.Run("stores the issued pair", func(t *testing.T) {
		var got transport.Request
		store := storefake.NewFakeStore("old-access", "old-refresh")
		c := apiclient.New(loginInvoker(http.StatusOK, `{"access_token":"a1","refresh_token":"r1","expires_in":60}`, &got), store)

		tok, err := c.Login(context.Background(), "jane@example.com", "pa55")
		require.NoError(t, err)
		require.Equal(t, "a1", tok.AccessToken)

		require.Equal(t, apiclient.DefaultLoginPath, got.Path)
		require.JSONEq(t, `{"email":"jane@example.com","password":"pa55"}`, string(got.Body))
		require.Empty(t, got.Header.Get(transport.HeaderAuthorization))
		require.Equal(t, credentials.Pair{AccessToken: "a1", RefreshToken: "r1"}, store.Pair())
	})

	t.Run("login without refresh token drops the old one", func(t *testing.T) {
		var got transport.Request
		store := storefake.NewFakeStore("old-access", "old-refresh")
		c := apiclient.New(loginInvoker(http.StatusOK, `{"token":"a1"}`, &got), store, apiclient.WithLoginPath("/session"))

		_, err := c.Login(context.Background(), "jane@example.com", "pa55")
		require.NoError(t, err)
		require.Equal(t, "/session", got.Path)
		require.Equal(t, credentials.Pair{AccessToken: "a1"}, store.Pair())
	})

	t.Run("rejected login leaves the store alone", func(t *testing.T) {
		var got transport.Request
		store := storefake.NewFakeStore("old-access", "old-refresh")
		c := apiclient.New(loginInvoker(http.StatusUnauthorized, `{"error":"bad credentials"}`, &got), store)

		_, err := c.Login(context.Background(), "jane@example.com", "wrong")
		require.Equal(t, http.StatusUnauthorized, apierrors.StatusCode(err))
		require.NotErrorIs(t, err, apierrors.ErrSessionExpired)
		require.Equal(t, 0, store.ClearCount())
		require.Equal(t, int(0), c.Coordinator().Renewals())
	})
}

func TestClient_Logout(t *testing.T) {
	store := storefake.NewFakeStore("a1", "r1")
	c := apiclient.New(transport.InvokerFunc(func(ctx context.Context, req transport.Request) (*transport.Response, error) {
		return nil, nil
	}), store)

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, credentials.Pair{}, store.Pair())
}
