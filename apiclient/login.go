package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/transport"
	"golang.org/x/oauth2"
)

// Login exchanges email and password for a credential pair and replaces
// whatever the store held. It goes straight to the invoker: a rejected login
// is an *apierrors.HTTPError, never a renewal.
func (c *Client) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	req, err := transport.NewJSONRequest(http.MethodPost, c.loginPath, oauthmodel.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	res, err := c.invoker.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	tr, err := oauthmodel.ParseTokenResponse(res.Body)
	if err != nil {
		return nil, err
	}
	tok, err := tr.ToToken(c.nowFunc())
	if err != nil {
		return nil, err
	}

	if err := c.store.ClearAll(ctx); err != nil {
		return nil, fmt.Errorf("clear previous credentials: %w", err)
	}
	if err := credentials.Save(ctx, c.store, credentials.Pair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}); err != nil {
		return nil, err
	}

	c.logger.Info().Str("email", email).Bool("refreshable", tok.RefreshToken != "").Msg("logged in")
	return tok, nil
}

// Logout forgets the stored credentials
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.logger.Info().Msg("logged out")
	return nil
}
