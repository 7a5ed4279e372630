package apiclient

import (
	"context"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*TokenSource)(nil)

// TokenSource hands the client's access token to code that speaks
// oauth2.TokenSource, such as oauth2.NewClient. A missing or expired JWT
// access token is renewed through the client's coordinator, so it shares the
// single in-flight renewal with Send.
type TokenSource struct {
	// ctx bounds every store read and renewal wait made by later Token calls
	ctx    context.Context
	client *Client
}

// TokenSource returns a source whose Token calls all run under ctx. Once ctx
// is done every renewal wait fails with a NetworkError.
func (c *Client) TokenSource(ctx context.Context) *TokenSource {
	return &TokenSource{ctx: ctx, client: c}
}

func (ts *TokenSource) Token() (*oauth2.Token, error) {
	access, err := ts.client.store.GetAccess(ts.ctx)
	if err != nil {
		return nil, ts.client.unreadableCredentials(ts.ctx, err)
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if exp, ok := oauthmodel.AccessTokenExpiry(access); ok {
		tok.Expiry = exp
	}
	if tok.Valid() {
		return tok, nil
	}

	renewed, err := ts.client.coordinator.RenewRejected(ts.ctx, access)
	if err != nil {
		if ts.ctx.Err() != nil {
			return nil, err
		}
		return nil, &apierrors.SessionExpiredError{Cause: err}
	}
	if renewed.Expiry.IsZero() {
		if exp, ok := oauthmodel.AccessTokenExpiry(renewed.AccessToken); ok {
			renewed.Expiry = exp
		}
	}
	return renewed, nil
}
