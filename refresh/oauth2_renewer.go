package refresh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-client/apierrors"
	"golang.org/x/oauth2"
)

var _ Renewer = (*OAuth2Renewer)(nil)

// OAuth2Renewer renews through a standard RFC 6749 token endpoint using the
// refresh_token grant (form encoded), for servers that are not the JSON
// /auth/refresh kind.
type OAuth2Renewer struct {
	config     *oauth2.Config
	httpClient *http.Client
}

type OAuth2Option func(*OAuth2Renewer)

// WithOAuth2HTTPClient sets the client used to reach the token endpoint
func WithOAuth2HTTPClient(client *http.Client) OAuth2Option {
	return func(r *OAuth2Renewer) {
		r.httpClient = client
	}
}

func NewOAuth2Renewer(config *oauth2.Config, options ...OAuth2Option) *OAuth2Renewer {
	r := &OAuth2Renewer{config: config}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// NewOIDCRenewer discovers the token endpoint of issuer and returns a renewer for it
func NewOIDCRenewer(ctx context.Context, issuer, clientID, clientSecret string, options ...OAuth2Option) (*OAuth2Renewer, error) {
	r := &OAuth2Renewer{}
	for _, opt := range options {
		opt(r)
	}
	if r.httpClient != nil {
		ctx = oidc.ClientContext(ctx, r.httpClient)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	r.config = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, oidc.ScopeOfflineAccess},
	}
	return r, nil
}

// TokenURL returns the token endpoint in use
func (r *OAuth2Renewer) TokenURL() string {
	return r.config.Endpoint.TokenURL
}

func (r *OAuth2Renewer) Renew(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}

	tok, err := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err == nil {
		return tok, nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return nil, fmt.Errorf("token refresh failed: %w", &apierrors.HTTPError{
			Method:     http.MethodPost,
			Path:       r.config.Endpoint.TokenURL,
			StatusCode: retrieveErr.Response.StatusCode,
			Body:       retrieveErr.Body,
		})
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return nil, &apierrors.NetworkError{Op: "POST " + r.config.Endpoint.TokenURL, Err: err}
	}
	return nil, fmt.Errorf("%w: %v", apierrors.ErrInvalidRefreshResponse, err)
}
