package refresh

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/transport"
	"golang.org/x/oauth2"
)

// DefaultRefreshPath is where EndpointRenewer posts the refresh token
const DefaultRefreshPath = "/auth/refresh"

// Renewer performs one renewal call. It does no coordination of its own;
// Coordinator guarantees at most one call is in flight.
type Renewer interface {
	Renew(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// RenewerFunc adapts a function to the Renewer interface
type RenewerFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

func (f RenewerFunc) Renew(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return f(ctx, refreshToken)
}

var _ Renewer = (*EndpointRenewer)(nil)

// EndpointRenewer posts {"refresh_token": "..."} as JSON to the refresh
// endpoint and reads access_token (or token), refresh_token and expires_in
// from the response.
type EndpointRenewer struct {
	invoker transport.Invoker
	path    string
	nowFunc func() time.Time
}

type EndpointOption func(*EndpointRenewer)

func WithRefreshPath(path string) EndpointOption {
	return func(r *EndpointRenewer) {
		if path != "" {
			r.path = path
		}
	}
}

func WithNowFunc(now func() time.Time) EndpointOption {
	return func(r *EndpointRenewer) {
		r.nowFunc = now
	}
}

// NewEndpointRenewer uses invoker directly, never the authenticated client,
// so a rejected refresh can not recurse into another refresh.
func NewEndpointRenewer(invoker transport.Invoker, options ...EndpointOption) *EndpointRenewer {
	r := &EndpointRenewer{
		invoker: invoker,
		path:    DefaultRefreshPath,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *EndpointRenewer) Renew(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	req, err := transport.NewJSONRequest(http.MethodPost, r.path, oauthmodel.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	res, err := r.invoker.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	tr, err := oauthmodel.ParseTokenResponse(res.Body)
	if err != nil {
		return nil, err
	}
	return tr.ToToken(r.nowFunc())
}
