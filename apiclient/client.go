// Package apiclient is the authenticated HTTP client. Every request carries
// the stored access token; a request rejected with 401 triggers one shared
// renewal and is replayed once with the renewed token.
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/refresh"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/rs/zerolog"
)

// DefaultLoginPath is where Login posts the user's credentials
const DefaultLoginPath = "/auth/login"

type Client struct {
	invoker     transport.Invoker
	store       credentials.Store
	coordinator *refresh.Coordinator
	guard       *guard
	logger      zerolog.Logger

	renewer      refresh.Renewer
	renewTimeout time.Duration
	loginPath    string
	nowFunc      func() time.Time
}

type Option func(*Client)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRenewer replaces the default EndpointRenewer, which posts to
// /auth/refresh through the client's invoker.
func WithRenewer(renewer refresh.Renewer) Option {
	return func(c *Client) {
		c.renewer = renewer
	}
}

func WithRenewTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.renewTimeout = d
	}
}

func WithLoginPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.loginPath = path
		}
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

// New returns a client sending through invoker with credentials held in store.
// Each client owns its own refresh coordinator.
func New(invoker transport.Invoker, store credentials.Store, options ...Option) *Client {
	c := &Client{
		invoker:   invoker,
		store:     store,
		logger:    zerolog.Nop(),
		loginPath: DefaultLoginPath,
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.renewer == nil {
		c.renewer = refresh.NewEndpointRenewer(invoker, refresh.WithNowFunc(c.nowFunc))
	}

	c.coordinator = refresh.NewCoordinator(store, c.renewer,
		refresh.WithLogger(c.logger),
		refresh.WithRenewTimeout(c.renewTimeout),
	)
	c.guard = &guard{coordinator: c.coordinator, logger: c.logger}
	return c
}

// Coordinator exposes the refresh state for diagnostics
func (c *Client) Coordinator() *refresh.Coordinator {
	return c.coordinator
}

func (c *Client) Store() credentials.Store {
	return c.store
}

// Send performs req with the current access token. A 401 is recovered by a
// single renewal and a single replay; errors are an
// *apierrors.SessionExpiredError (credentials cleared), an
// *apierrors.HTTPError or an *apierrors.NetworkError.
func (c *Client) Send(ctx context.Context, req transport.Request) (*transport.Response, error) {
	a := attempt{req: req, lineage: req.Header.Get(transport.HeaderRequestID)}
	if a.lineage == "" {
		a.lineage = uuid.NewString()
	}

	for {
		res, used, err := c.invoke(ctx, a)
		next, err := c.guard.inspect(ctx, a, used, err)
		if next == nil {
			return res, err
		}
		a = *next
	}
}

func (c *Client) invoke(ctx context.Context, a attempt) (*transport.Response, string, error) {
	access := a.token
	if !a.retried {
		var err error
		access, err = c.store.GetAccess(ctx)
		if err != nil {
			return nil, "", c.unreadableCredentials(ctx, err)
		}
	}

	req := a.req.Clone()
	req.Header.Set(transport.HeaderRequestID, a.lineage)
	req = Authenticate(req, access)

	res, err := c.invoker.Invoke(ctx, req)
	return res, access, err
}

// unreadableCredentials maps a failed store read onto the client's errors. A
// store that cannot be read (a rotated seal key, corrupt data) ends the
// session so the next Login starts from a clean slate.
func (c *Client) unreadableCredentials(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &apierrors.NetworkError{Op: "read access token", Err: err}
	}
	err = fmt.Errorf("read access token: %w", err)
	c.logger.Warn().Err(err).Msg("stored credentials unreadable, ending session")
	c.coordinator.Expire(ctx, "")
	return &apierrors.SessionExpiredError{Cause: err}
}

func (c *Client) Get(ctx context.Context, path string) (*transport.Response, error) {
	return c.Send(ctx, transport.NewRequest(http.MethodGet, path, nil))
}

func (c *Client) Delete(ctx context.Context, path string) (*transport.Response, error) {
	return c.Send(ctx, transport.NewRequest(http.MethodDelete, path, nil))
}

func (c *Client) Post(ctx context.Context, path string, payload any) (*transport.Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, payload)
}

func (c *Client) Put(ctx context.Context, path string, payload any) (*transport.Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, payload)
}

func (c *Client) Patch(ctx context.Context, path string, payload any) (*transport.Response, error) {
	return c.sendJSON(ctx, http.MethodPatch, path, payload)
}

// DoJSON sends payload (nil for no body) and decodes the response into out
// when out is non-nil
func (c *Client) DoJSON(ctx context.Context, method, path string, payload, out any) error {
	res, err := c.sendJSON(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.DecodeJSON(out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (*transport.Response, error) {
	req, err := transport.NewJSONRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req)
}
