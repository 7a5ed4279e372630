// Package refresh renews the access credential. Coordinator turns any number
// of concurrent "my credential was rejected" events into a single renewal
// call whose outcome is broadcast to every waiting caller.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const defaultRenewTimeout = 15 * time.Second

type State int

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type outcome struct {
	token *oauth2.Token
	err   error
}

// Coordinator owns the refresh state and the waiter queue for one client.
// Invariants:
//   - at most one renewal is in flight
//   - every waiter queued while Refreshing receives exactly one outcome
//   - on failure the store is cleared before any waiter is released
type Coordinator struct {
	store   credentials.Store
	renewer Renewer
	logger  zerolog.Logger
	timeout time.Duration

	mu       sync.Mutex
	state    State
	waiters  []chan outcome
	renewals int

	// finished counts completed renewals; issued is the access token the
	// last one produced, empty after a failure
	finished int
	issued   string
}

type Option func(*Coordinator)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithRenewTimeout bounds the shared renewal call. It is independent of any
// caller's context.
func WithRenewTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewCoordinator(store credentials.Store, renewer Renewer, options ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		renewer: renewer,
		logger:  zerolog.Nop(),
		timeout: defaultRenewTimeout,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// RequestRefresh returns a freshly renewed access token. Concurrent callers
// share a single renewal call.
func (c *Coordinator) RequestRefresh(ctx context.Context) (*oauth2.Token, error) {
	return c.RenewRejected(ctx, "")
}

// RenewRejected is RequestRefresh for a caller whose request was rejected
// while carrying the access token rejected. If no renewal is in flight and
// the store already holds a different access token, that expiry event has
// been handled and the stored token is returned without a new renewal.
func (c *Coordinator) RenewRejected(ctx context.Context, rejected string) (*oauth2.Token, error) {
	var (
		seen    = c.finishedRenewals()
		current string
	)
	if rejected != "" {
		current = c.peekAccess(ctx)
	}

	c.mu.Lock()
	if c.state == Idle && rejected != "" {
		if fresh := c.superseding(seen, current, rejected); fresh != "" {
			c.mu.Unlock()
			return &oauth2.Token{AccessToken: fresh, TokenType: "Bearer"}, nil
		}
	}

	w := make(chan outcome, 1)
	c.waiters = append(c.waiters, w)
	start := c.state == Idle
	if start {
		c.state = Refreshing
		c.renewals++
	}
	queued := len(c.waiters)
	c.mu.Unlock()

	if start {
		go c.renew(context.WithoutCancel(ctx))
	} else {
		c.logger.Debug().Int("waiters", queued).Msg("joined in-flight token refresh")
	}

	select {
	case out := <-w:
		return out.token, out.err
	case <-ctx.Done():
		// The entry stays queued; its buffered channel absorbs the outcome.
		return nil, &apierrors.NetworkError{Op: "await token refresh", Err: ctx.Err()}
	}
}

// Expire ends the session after the access token rejected was refused on a
// replay. The store is left alone while a renewal is in flight or once a
// later renewal has replaced rejected; Expire reports whether it cleared.
func (c *Coordinator) Expire(ctx context.Context, rejected string) bool {
	seen := c.finishedRenewals()
	current := c.peekAccess(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Refreshing || c.finished != seen {
		return false
	}
	if current != "" && current != rejected {
		return false
	}

	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	if err := c.store.ClearAll(clearCtx); err != nil {
		c.logger.Err(err).Msg("failed to clear credentials")
	}
	c.logger.Warn().Msg("session expired, credentials cleared")
	return true
}

// State reports whether a renewal is in flight
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Waiting returns the number of callers queued on the in-flight renewal
func (c *Coordinator) Waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// Renewals returns how many renewal calls have been started
func (c *Coordinator) Renewals() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renewals
}

func (c *Coordinator) renew(parent context.Context) {
	started := time.Now()
	c.logger.Info().Msg("attempting access token refresh")

	ctx, cancel := context.WithTimeout(parent, c.timeout)
	tok, err := c.renewOnce(ctx)
	cancel()

	if err != nil {
		// Clear before unblocking: nobody observes the failure while the old
		// credentials are still readable.
		clearCtx, cancelClear := context.WithTimeout(parent, c.timeout)
		if clearErr := c.store.ClearAll(clearCtx); clearErr != nil {
			c.logger.Err(clearErr).Msg("failed to clear credentials after refresh failure")
		}
		cancelClear()
		c.logger.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("access token refresh failed")
	} else {
		c.logger.Info().Dur("elapsed", time.Since(started)).Msg("access token refresh successful")
	}

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.state = Idle
	c.finished++
	c.issued = ""
	if err == nil {
		c.issued = tok.AccessToken
	}
	for _, w := range waiters {
		w <- outcome{token: copyToken(tok), err: err}
	}
	c.mu.Unlock()

	c.logger.Debug().Int("waiters", len(waiters)).Msg("token refresh outcome broadcast")
}

func (c *Coordinator) renewOnce(ctx context.Context) (tok *oauth2.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			tok, err = nil, fmt.Errorf("token refresh panicked: %v", r)
		}
	}()

	refreshToken, err := c.store.GetRefresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("read refresh token: %w", err)
	}
	if refreshToken == "" {
		return nil, apierrors.ErrMissingRefreshToken
	}

	tok, err = c.renewer.Renew(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", apierrors.ErrInvalidRefreshResponse)
	}

	if err := credentials.Save(ctx, c.store, credentials.Pair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}); err != nil {
		return nil, fmt.Errorf("store renewed credentials: %w", err)
	}
	return tok, nil
}

func (c *Coordinator) finishedRenewals() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

// peekAccess reads the stored access token outside the lock. An unreadable
// store reads as empty.
func (c *Coordinator) peekAccess(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	access, err := c.store.GetAccess(ctx)
	if err != nil {
		return ""
	}
	return access
}

// superseding returns a token newer than rejected, if one exists. seen and
// current were read before the lock; a renewal finishing in between makes
// current stale, so the renewal's own token is used instead. Requires c.mu.
func (c *Coordinator) superseding(seen int, current, rejected string) string {
	if c.finished != seen {
		if c.issued != rejected {
			return c.issued
		}
		return ""
	}
	if current != rejected {
		return current
	}
	return ""
}

func copyToken(tok *oauth2.Token) *oauth2.Token {
	if tok == nil {
		return nil
	}
	cp := *tok
	return &cp
}
