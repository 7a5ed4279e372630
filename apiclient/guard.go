package apiclient

import (
	"context"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/refresh"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/rs/zerolog"
)

// attempt is one send of a request lineage. A retry is a new value with
// retried set; the first attempt is never modified.
type attempt struct {
	req     transport.Request
	lineage string
	retried bool

	// token overrides the stored access token, set on the retry to the
	// token the renewal produced
	token string
}

func (a attempt) retry(accessToken string) attempt {
	return attempt{
		req:     a.req,
		lineage: a.lineage,
		retried: true,
		token:   accessToken,
	}
}

// guard decides what happens after an attempt completes
type guard struct {
	coordinator *refresh.Coordinator
	logger      zerolog.Logger
}

// inspect returns the retry to send, or nil and the final error for the
// lineage. used is the access token the attempt carried.
func (g *guard) inspect(ctx context.Context, a attempt, used string, err error) (*attempt, error) {
	if err == nil {
		return nil, nil
	}
	if !apierrors.IsUnauthorized(err) {
		return nil, err
	}

	if a.retried {
		g.logger.Warn().Str("request_id", a.lineage).Str("request", a.req.String()).Msg("renewed credential rejected, ending session")
		g.coordinator.Expire(ctx, used)
		return nil, &apierrors.SessionExpiredError{Cause: err}
	}

	tok, renewErr := g.coordinator.RenewRejected(ctx, used)
	if renewErr != nil {
		if ctx.Err() != nil {
			// caller gave up waiting; the renewal carries on for everyone else
			return nil, renewErr
		}
		// the coordinator has already cleared the store
		return nil, &apierrors.SessionExpiredError{Cause: renewErr}
	}

	g.logger.Debug().Str("request_id", a.lineage).Str("request", a.req.String()).Msg("replaying request with renewed access token")
	next := a.retry(tok.AccessToken)
	return &next, nil
}
