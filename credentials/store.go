package credentials

import (
	"context"

	"github.com/jrsteele09/go-auth-client/apierrors"
)

// Pair is the credential pair held by a Store. An empty string means the
// secret is absent.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Store persists the access and refresh secrets. It holds no logic of its own
// beyond persistence and must be safe for concurrent use.
type Store interface {
	GetAccess(ctx context.Context) (string, error)
	SetAccess(ctx context.Context, token string) error
	GetRefresh(ctx context.Context) (string, error)
	SetRefresh(ctx context.Context, token string) error
	ClearAll(ctx context.Context) error
}

// Load reads both secrets from the store
func Load(ctx context.Context, s Store) (Pair, error) {
	access, err := s.GetAccess(ctx)
	if err != nil {
		return Pair{}, apierrors.Wrapf(err, "read access token")
	}
	refresh, err := s.GetRefresh(ctx)
	if err != nil {
		return Pair{}, apierrors.Wrapf(err, "read refresh token")
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Save writes the access token and, when present, the refresh token.
// An empty refresh token leaves the stored one untouched.
func Save(ctx context.Context, s Store, p Pair) error {
	if err := s.SetAccess(ctx, p.AccessToken); err != nil {
		return apierrors.Wrapf(err, "write access token")
	}
	if p.RefreshToken == "" {
		return nil
	}
	return apierrors.Wrapf(s.SetRefresh(ctx, p.RefreshToken), "write refresh token")
}
