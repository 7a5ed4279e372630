package devserver

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "apiclient-devserver"

var ErrInvalidAccessToken = errors.New("invalid access token")

// AccessTokens mints and verifies short lived JWT access tokens.
// Revoke invalidates every token minted so far without waiting for exp.
type AccessTokens struct {
	signer     Signer
	ttl        time.Duration
	nowFunc    func() time.Time
	generation atomic.Int64
}

func NewAccessTokens(signer Signer, ttl time.Duration, now func() time.Time) *AccessTokens {
	return &AccessTokens{signer: signer, ttl: ttl, nowFunc: now}
}

// Create returns a signed access token for userID and its lifetime in seconds
func (a *AccessTokens) Create(userID string) (string, int64, error) {
	now := a.nowFunc()
	claims := jwtlib.MapClaims{
		"iss": issuer,
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
		"jti": uuid.New().String(),
		"gen": a.generation.Load(),
	}

	signed, err := a.signer.Sign(claims)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, int64(a.ttl / time.Second), nil
}

// Verify checks signature, issuer, expiry and generation and returns the subject
func (a *AccessTokens) Verify(raw string) (string, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, a.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{a.signer.GetSigningMethod().Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(a.nowFunc),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	gen, ok := claims["gen"].(float64)
	if !ok || int64(gen) != a.generation.Load() {
		return "", fmt.Errorf("%w: revoked", ErrInvalidAccessToken)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidAccessToken)
	}
	return sub, nil
}

// Revoke makes every previously issued access token fail verification
func (a *AccessTokens) Revoke() {
	a.generation.Add(1)
}
