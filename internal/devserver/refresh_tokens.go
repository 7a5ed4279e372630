package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

const refreshTokenLength = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// StoredRefreshToken is the server side record behind an opaque refresh token
type StoredRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// RefreshTokens issues single-use refresh tokens. Rotate consumes the
// presented token, so a second renewal with the same token is rejected.
type RefreshTokens struct {
	ttl     time.Duration
	nowFunc func() time.Time

	lock    sync.Mutex
	tokens  map[string]*StoredRefreshToken
	userIDs map[string]string
}

func NewRefreshTokens(ttl time.Duration, now func() time.Time) *RefreshTokens {
	return &RefreshTokens{
		ttl:     ttl,
		nowFunc: now,
		tokens:  make(map[string]*StoredRefreshToken),
		userIDs: make(map[string]string),
	}
}

// Create issues a refresh token for userID, replacing any the user already has
func (m *RefreshTokens) Create(userID string) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	m.lock.Lock()
	defer m.lock.Unlock()
	if existing, ok := m.userIDs[userID]; ok {
		delete(m.tokens, existing)
	}
	m.tokens[token] = &StoredRefreshToken{Token: token, UserID: userID, Iat: m.nowFunc()}
	m.userIDs[userID] = token
	return token, nil
}

// Rotate consumes token and returns the user it was issued to
func (m *RefreshTokens) Rotate(token string) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rt, ok := m.tokens[token]
	if !ok {
		return "", ErrInvalidRefreshToken
	}
	delete(m.tokens, token)
	delete(m.userIDs, rt.UserID)

	if m.nowFunc().Sub(rt.Iat) > m.ttl {
		return "", fmt.Errorf("%w: expired", ErrInvalidRefreshToken)
	}
	return rt.UserID, nil
}

// RevokeAll forgets every refresh token
func (m *RefreshTokens) RevokeAll() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.tokens = make(map[string]*StoredRefreshToken)
	m.userIDs = make(map[string]string)
}
