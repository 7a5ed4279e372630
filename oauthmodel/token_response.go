package oauthmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"golang.org/x/oauth2"
)

const bearerTokenType = "Bearer"

// TokenResponse is the body returned by the refresh and login endpoints.
type TokenResponse struct {
	// AccessToken is the short-lived credential attached to every request.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	AccessToken *string `json:"access_token,omitempty"`

	// Token is accepted as an alias for AccessToken; some deployments use it.
	// AccessToken wins when both are present.
	Token *string `json:"token,omitempty"`

	// RefreshToken, when present, replaces the stored refresh token.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds. Optional.
	ExpiresIn *Seconds `json:"expires_in,omitempty"`

	// TokenType defaults to "Bearer" when omitted.
	TokenType string `json:"token_type,omitempty"`
}

// Seconds is a lifetime that decodes from an integer, a float or a quoted
// number. Anything else decodes as zero, meaning unknown.
type Seconds int64

func (s *Seconds) UnmarshalJSON(data []byte) error {
	*s = 0
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > math.MaxInt32 {
		return nil
	}
	*s = Seconds(f)
	return nil
}

// ParseTokenResponse decodes body and checks that an access token is present
func ParseTokenResponse(body []byte) (*TokenResponse, error) {
	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrInvalidRefreshResponse, err)
	}
	if tr.Access() == "" {
		return nil, fmt.Errorf("%w: neither access_token nor token present", apierrors.ErrInvalidRefreshResponse)
	}
	return &tr, nil
}

// Access returns the access token from either accepted key
func (tr *TokenResponse) Access() string {
	return utils.FirstNonEmpty(utils.Value(tr.AccessToken), utils.Value(tr.Token))
}

// ToToken converts the response into an oauth2.Token. When expires_in is
// absent the expiry is taken from the access token's exp claim, if it is a JWT.
func (tr *TokenResponse) ToToken(now time.Time) (*oauth2.Token, error) {
	access := tr.Access()
	if access == "" {
		return nil, fmt.Errorf("%w: neither access_token nor token present", apierrors.ErrInvalidRefreshResponse)
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: utils.Value(tr.RefreshToken),
		TokenType:    tr.TokenType,
	}
	if tok.TokenType == "" {
		tok.TokenType = bearerTokenType
	}

	if expiresIn := int64(utils.Value(tr.ExpiresIn)); expiresIn > 0 {
		tok.ExpiresIn = expiresIn
		tok.Expiry = now.Add(time.Duration(expiresIn) * time.Second)
	} else if exp, ok := AccessTokenExpiry(access); ok {
		tok.Expiry = exp
	}
	return tok, nil
}

// AccessTokenExpiry reads the exp claim of a JWT access token without
// verifying it. Opaque tokens report false.
func AccessTokenExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
