package oauthmodel

// RefreshRequest is the body posted to the refresh endpoint.
// Wire format: {"refresh_token": "..."}
type RefreshRequest struct {
	// RefreshToken is the long-lived secret used only to mint a new access token.
	// Behavior: single-use on servers that rotate; the response may carry a replacement.
	RefreshToken string `json:"refresh_token"`
}

// LoginRequest is the body posted to the login endpoint to obtain the first credential pair
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
