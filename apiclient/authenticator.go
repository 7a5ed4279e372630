package apiclient

import (
	"github.com/jrsteele09/go-auth-client/transport"
)

const bearerPrefix = "Bearer "

// Authenticate returns a copy of req carrying the access token as a bearer
// credential. With no token the request is returned as-is and goes out
// unauthenticated.
func Authenticate(req transport.Request, accessToken string) transport.Request {
	if accessToken == "" {
		return req
	}
	stamped := req.Clone()
	stamped.Header.Set(transport.HeaderAuthorization, bearerPrefix+accessToken)
	return stamped
}
