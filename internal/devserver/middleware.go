package devserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type contextKey string

const contextKeyUserID contextKey = "user_id"

// requireAccessToken validates the Bearer access token on API routes
func (s *Server) requireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.apiCalls.Add(1)

		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			s.rejected.Add(1)
			writeJSONError(w, "unauthorized", "missing bearer token", http.StatusUnauthorized)
			return
		}

		userID, err := s.access.Verify(parts[1])
		if err != nil {
			s.rejected.Add(1)
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("access token rejected")
			writeJSONError(w, "unauthorized", "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeyUserID, userID)))
	})
}

func userFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(contextKeyUserID).(string)
	return userID
}
