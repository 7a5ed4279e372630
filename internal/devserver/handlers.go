package devserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/rs/zerolog"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.loginCalls.Add(1)

	var req oauthmodel.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid_request", "malformed login request", http.StatusBadRequest)
		return
	}

	s.usersLock.RLock()
	password, ok := s.users[strings.ToLower(req.Email)]
	s.usersLock.RUnlock()
	if !ok || password != req.Password {
		writeJSONError(w, "invalid_grant", "invalid email or password", http.StatusUnauthorized)
		return
	}

	s.issue(w, r, strings.ToLower(req.Email))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var req oauthmodel.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeJSONError(w, "invalid_request", "refresh_token is required", http.StatusBadRequest)
		return
	}

	userID, err := s.refresh.Rotate(req.RefreshToken)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("refresh rejected")
		writeJSONError(w, "invalid_grant", err.Error(), http.StatusUnauthorized)
		return
	}

	s.issue(w, r, userID)
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request, userID string) {
	access, expiresIn, err := s.access.Create(userID)
	if err != nil {
		zerolog.Ctx(r.Context()).Err(err).Msg("failed to create access token")
		writeJSONError(w, "server_error", "failed to create access token", http.StatusInternalServerError)
		return
	}
	refresh, err := s.refresh.Create(userID)
	if err != nil {
		zerolog.Ctx(r.Context()).Err(err).Msg("failed to create refresh token")
		writeJSONError(w, "server_error", "failed to create refresh token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, oauthmodel.TokenResponse{
		AccessToken:  utils.Ptr(access),
		RefreshToken: utils.Ptr(refresh),
		ExpiresIn:    utils.Ptr(oauthmodel.Seconds(expiresIn)),
		TokenType:    "Bearer",
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"user":   userFromContext(r.Context()),
	})
}

// handleEcho returns the request body. A body of {"status": N} answers with that status.
func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, "invalid_request", "unreadable body", http.StatusBadRequest)
		return
	}

	var forced struct {
		Status int `json:"status"`
	}
	if json.Unmarshal(body, &forced) == nil && forced.Status >= http.StatusBadRequest && forced.Status != http.StatusUnauthorized {
		writeJSONError(w, "forced", http.StatusText(forced.Status), forced.Status)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
