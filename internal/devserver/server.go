// Package devserver is a small API that behaves like the servers the client
// talks to: JWT access tokens that expire quickly and single-use rotating
// refresh tokens. It backs the integration tests and cmd/devserver.
package devserver

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json"

type Server struct {
	router  *chi.Mux
	access  *AccessTokens
	refresh *RefreshTokens
	logger  zerolog.Logger

	usersLock sync.RWMutex
	users     map[string]string

	loginCalls   atomic.Int64
	refreshCalls atomic.Int64
	apiCalls     atomic.Int64
	rejected     atomic.Int64
}

type Options struct {
	SigningSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Logger          *zerolog.Logger
	NowFunc         func() time.Time
}

func New(opts Options) *Server {
	if opts.NowFunc == nil {
		opts.NowFunc = time.Now
	}
	if opts.AccessTokenTTL <= 0 {
		opts.AccessTokenTTL = 30 * time.Second
	}
	if opts.RefreshTokenTTL <= 0 {
		opts.RefreshTokenTTL = 24 * time.Hour
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := &Server{
		router:  chi.NewRouter(),
		access:  NewAccessTokens(NewHMACSigner(opts.SigningSecret), opts.AccessTokenTTL, opts.NowFunc),
		refresh: NewRefreshTokens(opts.RefreshTokenTTL, opts.NowFunc),
		logger:  logger,
		users:   make(map[string]string),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(logging.Middleware(s.logger))

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.requireAccessToken)
		r.Get("/ping", s.handlePing)
		r.Post("/echo", s.handleEcho)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddUser registers a login for /auth/login
func (s *Server) AddUser(email, password string) {
	s.usersLock.Lock()
	defer s.usersLock.Unlock()
	s.users[strings.ToLower(email)] = password
}

// ExpireAccessTokens rejects every access token issued so far
func (s *Server) ExpireAccessTokens() {
	s.access.Revoke()
}

// RevokeRefreshTokens ends every session
func (s *Server) RevokeRefreshTokens() {
	s.refresh.RevokeAll()
}

// IssuePair mints a credential pair for userID without a login call
func (s *Server) IssuePair(userID string) (access, refresh string, err error) {
	access, _, err = s.access.Create(userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.refresh.Create(userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Server) LoginCalls() int64   { return s.loginCalls.Load() }
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }
func (s *Server) APICalls() int64     { return s.apiCalls.Load() }

// Rejected counts API requests refused for a missing or invalid access token
func (s *Server) Rejected() int64 { return s.rejected.Load() }
