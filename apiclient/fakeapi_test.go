package apiclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials/storefake"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/stretchr/testify/require"
)

// fakeAPI accepts only the current access token on /api/* and rotates the
// pair on /auth/refresh
type fakeAPI struct {
	mu            sync.Mutex
	validAccess   string
	validRefresh  string
	nextAccess    string
	nextRefresh   string
	alwaysReject  bool
	refreshStatus int
	holdRefresh   int32
	seen          []seenRequest

	refreshCalls atomic.Int32
	apiCalls     atomic.Int32
	rejected     atomic.Int32
}

type seenRequest struct {
	path          string
	authorization string
	requestID     string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	return &fakeAPI{
		validAccess:  "access-1",
		validRefresh: "refresh-1",
		nextAccess:   "access-2",
		nextRefresh:  "refresh-2",
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/auth/refresh":
		f.refresh(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/"):
		f.api(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) refresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)

	// hold the renewal until enough requests have been rejected
	if hold := f.holdRefresh; hold > 0 {
		deadline := time.Now().Add(2 * time.Second)
		for f.rejected.Load() < hold && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshStatus != 0 {
		w.WriteHeader(f.refreshStatus)
		return
	}
	if body.RefreshToken != f.validRefresh {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.validAccess, f.validRefresh = f.nextAccess, f.nextRefresh

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  f.nextAccess,
		"refresh_token": f.nextRefresh,
		"expires_in":    300,
	})
}

func (f *fakeAPI) api(w http.ResponseWriter, r *http.Request) {
	f.apiCalls.Add(1)

	f.mu.Lock()
	f.seen = append(f.seen, seenRequest{
		path:          r.URL.Path,
		authorization: r.Header.Get("Authorization"),
		requestID:     r.Header.Get("X-Request-ID"),
	})
	ok := !f.alwaysReject && r.Header.Get("Authorization") == "Bearer "+f.validAccess
	f.mu.Unlock()

	if !ok {
		f.rejected.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
		return
	}
	if r.URL.Path == "/api/fail" {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
}

func (f *fakeAPI) requests() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seenRequest(nil), f.seen...)
}

// newTestClient starts the fake API and returns a client whose store holds access/refresh
func newTestClient(t *testing.T, api *fakeAPI, access, refresh string, options ...apiclient.Option) (*apiclient.Client, *storefake.FakeStore) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	invoker, err := transport.NewHTTPInvoker(srv.URL, transport.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	store := storefake.NewFakeStore(access, refresh)
	return apiclient.New(invoker, store, options...), store
}
