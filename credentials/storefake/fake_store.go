package storefake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credentials.Store that records every call.
// OnClear, when set, runs after the pair has been wiped.
type FakeStore struct {
	pair    credentials.Pair
	events  []string
	clears  int
	OnClear func()
	GetErr  error
	lock    sync.Mutex
}

func NewFakeStore(access, refresh string) *FakeStore {
	return &FakeStore{pair: credentials.Pair{AccessToken: access, RefreshToken: refresh}}
}

func (fs *FakeStore) GetAccess(_ context.Context) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.events = append(fs.events, "get_access")
	if fs.GetErr != nil {
		return "", fs.GetErr
	}
	return fs.pair.AccessToken, nil
}

func (fs *FakeStore) SetAccess(_ context.Context, token string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.events = append(fs.events, "set_access")
	fs.pair.AccessToken = token
	return nil
}

func (fs *FakeStore) GetRefresh(_ context.Context) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.events = append(fs.events, "get_refresh")
	if fs.GetErr != nil {
		return "", fs.GetErr
	}
	return fs.pair.RefreshToken, nil
}

func (fs *FakeStore) SetRefresh(_ context.Context, token string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.events = append(fs.events, "set_refresh")
	fs.pair.RefreshToken = token
	return nil
}

func (fs *FakeStore) ClearAll(_ context.Context) error {
	fs.lock.Lock()
	fs.events = append(fs.events, "clear_all")
	fs.pair = credentials.Pair{}
	fs.clears++
	onClear := fs.OnClear
	fs.lock.Unlock()

	if onClear != nil {
		onClear()
	}
	return nil
}

// Pair returns the currently stored credentials
func (fs *FakeStore) Pair() credentials.Pair {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.pair
}

// ClearCount returns how many times ClearAll was called
func (fs *FakeStore) ClearCount() int {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.clears
}

// Events returns the ordered list of calls made against the store
func (fs *FakeStore) Events() []string {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return append([]string(nil), fs.events...)
}
