package credentials

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the credential pair in process memory
type MemoryStore struct {
	pair Pair
	lock sync.RWMutex
}

func NewMemoryStore(initial ...Pair) *MemoryStore {
	s := &MemoryStore{}
	if len(initial) > 0 {
		s.pair = initial[0]
	}
	return s
}

func (s *MemoryStore) GetAccess(_ context.Context) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.pair.AccessToken, nil
}

func (s *MemoryStore) SetAccess(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pair.AccessToken = token
	return nil
}

func (s *MemoryStore) GetRefresh(_ context.Context) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.pair.RefreshToken, nil
}

func (s *MemoryStore) SetRefresh(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pair.RefreshToken = token
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pair = Pair{}
	return nil
}
