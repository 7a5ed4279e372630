// Package storetest holds the behaviour every credentials.Store backend must share.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/require"
)

// Run exercises newStore against the credentials.Store contract
func Run(t *testing.T, newStore func(t *testing.T) credentials.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store reports absent secrets", func(t *testing.T) {
		s := newStore(t)
		pair, err := credentials.Load(ctx, s)
		require.NoError(t, err)
		require.Equal(t, credentials.Pair{}, pair)
	})

	t.Run("set and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetAccess(ctx, "access-1"))
		require.NoError(t, s.SetRefresh(ctx, "refresh-1"))

		access, err := s.GetAccess(ctx)
		require.NoError(t, err)
		require.Equal(t, "access-1", access)

		refresh, err := s.GetRefresh(ctx)
		require.NoError(t, err)
		require.Equal(t, "refresh-1", refresh)
	})

	t.Run("last write wins", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetAccess(ctx, "access-1"))
		require.NoError(t, s.SetAccess(ctx, "access-2"))

		access, err := s.GetAccess(ctx)
		require.NoError(t, err)
		require.Equal(t, "access-2", access)
	})

	t.Run("save keeps refresh token when none returned", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, credentials.Save(ctx, s, credentials.Pair{AccessToken: "a1", RefreshToken: "r1"}))
		require.NoError(t, credentials.Save(ctx, s, credentials.Pair{AccessToken: "a2"}))

		pair, err := credentials.Load(ctx, s)
		require.NoError(t, err)
		require.Equal(t, credentials.Pair{AccessToken: "a2", RefreshToken: "r1"}, pair)
	})

	t.Run("clear all removes both secrets", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, credentials.Save(ctx, s, credentials.Pair{AccessToken: "a1", RefreshToken: "r1"}))
		require.NoError(t, s.ClearAll(ctx))

		pair, err := credentials.Load(ctx, s)
		require.NoError(t, err)
		require.Equal(t, credentials.Pair{}, pair)

		// clearing an empty store is not an error
		require.NoError(t, s.ClearAll(ctx))
	})

	t.Run("concurrent use", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.SetAccess(ctx, "access")
				_, _ = s.GetAccess(ctx)
				_, _ = s.GetRefresh(ctx)
			}()
		}
		wg.Wait()

		access, err := s.GetAccess(ctx)
		require.NoError(t, err)
		require.Equal(t, "access", access)
	})
}
