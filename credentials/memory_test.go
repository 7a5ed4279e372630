package credentials_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/storetest"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		return credentials.NewMemoryStore()
	})
}

func TestMemoryStore_InitialPair(t *testing.T) {
	s := credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"})
	pair, err := credentials.Load(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, "a", pair.AccessToken)
	require.Equal(t, "r", pair.RefreshToken)
}
