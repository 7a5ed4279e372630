package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValueAndPtr(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, int64(0), utils.Value[int64](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestFirstNonEmpty(t *testing.T) {
	require.Equal(t, "", utils.FirstNonEmpty())
	require.Equal(t, "", utils.FirstNonEmpty("", ""))
	require.Equal(t, "b", utils.FirstNonEmpty("", "b", "c"))
}
