package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTwoTierWithoutTier2(t *testing.T) {
	tier1, err := NewTier1(10, 1024)
	require.NoError(t, err)

	tt := NewTwoTier(tier1, nil, time.Minute)
	ctx := context.Background()

	_, ok := tt.Get(ctx, "missing")
	require.False(t, ok)

	tt.Set(ctx, "k", []byte("v"), time.Minute)
	v, ok := tt.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)

	tt.Remove(ctx, "k")
	_, ok = tt.Get(ctx, "k")
	require.False(t, ok)
}
