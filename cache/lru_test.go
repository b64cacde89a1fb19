package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/config"
)

func TestTier1SetGet(t *testing.T) {
	tier1, err := NewTier1(10, 1024)
	require.NoError(t, err)

	tier1.Set("k", []byte("v"), 0)
	v, ok := tier1.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

func TestTier1ExpiresEntries(t *testing.T) {
	config.Clock = config.FixedTimestampGenerator{Timestamp: time.Unix(1000, 0)}
	defer func() { config.Clock = config.RealTimestampGenerator{} }()

	tier1, err := NewTier1(10, 1024)
	require.NoError(t, err)

	tier1.Set("k", []byte("v"), time.Second)
	config.Clock = config.FixedTimestampGenerator{Timestamp: time.Unix(1002, 0)}

	_, ok := tier1.Get("k")
	require.False(t, ok)
}

func TestTier1EvictsOnByteBudget(t *testing.T) {
	tier1, err := NewTier1(100, 10)
	require.NoError(t, err)

	tier1.Set("a", []byte("0123456789"), 0)
	tier1.Set("b", []byte("0123456789"), 0)

	_, aOK := tier1.Get("a")
	_, bOK := tier1.Get("b")
	require.False(t, aOK)
	require.True(t, bOK)
}
