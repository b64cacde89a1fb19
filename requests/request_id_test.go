package requests

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIDIsHex32AndUnique(t *testing.T) {
	a := NewID()
	b := NewID()
	require.Len(t, a, 32)
	require.Len(t, b, 32)
	require.NotEqual(t, a, b)
}
