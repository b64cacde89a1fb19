package video

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsurePlayableSkipsRemuxForSupportedCodec(t *testing.T) {
	path, err := EnsurePlayable("in.mp4", "out.mp4", Probed{VideoCodec: "h264"})
	require.NoError(t, err)
	require.Equal(t, "in.mp4", path)
}
