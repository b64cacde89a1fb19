package fetch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/errors"
	"github.com/videoscribe/analyzer/model"
)

func TestParseURLRecognizesYouTubeVariants(t *testing.T) {
	cases := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
	}
	for _, c := range cases {
		parsed, err := ParseURL(c)
		require.NoError(t, err, c)
		require.Equal(t, model.PlatformYouTube, parsed.Platform)
		require.Equal(t, "dQw4w9WgXcQ", parsed.VideoID)
		require.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", parsed.CanonicalURL)
	}
}

func TestParseURLRecognizesVimeoVariants(t *testing.T) {
	parsed, err := ParseURL("https://vimeo.com/76979871")
	require.NoError(t, err)
	require.Equal(t, model.PlatformVimeo, parsed.Platform)
	require.Equal(t, "76979871", parsed.VideoID)

	parsed, err = ParseURL("https://player.vimeo.com/video/76979871")
	require.NoError(t, err)
	require.Equal(t, model.PlatformVimeo, parsed.Platform)
	require.Equal(t, "76979871", parsed.VideoID)
}

func TestParseURLRejectsUnsupported(t *testing.T) {
	_, err := ParseURL("https://example.com/not-a-video")
	require.Error(t, err)
	kind, ok := errors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errors.KindUnsupportedURL, kind)
}
