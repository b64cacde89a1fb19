package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/model"
)

func TestBuildIncludesHeaderFieldsAndImageCount(t *testing.T) {
	v := model.Video{
		Metadata: model.VideoMetadata{
			Title:           "A great video",
			Uploader:        "creator123",
			DurationSeconds: 125,
			ViewCount:       4200,
			Tags:            []string{"funny", "cats"},
			Description:     "a short description",
		},
	}

	out := Build(v, 6)
	require.Contains(t, out, "Title: A great video")
	require.Contains(t, out, "Uploader: creator123")
	require.Contains(t, out, "2분 5초")
	require.Contains(t, out, "Views: 4200")
	require.Contains(t, out, "funny, cats")
	require.Contains(t, out, "a short description")
	require.Contains(t, out, "6 images")
}

func TestBuildOmitsZeroViewCountAndEmptyFields(t *testing.T) {
	v := model.Video{Metadata: model.VideoMetadata{Title: "x"}}
	out := Build(v, 1)
	require.NotContains(t, out, "Views:")
	require.NotContains(t, out, "Uploader:")
}

func TestBuildTruncatesDescriptionTo500Chars(t *testing.T) {
	v := model.Video{Metadata: model.VideoMetadata{Description: strings.Repeat("a", 900)}}
	out := Build(v, 1)
	idx := strings.Index(out, "Description: ")
	require.GreaterOrEqual(t, idx, 0)
	rest := out[idx+len("Description: "):]
	line := strings.SplitN(rest, "\n", 2)[0]
	require.LessOrEqual(t, len([]rune(line)), 500)
}

func TestBuildCapsPlatformTagsAtTen(t *testing.T) {
	tags := make([]string, 15)
	for i := range tags {
		tags[i] = "tag"
	}
	v := model.Video{Metadata: model.VideoMetadata{Tags: tags}}
	out := Build(v, 1)
	idx := strings.Index(out, "Platform tags: ")
	require.GreaterOrEqual(t, idx, 0)
	rest := out[idx+len("Platform tags: "):]
	line := strings.SplitN(rest, "\n", 2)[0]
	require.Equal(t, 10, len(strings.Split(line, ", ")))
}

func TestBuildListsClosedGenresAndExpressionStyles(t *testing.T) {
	out := Build(model.Video{}, 3)
	require.Contains(t, out, "documentary")
	require.Contains(t, out, "live-action")
}
