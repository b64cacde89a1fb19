package parse

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/config"
)

func fixedClock(t *testing.T) {
	config.Clock = config.FixedTimestampGenerator{Timestamp: time.Unix(1700000000, 0)}
	t.Cleanup(func() { config.Clock = config.RealTimestampGenerator{} })
}

func TestParseLabeledFormat(t *testing.T) {
	fixedClock(t)
	raw := `A1: documentary
A2: This video shows a long-form interview with extensive commentary about the subject matter throughout.
A3: Static camera, natural lighting, minimal editing, long takes with steady pacing throughout the footage.
A4: interview, talk, calm, documentary, people
A5: live-action
A6: calm and reflective
A7: adults interested in long-form interviews`

	result := Parse(raw, "openai:gpt-4o")
	require.Equal(t, "documentary", result.Genre)
	require.Contains(t, result.Reasoning, "long-form interview")
	require.Equal(t, "live-action", result.ExpressionStyle)
	require.Equal(t, []string{"interview", "talk", "calm", "documentary", "people"}, result.Tags)
	require.Equal(t, "openai:gpt-4o", result.ModelUsed)
	require.Equal(t, time.Unix(1700000000, 0), result.AnalysisDate)
}

func TestParseSectionalFallbackWhenNoLabels(t *testing.T) {
	fixedClock(t)
	raw := `documentary

This video shows a long-form interview with extensive commentary about the subject throughout the footage.

Static camera, natural lighting, minimal editing, long takes with steady pacing throughout.

interview, talk, calm, documentary

live-action

calm and reflective

adults interested in interviews`

	result := Parse(raw, "claude:claude-sonnet-4-5")
	require.Equal(t, "documentary", result.Genre)
	require.True(t, len(result.Reasoning) >= 20)
	require.Equal(t, []string{"interview", "talk", "calm", "documentary"}, result.Tags)
}

func TestParseFreeformKeywordHeuristic(t *testing.T) {
	fixedClock(t)
	raw := "장르: 다큐멘터리\n" +
		strings.Repeat("이 영상은 인터뷰 형식의 다큐멘터리 콘텐츠입니다. ", 5) + "\n" +
		strings.Repeat("조명과 구도가 안정적이고 편집이 차분합니다. ", 5)

	result := Parse(raw, "gemini:gemini-2.0-flash")
	require.NotEmpty(t, result.Genre)
	require.True(t, len(result.Reasoning) >= 20)
}

func TestParseMinimalFallbackAlwaysReturns(t *testing.T) {
	fixedClock(t)
	raw := "short"
	result := Parse(raw, "openai:gpt-4o")
	require.Equal(t, "short", result.Genre)
	require.Equal(t, "short", result.Reasoning)
}

func TestParseMinimalTruncatesTo500Chars(t *testing.T) {
	fixedClock(t)
	raw := strings.Repeat("x", 900)
	result := parseMinimal(raw)
	require.True(t, strings.HasSuffix(result.Reasoning, "..."))
	require.LessOrEqual(t, len([]rune(result.Reasoning)), 503)
}

func TestParseTagsPicksMostFrequentDelimiter(t *testing.T) {
	tags := parseTags("cats, dogs, birds, fish")
	require.Equal(t, []string{"cats", "dogs", "birds", "fish"}, tags)

	tags = parseTags("cats/dogs/birds")
	require.Equal(t, []string{"cats", "dogs", "birds"}, tags)

	tags = parseTags("cats dogs birds")
	require.Equal(t, []string{"cats", "dogs", "birds"}, tags)
}

func TestUnionTagsPreservesPlatformFirstThenDedupsAndCaps(t *testing.T) {
	platform := []string{"cars", "review"}
	parsed := []string{"automotive", "cars"}
	union := UnionTags(platform, parsed)
	require.Equal(t, []string{"cars", "review", "automotive"}, union)
}

func TestUnionTagsCapsAtTwenty(t *testing.T) {
	var platform, parsed []string
	for i := 0; i < 15; i++ {
		platform = append(platform, fmt.Sprintf("p%d", i))
	}
	for i := 0; i < 15; i++ {
		parsed = append(parsed, fmt.Sprintf("q%d", i))
	}
	union := UnionTags(platform, parsed)
	require.Len(t, union, 20)
}
