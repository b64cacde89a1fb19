package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/progress"
	"github.com/videoscribe/analyzer/provider"
)

func TestDriverProcessSkipsDownstreamStagesOnCacheHit(t *testing.T) {
	st := newMemStore(t)
	rec := model.VideoRecord{
		URL:            "https://vimeo.com/555",
		Genre:          "documentary",
		Tags:           []string{"x"},
		AnalysisResult: []byte(`{"genre":"documentary"}`),
	}
	_, err := st.Upsert(context.Background(), rec)
	require.NoError(t, err)

	d := NewDriver(st, newMemCache(t), nil)

	var stages []string
	report := func(stage string, percent float64, message string) {
		stages = append(stages, stage)
	}

	_, err = d.Process(context.Background(), rec.URL, t.TempDir(), report)
	require.NoError(t, err)

	require.Contains(t, stages, "url_parser")
	require.Contains(t, stages, "cache")
	require.Contains(t, stages, "completed")
	require.NotContains(t, stages, "fetch")
	require.NotContains(t, stages, "extract")
	require.NotContains(t, stages, "analyze")
	require.NotContains(t, stages, "persist")
}

func TestDriverProcessPropagatesURLParseError(t *testing.T) {
	d := NewDriver(newMemStore(t), newMemCache(t), nil)

	_, err := d.Process(context.Background(), "not a supported url at all", t.TempDir(), noopReport)
	require.Error(t, err)
}

func TestDriverProcessRecoversPanicFromAStage(t *testing.T) {
	d := NewDriver(newMemStore(t), newMemCache(t), []provider.Provider{&fakeProvider{name: "openai", text: "x"}})
	d.stages = []Stage{panicStage{}}

	_, err := d.Process(context.Background(), "https://vimeo.com/1", t.TempDir(), noopReport)
	require.Error(t, err)
	require.Contains(t, err.Error(), "panic in pipeline driver")
}

type panicStage struct{ baseStage }

func (p panicStage) Run(ctx *Context, report progress.Func) (*Context, error) {
	panic("deliberate test panic")
}
