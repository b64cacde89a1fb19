package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/cache"
	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/provider"
	"github.com/videoscribe/analyzer/store"
)

type fakeProvider struct {
	name string
	text string
	err  error
}

func (f *fakeProvider) Name() string             { return f.name }
func (f *fakeProvider) ValidateConfig() error    { return nil }
func (f *fakeProvider) PrepareMessages(images []provider.Image, userPrompt, systemPrompt string) (any, error) {
	return nil, nil
}
func (f *fakeProvider) Call(ctx context.Context, images []provider.Image, userPrompt, systemPrompt string) (string, error) {
	return f.text, f.err
}

func newMemStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newMemCache(t *testing.T) *cache.TwoTier {
	t.Helper()
	tier1, err := cache.NewTier1(100, 10*1024*1024)
	require.NoError(t, err)
	return cache.NewTwoTier(tier1, nil, config.Tier2PromotionTTL)
}

func noopReport(string, float64, string) {}

func TestURLParseStagePopulatesContext(t *testing.T) {
	s := newURLParseStage()
	pc := &Context{RawURL: "https://www.youtube.com/watch?v=abc123def"}

	out, err := s.Run(pc, noopReport)
	require.NoError(t, err)
	require.Equal(t, "https://www.youtube.com/watch?v=abc123def", out.Video.URL)
	require.Equal(t, "abc123def", out.Video.SessionID)
}

func TestURLParseStageRejectsUnsupportedURL(t *testing.T) {
	s := newURLParseStage()
	pc := &Context{RawURL: "https://example.com/not-a-video"}

	_, err := s.Run(pc, noopReport)
	require.Error(t, err)
}

func TestCacheStageHitsFromCacheTier(t *testing.T) {
	c := newMemCache(t)
	rec := model.VideoRecord{URL: "https://vimeo.com/1", Genre: "documentary", Tags: []string{"x"}, AnalysisResult: []byte(`{}`)}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	c.Set(context.Background(), cache.Key(cache.NamespaceAnalysis, rec.URL), raw, time.Hour)

	s := newCacheStage()
	pc := &Context{Ctx: context.Background(), Store: newMemStore(t), Cache: c, Video: model.Video{URL: rec.URL}}

	out, err := s.Run(pc, noopReport)
	require.NoError(t, err)
	require.True(t, out.CacheHit)
	require.Equal(t, "documentary", out.Record.Genre)
}

func TestCacheStageHitsFromStoreAndWarmsCache(t *testing.T) {
	st := newMemStore(t)
	rec := model.VideoRecord{URL: "https://vimeo.com/2", Genre: "vlog", Tags: []string{"y"}, AnalysisResult: []byte(`{"genre":"vlog"}`)}
	_, err := st.Upsert(context.Background(), rec)
	require.NoError(t, err)

	c := newMemCache(t)
	s := newCacheStage()
	pc := &Context{Ctx: context.Background(), Store: st, Cache: c, Video: model.Video{URL: rec.URL}}

	out, err := s.Run(pc, noopReport)
	require.NoError(t, err)
	require.True(t, out.CacheHit)
	require.Equal(t, "vlog", out.Record.Genre)

	_, hit := c.Get(context.Background(), cache.Key(cache.NamespaceAnalysis, rec.URL))
	require.True(t, hit, "store hit should warm the cache")
}

func TestCacheStageMissLeavesCacheHitFalse(t *testing.T) {
	s := newCacheStage()
	pc := &Context{Ctx: context.Background(), Store: newMemStore(t), Cache: newMemCache(t), Video: model.Video{URL: "https://vimeo.com/999"}}

	out, err := s.Run(pc, noopReport)
	require.NoError(t, err)
	require.False(t, out.CacheHit)
}

func TestAnalyzeStageBuildsPromptCallsProviderAndParsesResponse(t *testing.T) {
	s := newAnalyzeStage()
	pc := &Context{
		Ctx:       context.Background(),
		Providers: []provider.Provider{&fakeProvider{name: "openai", text: "A1: documentary\nA2: " + repeat("a long enough reasoning sentence ", 4) + "\nA3: static shots\nA4: calm, interview\nA5: live-action\nA6: calm\nA7: adults"}},
		MaxImages: 5,
		Video: model.Video{
			Metadata: model.VideoMetadata{Title: "t", Tags: []string{"cars"}},
		},
	}

	out, err := s.Run(pc, noopReport)
	require.NoError(t, err)
	require.NotNil(t, out.Video.Analysis)
	require.Equal(t, "documentary", out.Video.Analysis.Genre)
	require.Contains(t, out.Video.Analysis.Tags, "cars")
}

func TestAnalyzeStagePropagatesProviderError(t *testing.T) {
	s := newAnalyzeStage()
	pc := &Context{
		Ctx:       context.Background(),
		Providers: []provider.Provider{&fakeProvider{name: "openai", err: errTest("boom")}},
		MaxImages: 5,
	}

	_, err := s.Run(pc, noopReport)
	require.Error(t, err)
}

func TestPersistStageUpsertsAndWarmsCache(t *testing.T) {
	st := newMemStore(t)
	c := newMemCache(t)
	s := newPersistStage()

	pc := &Context{
		Ctx:   context.Background(),
		Store: st,
		Cache: c,
		Video: model.Video{
			URL:      "https://vimeo.com/3",
			Metadata: model.VideoMetadata{Title: "hello"},
			Analysis: &model.ParsedAnalysis{Genre: "vlog", Tags: []string{"x"}},
		},
	}

	out, err := s.Run(pc, noopReport)
	require.NoError(t, err)
	require.NotZero(t, out.Record.ID)

	rec, err := st.GetByURL(context.Background(), pc.Video.URL)
	require.NoError(t, err)
	require.Equal(t, "vlog", rec.Genre)

	_, hit := c.Get(context.Background(), cache.Key(cache.NamespaceAnalysis, pc.Video.URL))
	require.True(t, hit, "persist should warm the cache")
}

type errTest string

func (e errTest) Error() string { return string(e) }

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
