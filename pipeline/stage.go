package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/videoscribe/analyzer/cache"
	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/fetch"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/parse"
	"github.com/videoscribe/analyzer/progress"
	"github.com/videoscribe/analyzer/prompt"
	"github.com/videoscribe/analyzer/provider"
	"github.com/videoscribe/analyzer/scenes"
	"github.com/videoscribe/analyzer/store"
)

// Context carries one run's mutable state through the stage chain,
// plus the shared, read-only dependencies every stage may need. It
// takes the place of the upstream project's *JobInfo, generalized from
// one hardcoded upload-job shape to whatever a stage wants to stash on
// it between steps.
type Context struct {
	Ctx        context.Context
	RawURL     string
	SessionDir string

	Store     *store.Store
	Cache     *cache.TwoTier
	Providers []provider.Provider

	VideoQuality  config.VideoQuality
	ImageQuality  config.ImageQuality
	MaxImages     int
	SceneDefaults scenes.Options

	Parsed   fetch.Parsed
	Video    model.Video
	Record   model.VideoRecord
	CacheHit bool
}

// Stage is one named step of the pipeline. CanSkip reports whether Run
// may be bypassed entirely for this context (stage emits a no-op
// "complete" tick instead); only stages 3-6 (fetch, extract, analyze,
// persist) ever return true.
type Stage interface {
	Name() string
	CanSkip(ctx *Context) bool
	Run(ctx *Context, report progress.Func) (*Context, error)
}

type baseStage struct{ name string }

func (b baseStage) Name() string          { return b.name }
func (b baseStage) CanSkip(*Context) bool { return false }

// urlParseStage canonicalizes the input URL and classifies its
// platform; never skippable.
type urlParseStage struct{ baseStage }

func newURLParseStage() *urlParseStage { return &urlParseStage{baseStage{"url_parser"}} }

func (s *urlParseStage) Run(ctx *Context, report progress.Func) (*Context, error) {
	report("url_parser", 0, "parsing URL")
	parsed, err := fetch.ParseURL(ctx.RawURL)
	if err != nil {
		return ctx, err
	}
	ctx.Parsed = parsed
	ctx.Video.URL = parsed.CanonicalURL
	ctx.Video.SessionID = parsed.VideoID
	if ctx.SessionDir != "" {
		ctx.SessionDir = filepath.Join(ctx.SessionDir, parsed.VideoID)
	}
	ctx.Video.SessionDir = ctx.SessionDir
	report("url_parser", 100, "parsed "+string(parsed.Platform))
	return ctx, nil
}

// cacheStage looks up a persisted record for the canonicalized URL. A
// hit short-circuits fetch/extract/analyze/persist; a cache miss warms
// the cache from the store so the next lookup for the same URL is fast
// even when the record wasn't freshly written this run.
type cacheStage struct{ baseStage }

func newCacheStage() *cacheStage { return &cacheStage{baseStage{"cache"}} }

func (s *cacheStage) Run(ctx *Context, report progress.Func) (*Context, error) {
	report("cache", 0, "checking cache")

	key := cache.Key(cache.NamespaceAnalysis, ctx.Video.URL)
	if raw, ok := ctx.Cache.Get(ctx.Ctx, key); ok {
		var rec model.VideoRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			ctx.Record = rec
			ctx.CacheHit = true
			report("cache", 100, "cache hit")
			return ctx, nil
		}
	}

	rec, err := ctx.Store.GetByURL(ctx.Ctx, ctx.Video.URL)
	if err == nil && rec.Valid() && len(rec.AnalysisResult) > 0 {
		ctx.Record = rec
		ctx.CacheHit = true
		if raw, err := json.Marshal(rec); err == nil {
			ctx.Cache.Set(ctx.Ctx, key, raw, config.CacheTTLAnalysis)
		}
		report("cache", 100, "store hit, cache warmed")
		return ctx, nil
	}

	report("cache", 100, "cache miss")
	return ctx, nil
}

// fetchStage downloads media and metadata via the yt-dlp cascade.
type fetchStage struct{ baseStage }

func newFetchStage() *fetchStage { return &fetchStage{baseStage{"fetch"}} }

func (s *fetchStage) CanSkip(ctx *Context) bool { return ctx.CacheHit }

func (s *fetchStage) Run(ctx *Context, report progress.Func) (*Context, error) {
	report("fetch", 0, "fetching media")
	result, err := fetch.Fetch(ctx.Ctx, ctx.RawURL, ctx.SessionDir, ctx.VideoQuality)
	if err != nil {
		return ctx, err
	}
	ctx.Video.Metadata = result.Metadata
	ctx.Video.LocalPath = result.LocalPath
	ctx.Video.ThumbnailPath = result.ThumbnailPath
	report("fetch", 100, "fetch complete")
	return ctx, nil
}

// extractStage runs scene detection, mid-frame extraction, and
// similarity-clustered representative selection.
type extractStage struct{ baseStage }

func newExtractStage() *extractStage { return &extractStage{baseStage{"extract"}} }

func (s *extractStage) CanSkip(ctx *Context) bool { return ctx.CacheHit }

func (s *extractStage) Run(ctx *Context, report progress.Func) (*Context, error) {
	opts := ctx.SceneDefaults
	opts.VideoPath = ctx.Video.LocalPath
	opts.SessionDir = ctx.SessionDir
	if ctx.Video.Metadata.IsShortForm() {
		opts.MinSceneDuration = config.ShortFormMinSceneDuration
		opts.SceneThreshold = config.ShortFormSceneThreshold
	}

	result, err := scenes.Extract(ctx.Ctx, opts, scenes.ProgressFunc(report))
	if err != nil {
		return ctx, err
	}
	ctx.Video.Scenes = result.AllScenes
	ctx.Video.GroupedScenes = result.GroupedScenes
	return ctx, nil
}

// analyzeStage builds the multimodal prompt, calls the provider
// cascade, and parses the response into a ParsedAnalysis.
type analyzeStage struct{ baseStage }

func newAnalyzeStage() *analyzeStage { return &analyzeStage{baseStage{"analyze"}} }

func (s *analyzeStage) CanSkip(ctx *Context) bool { return ctx.CacheHit }

func (s *analyzeStage) Run(ctx *Context, report progress.Func) (*Context, error) {
	report("analyze", 0, "preparing images")

	images, err := s.loadImages(ctx)
	if err != nil {
		return ctx, err
	}

	userPrompt := prompt.Build(ctx.Video, len(images))
	report("analyze", 20, "calling provider")

	text, modelUsed, err := provider.CallWithFallback(ctx.Ctx, ctx.Providers, images, userPrompt, prompt.System)
	if err != nil {
		return ctx, err
	}
	dumpDebug(ctx.SessionDir, userPrompt, text)

	analysis := parse.Parse(text, modelUsed)
	analysis.Tags = parse.UnionTags(ctx.Video.Metadata.Tags, analysis.Tags)
	ctx.Video.Analysis = &analysis

	report("analyze", 100, "analysis complete")
	return ctx, nil
}

// loadImages picks the thumbnail plus up to MaxImages-1 representative
// scenes, the image budget spec.md's prompt contract describes: "the
// first is the thumbnail, the rest are representative scenes".
func (s *analyzeStage) loadImages(ctx *Context) ([]provider.Image, error) {
	var paths []string
	if ctx.Video.ThumbnailPath != "" {
		paths = append(paths, ctx.Video.ThumbnailPath)
	}
	for _, sc := range ctx.Video.GroupedScenes {
		paths = append(paths, sc.GroupedPath)
	}
	if len(paths) > ctx.MaxImages {
		paths = paths[:ctx.MaxImages]
	}

	images := make([]provider.Image, 0, len(paths))
	for _, p := range paths {
		img, err := provider.LoadImage(p, ctx.ImageQuality)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// persistStage writes the analyzed record to the store and warms the
// analysis cache entry for subsequent requests.
type persistStage struct{ baseStage }

func newPersistStage() *persistStage { return &persistStage{baseStage{"persist"}} }

func (s *persistStage) CanSkip(ctx *Context) bool { return ctx.CacheHit }

func (s *persistStage) Run(ctx *Context, report progress.Func) (*Context, error) {
	report("persist", 0, "persisting")

	rec := toRecord(ctx.Video, ctx.Parsed)
	id, err := ctx.Store.Upsert(ctx.Ctx, rec)
	if err != nil {
		return ctx, err
	}
	rec.ID = id
	ctx.Record = rec

	if raw, err := json.Marshal(rec); err == nil {
		ctx.Cache.Set(ctx.Ctx, cache.Key(cache.NamespaceAnalysis, ctx.Video.URL), raw, config.CacheTTLAnalysis)
	}

	report("persist", 100, "persisted")
	return ctx, nil
}

// dumpDebug writes the last prompt/response pair to sessionDir/debug for
// troubleshooting, mirroring the original ai_analyzer.py behavior. Best
// effort: a write failure here never fails the pipeline.
func dumpDebug(sessionDir, userPrompt, response string) {
	dir := filepath.Join(sessionDir, "debug")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(dir, "prompt.txt"), []byte(userPrompt), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "response.txt"), []byte(response), 0o644)
}

func toRecord(v model.Video, parsed fetch.Parsed) model.VideoRecord {
	rec := model.VideoRecord{
		URL:         v.URL,
		Title:       v.Metadata.Title,
		Platform:    parsed.Platform,
		VideoID:     parsed.VideoID,
		Duration:    v.Metadata.DurationSeconds,
		ViewCount:   v.Metadata.ViewCount,
		UploadDate:  v.Metadata.UploadDate,
		ScenesCount: len(v.GroupedScenes),
	}
	if v.Analysis != nil {
		rec.Genre = v.Analysis.Genre
		rec.Mood = v.Analysis.MoodTone
		rec.Tags = v.Analysis.Tags
		if raw, err := json.Marshal(v.Analysis); err == nil {
			rec.AnalysisResult = raw
		}
	}
	rec.ThumbnailPath = v.ThumbnailPath
	if rec.ThumbnailPath == "" && len(v.GroupedScenes) > 0 {
		rec.ThumbnailPath = v.GroupedScenes[0].GroupedPath
	}
	return rec
}
