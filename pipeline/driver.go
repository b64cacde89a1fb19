// Package pipeline drives one URL through the url-parse, cache-check,
// fetch, extract, analyze, and persist stages, reporting weighted
// progress synchronously as each stage runs. Grounded on the upstream
// project's coordinator.go (startOneUploadJob/runHandlerAsync/finishJob),
// generalized from its fixed Handler-strategy dispatch into an ordered,
// skippable Stage chain, and keeping its recovered[T] panic-to-error
// idiom for the goroutine boundary a caller may run Process from.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/videoscribe/analyzer/cache"
	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/log"
	"github.com/videoscribe/analyzer/progress"
	"github.com/videoscribe/analyzer/provider"
	"github.com/videoscribe/analyzer/scenes"
	"github.com/videoscribe/analyzer/store"
)

// Driver owns the shared dependencies and runs every URL through the
// same ordered stage chain.
type Driver struct {
	store     *store.Store
	cache     *cache.TwoTier
	providers []provider.Provider
	stages    []Stage

	videoQuality config.VideoQuality
	imageQuality config.ImageQuality
	maxImages    int
	sceneOptions scenes.Options
}

// Option configures a Driver at construction time.
type Option func(*Driver)

func WithVideoQuality(q config.VideoQuality) Option { return func(d *Driver) { d.videoQuality = q } }
func WithImageQuality(q config.ImageQuality) Option { return func(d *Driver) { d.imageQuality = q } }
func WithMaxImages(n int) Option { return func(d *Driver) { d.maxImages = n } }
func WithSceneOptions(o scenes.Options) Option { return func(d *Driver) { d.sceneOptions = o } }

// NewDriver wires a Driver against a store, two-tier cache, and ordered
// provider fallback list. Providers are tried in the given order by
// CallWithFallback, advancing only on AUTH_MISSING/CONTENT_POLICY_BLOCKED.
func NewDriver(st *store.Store, c *cache.TwoTier, providers []provider.Provider, opts ...Option) *Driver {
	d := &Driver{
		store:     st,
		cache:     c,
		providers: providers,
		stages: []Stage{
			newURLParseStage(),
			newCacheStage(),
			newFetchStage(),
			newExtractStage(),
			newAnalyzeStage(),
			newPersistStage(),
		},
		videoQuality: config.VideoQualityBalanced,
		imageQuality: config.ImageQualityAuto,
		maxImages:    config.DefaultMaxAnalysisImages,
		sceneOptions: scenes.Options{
			Precision:            config.DefaultPrecisionLevel,
			SceneThreshold:       config.DefaultSceneThreshold,
			MinSceneDuration:     config.DefaultMinSceneDuration,
			SimilarityThreshold:  config.DefaultSimilarityThreshold,
			MinScenesForGrouping: config.DefaultMinScenesForGrouping,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process runs rawURL through every stage in order, reporting weighted
// progress via report. A stage error aborts the remaining chain; a
// cache hit (determined by the cache stage) skips fetch/extract/
// analyze/persist, each still emitting its own 0/100 completion tick so
// a listening client sees a complete, monotonic stage sequence.
func (d *Driver) Process(ctx context.Context, rawURL, sessionDir string, report progress.Func) (*Context, error) {
	return recovered(func() (*Context, error) {
		return d.run(ctx, rawURL, sessionDir, report)
	})
}

func (d *Driver) run(ctx context.Context, rawURL, sessionDir string, report progress.Func) (*Context, error) {
	reporter := progress.NewReporter(report)

	pc := &Context{
		Ctx:           ctx,
		RawURL:        rawURL,
		SessionDir:    sessionDir,
		Store:         d.store,
		Cache:         d.cache,
		Providers:     d.providers,
		VideoQuality:  d.videoQuality,
		ImageQuality:  d.imageQuality,
		MaxImages:     d.maxImages,
		SceneDefaults: d.sceneOptions,
	}

	for _, stage := range d.stages {
		stageReport := reporter.Stage(stage.Name())

		if stage.CanSkip(pc) {
			log.LogCtx(pc.Ctx, "stage skipped", "stage", stage.Name())
			stageReport(stage.Name(), 100, "skipped, served from cache")
			continue
		}

		log.LogCtx(pc.Ctx, "stage starting", "stage", stage.Name())
		var err error
		pc, err = stage.Run(pc, stageReport)

		// url_parser is the first stage to run; once it succeeds,
		// pc.Video.SessionID (== VideoID) is known and every remaining
		// stage's logging for this run is keyed by it, the way the
		// teacher's handlers key logging by the inbound request ID.
		if stage.Name() == "url_parser" && err == nil {
			log.AddContext(pc.Video.SessionID, "url", rawURL, "platform", string(pc.Parsed.Platform))
			pc.Ctx = log.WithLogValues(pc.Ctx, "request_id", pc.Video.SessionID, "video_id", pc.Video.SessionID)
		}

		if err != nil {
			logStageFailure(pc.Video.SessionID, stage.Name(), rawURL, err)
			stageReport(stage.Name(), 0, err.Error())
			return pc, err
		}
	}

	reporter.Stage("completed")("completed", 100, "done")
	return pc, nil
}

// logStageFailure logs a stage error keyed by sessionID once one has been
// assigned (i.e. url_parser already ran), falling back to the
// no-request-ID logger for a url_parser failure itself.
func logStageFailure(sessionID, stage, rawURL string, err error) {
	if sessionID == "" {
		log.LogNoRequestID("pipeline stage failed", "stage", stage, "url", rawURL, "err", err.Error())
		return
	}
	log.LogError(sessionID, "pipeline stage failed", err, "stage", stage, "url", rawURL)
}

func recovered(f func() (*Context, error)) (pc *Context, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.LogNoRequestID("panic in pipeline driver, recovering", "err", rec, "trace", string(debug.Stack()))
			err = fmt.Errorf("panic in pipeline driver: %v", rec)
		}
	}()
	return f()
}
