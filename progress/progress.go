// Package progress reports per-stage pipeline progress synchronously to
// a caller-supplied sink, rescaling each stage's own 0-100 percent onto
// its slice of the global 0-100 window. Adapted from the upstream
// project's ProgressReporter (progress.go): the same scale-window
// (Track's scaleStart/scaleEnd) and bucket-throttle (progressBucket/
// shouldReportProgress) math, but driven synchronously from the calling
// stage instead of polled off a background ticker against an HTTP
// callback client — the scheduling model forbids progress callbacks
// from blocking or running off-thread.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/videoscribe/analyzer/config"
)

// Func reports (stage, percent_0_100, message) from inside a running
// stage. Implementations MUST NOT block.
type Func func(stage string, percent float64, message string)

var reportBuckets = []float64{0, 25, 50, 75, 100}

const minReportInterval = 2 * time.Second

// Weights is the global-weight aggregation table: each stage's local
// 0-100 progress is rescaled onto its slice of the overall 0-100 run.
// fetch/extract/analyze/persist match the named weights; the remaining
// 7% is split across the three bookend stages left otherwise
// unweighted (url parse, cache check, final completion tick).
var Weights = map[string]float64{
	"url_parser": 2,
	"cache":      2,
	"fetch":      30,
	"extract":    40,
	"analyze":    20,
	"persist":    3,
	"completed":  3,
}

var stageOrder = []string{"url_parser", "cache", "fetch", "extract", "analyze", "persist", "completed"}

// Reporter turns per-stage local progress into global-weighted progress
// and forwards it to a sink, throttling by percent-bucket crossing or
// elapsed time the same way the upstream reporter did.
type Reporter struct {
	sink Func

	lastReportAt map[string]time.Time
	lastGlobal   float64
}

func NewReporter(sink Func) *Reporter {
	return &Reporter{sink: sink, lastReportAt: make(map[string]time.Time)}
}

// Stage returns a callback bound to one named stage: local percent
// (0-100) is rescaled onto that stage's slice of the global window
// before being forwarded to the sink.
func (r *Reporter) Stage(name string) Func {
	start, end := stageWindow(name)
	return func(_ string, localPercent float64, message string) {
		r.report(name, start, end, localPercent, message)
	}
}

func (r *Reporter) report(stage string, start, end, localPercent float64, message string) {
	if r.sink == nil {
		return
	}
	global := scaleProgress(start, end, localPercent)

	if !r.shouldReport(stage, global) {
		return
	}
	r.sink(stage, global, message)
	r.lastReportAt[stage] = config.Clock.GetTime()
	r.lastGlobal = global
}

func (r *Reporter) shouldReport(stage string, global float64) bool {
	if global >= 100 || global <= 0 {
		return true
	}
	if progressBucket(global) != progressBucket(r.lastGlobal) {
		return true
	}
	return config.Clock.GetTime().Sub(r.lastReportAt[stage]) >= minReportInterval
}

func stageWindow(name string) (start, end float64) {
	var cursor float64
	for _, s := range stageOrder {
		w := Weights[s]
		if s == name {
			return cursor, cursor + w
		}
		cursor += w
	}
	return 0, 100
}

func scaleProgress(start, end, localPercent float64) float64 {
	localPercent = math.Max(localPercent, 0)
	localPercent = math.Min(localPercent, 100)
	val := start + (localPercent/100)*(end-start)
	return math.Round(val*100) / 100
}

func progressBucket(percent float64) int {
	return sort.SearchFloat64s(reportBuckets, percent)
}
