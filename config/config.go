// Package config holds process-wide tunables and the CLI/env-var parsing
// that populates them, in the same "package-level vars plus a Cli struct"
// shape the upstream project uses.
package config

import "time"

var Version string

// Used so that we can generate fixed timestamps in tests
var Clock TimestampGenerator = RealTimestampGenerator{}

// Scene extractor defaults (§6).
const (
	DefaultPrecisionLevel       = 5
	DefaultSceneThreshold       = 0.3
	DefaultMinSceneDuration     = 0.5
	DefaultSimilarityThreshold  = 0.92
	DefaultHashThreshold        = 5
	DefaultMinScenesForGrouping = 10
	DefaultMaxAnalysisImages    = 10

	// Short-form overrides (§8 boundaries).
	ShortFormMinSceneDuration = 0.2
	ShortFormSceneThreshold   = 0.15
)

// Concurrency & resource caps (§5).
const (
	DefaultMaxConcurrentUsers = 15
	DefaultMaxConcurrentTasks = 8
	DefaultMaxQueueSize       = 100
	DefaultMaxWorkers         = 8

	DefaultCPUPressurePercent = 70.0
	DefaultMemPressurePercent = 80.0

	SessionIdleExpiry    = 5 * time.Minute
	SessionSweepInterval = 30 * time.Second
	JobResultRetention   = 1 * time.Hour
)

// Store defaults (§4.3.1).
const (
	DefaultMaxConnections = 10
	PoolAcquireTimeout    = 10 * time.Second
	DefaultDatabasePath   = "data/database/videos.db"
)

// Cache defaults (§4.3.2).
const (
	DefaultTier1MaxBytes   = 50 * 1024 * 1024
	DefaultTier1MaxEntries = 1000
	Tier2PromotionTTL      = 5 * time.Minute

	CacheTTLAnalysis = 24 * time.Hour
	CacheTTLMetadata = 168 * time.Hour
	CacheTTLScenes   = 72 * time.Hour
)

// Provider defaults (§4.5).
const (
	ProviderCallTimeout = 120 * time.Second
	FetchTimeout        = 120 * time.Second
)

// ImageQuality is a closed set for ANALYSIS_IMAGE_QUALITY.
type ImageQuality string

const (
	ImageQualityLow  ImageQuality = "low"
	ImageQualityHigh ImageQuality = "high"
	ImageQualityAuto ImageQuality = "auto"
)

// VideoQuality is a closed set for VIDEO_QUALITY.
type VideoQuality string

const (
	VideoQualityFast     VideoQuality = "fast"
	VideoQualityBalanced VideoQuality = "balanced"
	VideoQualityBest     VideoQuality = "best"
)

// AIProvider is the closed set of supported multimodal LLM backends.
type AIProvider string

const (
	ProviderOpenAI AIProvider = "openai"
	ProviderClaude AIProvider = "claude"
	ProviderGemini AIProvider = "gemini"
)

// DefaultGenres is the closed genre list used by the prompt contract and
// response parser when no override is configured.
var DefaultGenres = []string{
	"2D-animation", "3D-animation", "motion-graphics", "interview", "spot-ad",
	"vlog", "youtube-content", "documentary", "brand-film", "TVC",
	"music-video", "educational", "product-intro", "event", "web-drama", "viral",
}

// DefaultExpressionStyles is the closed expression_style list.
var DefaultExpressionStyles = []string{
	"2D", "3D", "live-action", "hybrid", "stop-motion", "typography",
}
