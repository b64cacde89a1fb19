package config

import "flag"

// Cli holds every value settable by flag or env var, mirroring the
// upstream project's config.Cli, just pointed at this domain's knobs
// instead of HTTP listen addresses and transcoding targets.
type Cli struct {
	WorkspaceRoot string
	DatabasePath  string

	PrecisionLevel       int
	SceneThreshold       float64
	MinSceneDuration     float64
	SimilarityThreshold  float64
	HashThreshold        int
	MinScenesForGrouping int
	MaxAnalysisImages    int
	ImageQuality         string
	VideoQuality         string

	AIModelName string
	AIProvider  string
	APIKey      string

	RedisHost     string
	RedisPort     int
	RedisPassword string

	AutoCleanup bool

	MaxConcurrentUsers int
	MaxConcurrentTasks int
	MaxQueueSize       int
	MaxWorkers         int
	MaxConnections     int
}

// RegisterFlags wires every field above onto fs with the defaults from
// config.go, so the caller can parse it with ff.Parse(fs, args,
// ff.WithEnvVarNoPrefix()) and get env-var overrides for free, matching
// main.go's flag-registration style in the upstream project.
func RegisterFlags(fs *flag.FlagSet, cli *Cli) {
	fs.StringVar(&cli.WorkspaceRoot, "workspace-root", "data/temp", "Root directory for per-session scratch workspaces")
	fs.StringVar(&cli.DatabasePath, "database-path", DefaultDatabasePath, "Path to the embedded relational store")

	fs.IntVar(&cli.PrecisionLevel, "scene-precision-level", DefaultPrecisionLevel, "Scene extractor precision dial, 1..10 (env SCENE_PRECISION_LEVEL)")
	fs.Float64Var(&cli.SceneThreshold, "scene-threshold", DefaultSceneThreshold, "Transition sensitivity, 0..1 (env SCENE_THRESHOLD)")
	fs.Float64Var(&cli.MinSceneDuration, "min-scene-duration", DefaultMinSceneDuration, "Minimum scene span in seconds (env MIN_SCENE_DURATION)")
	fs.Float64Var(&cli.SimilarityThreshold, "scene-similarity-threshold", DefaultSimilarityThreshold, "Clustering eps base (env SCENE_SIMILARITY_THRESHOLD)")
	fs.IntVar(&cli.HashThreshold, "scene-hash-threshold", DefaultHashThreshold, "Reserved perceptual hash threshold (env SCENE_HASH_THRESHOLD)")
	fs.IntVar(&cli.MinScenesForGrouping, "min-scenes-for-grouping", DefaultMinScenesForGrouping, "Minimum mid-frames before clustering runs (env MIN_SCENES_FOR_GROUPING)")
	fs.IntVar(&cli.MaxAnalysisImages, "max-analysis-images", DefaultMaxAnalysisImages, "Cap on images sent per LLM call (env MAX_ANALYSIS_IMAGES)")
	fs.StringVar(&cli.ImageQuality, "analysis-image-quality", string(ImageQualityLow), "low|high|auto (env ANALYSIS_IMAGE_QUALITY)")
	fs.StringVar(&cli.VideoQuality, "video-quality", string(VideoQualityBest), "fast|balanced|best (env VIDEO_QUALITY)")

	fs.StringVar(&cli.AIModelName, "ai-model-name", "", "Model identifier passed to the selected provider (env AI_MODEL_NAME)")
	fs.StringVar(&cli.AIProvider, "ai-provider", string(ProviderOpenAI), "openai|claude|gemini (env AI_PROVIDER)")
	fs.StringVar(&cli.APIKey, "api-key", "", "Bearer token for the selected provider")

	fs.StringVar(&cli.RedisHost, "redis-host", "", "Optional tier-2 cache host (env REDIS_HOST)")
	fs.IntVar(&cli.RedisPort, "redis-port", 6379, "env REDIS_PORT")
	fs.StringVar(&cli.RedisPassword, "redis-password", "", "env REDIS_PASSWORD")

	fs.BoolVar(&cli.AutoCleanup, "auto-cleanup", false, "Delete workspace after upload (env AUTO_CLEANUP)")

	fs.IntVar(&cli.MaxConcurrentUsers, "max-concurrent-users", DefaultMaxConcurrentUsers, "Systemwide session cap")
	fs.IntVar(&cli.MaxConcurrentTasks, "max-concurrent-tasks", DefaultMaxConcurrentTasks, "Systemwide running-job cap")
	fs.IntVar(&cli.MaxQueueSize, "max-queue-size", DefaultMaxQueueSize, "Pending job backlog cap")
	fs.IntVar(&cli.MaxWorkers, "max-workers", DefaultMaxWorkers, "Fixed worker pool size")
	fs.IntVar(&cli.MaxConnections, "max-connections", DefaultMaxConnections, "Store connection pool size")
}
