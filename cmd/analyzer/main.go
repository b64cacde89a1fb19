// Command analyzer is the pipeline driver's CLI entrypoint: it wires the
// session manager, job queue, persistent store, two-tier cache, and
// provider fallback list together exactly once at process start, then
// submits one job per URL argument, logs per-stage progress events as
// they arrive, and prints each job's terminal status. Per spec.md's
// non-goals, this replaces the upstream project's HTTP server
// entrypoint (cmd/http-server) rather than extending it: there is no
// public API surface beyond the driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/peterbourgon/ff/v3"

	"github.com/videoscribe/analyzer/cache"
	"github.com/videoscribe/analyzer/config"
	pipelineerrors "github.com/videoscribe/analyzer/errors"
	"github.com/videoscribe/analyzer/log"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/pipeline"
	"github.com/videoscribe/analyzer/progress"
	"github.com/videoscribe/analyzer/provider"
	"github.com/videoscribe/analyzer/queue"
	"github.com/videoscribe/analyzer/scenes"
	"github.com/videoscribe/analyzer/session"
	"github.com/videoscribe/analyzer/store"
)

func main() {
	fs := flag.NewFlagSet("analyzer", flag.ExitOnError)
	cli := &config.Cli{}
	config.RegisterFlags(fs, cli)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix()); err != nil {
		log.LogNoRequestID("flag parse failed", "err", err.Error())
		os.Exit(1)
	}

	urls := fs.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyzer [flags] <video-url> [video-url...]")
		os.Exit(2)
	}

	driver, q, sessions, closeAll, err := build(cli)
	if err != nil {
		log.LogNoRequestID("failed to build pipeline", "err", err.Error())
		os.Exit(1)
	}
	defer closeAll()

	sess, err := sessions.GetOrCreateSession()
	if err != nil {
		log.LogNoRequestID("session admission failed", "err", err.Error())
		os.Exit(1)
	}
	defer sessions.CleanupSession(sess.SessionID)

	exitCode := 0
	for _, u := range urls {
		if !sessions.StartTask(sess.SessionID, "analyze_video") {
			fmt.Fprintf(os.Stderr, "%s: %s\n", u, pipelineerrors.KindResourcePressure)
			exitCode = 1
			continue
		}

		jobID, err := q.Submit("analyze_video", sess.SessionID, model.PriorityNormal, func(report queue.ProgressFunc) (any, error) {
			defer sessions.EndTask(sess.SessionID, "analyze_video")

			workspaceDir, err := sessions.GetWorkspacePath(sess.SessionID, "")
			if err != nil {
				return nil, err
			}
			pc, err := driver.Process(context.Background(), u, workspaceDir, progress.Func(report))
			if err != nil {
				return nil, err
			}
			return pc.Record, nil
		})

		if err != nil {
			sessions.EndTask(sess.SessionID, "analyze_video")
			fmt.Fprintf(os.Stderr, "%s: submit failed: %s\n", u, err)
			exitCode = 1
			continue
		}

		if !waitAndReport(q, jobID, u) {
			exitCode = 1
		}
	}

	sessions.MarkPipelineCompleted(sess.SessionID)
	os.Exit(exitCode)
}

// waitAndReport polls the queue until jobID leaves PENDING/RUNNING,
// printing the final result. Per-stage progress is already logged from
// inside queue.runEntry's own progress callback as each stage reports.
func waitAndReport(q *queue.Queue, jobID, rawURL string) bool {
	for {
		status := q.Status(jobID)
		if status != model.JobPending && status != model.JobRunning {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	result := q.Result(jobID)
	if result.Status == model.JobFailed {
		fmt.Fprintf(os.Stderr, "%s: FAILED: %s\n", rawURL, result.Error)
		return false
	}
	fmt.Printf("%s: %s (%.1fs)\n", rawURL, result.Status, result.ExecutionSeconds)
	return true
}

// build constructs every shared dependency exactly once: the store, the
// two-tier cache, the ordered provider fallback list, the session
// manager, the job queue, and the Driver that ties them together.
// Nothing here reaches for a process global; everything is passed down
// by reference the way the design's "no singletons" note requires.
func build(cli *config.Cli) (*pipeline.Driver, *queue.Queue, *session.Manager, func(), error) {
	st, err := store.Open(cli.DatabasePath, cli.MaxConnections)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tier1, err := cache.NewTier1(config.DefaultTier1MaxEntries, config.DefaultTier1MaxBytes)
	if err != nil {
		st.Close()
		return nil, nil, nil, nil, err
	}
	var tier2 *cache.Tier2
	if cli.RedisHost != "" {
		tier2 = cache.NewTier2(fmt.Sprintf("%s:%d", cli.RedisHost, cli.RedisPort), cli.RedisPassword)
	}
	twoTier := cache.NewTwoTier(tier1, tier2, config.Tier2PromotionTTL)

	providers := buildProviders(config.AIProvider(cli.AIProvider), cli.AIModelName, cli.APIKey)

	driver := pipeline.NewDriver(st, twoTier, providers,
		pipeline.WithVideoQuality(config.VideoQuality(cli.VideoQuality)),
		pipeline.WithImageQuality(config.ImageQuality(cli.ImageQuality)),
		pipeline.WithMaxImages(cli.MaxAnalysisImages),
		pipeline.WithSceneOptions(scenes.Options{
			Precision:            cli.PrecisionLevel,
			SceneThreshold:       cli.SceneThreshold,
			MinSceneDuration:     cli.MinSceneDuration,
			SimilarityThreshold:  cli.SimilarityThreshold,
			MinScenesForGrouping: cli.MinScenesForGrouping,
		}),
	)

	sessions := session.NewManager(cli.WorkspaceRoot, cli.MaxConcurrentUsers, cli.MaxConcurrentTasks, session.NewResourceMonitor())
	q := queue.New(cli.MaxQueueSize, cli.MaxWorkers)

	closeAll := func() {
		q.Close()
		sessions.Close()
		st.Close()
		if tier2 != nil {
			tier2.Close()
		}
	}
	return driver, q, sessions, closeAll, nil
}

// buildProviders returns the ordered fallback list CallWithFallback
// advances through: the selected provider first, then the remaining two
// as the auto-switch-on-policy-block path §7 describes.
func buildProviders(selected config.AIProvider, modelName, apiKey string) []provider.Provider {
	all := map[config.AIProvider]provider.Provider{
		config.ProviderOpenAI: &provider.OpenAI{APIKey: apiKey, Model: modelName},
		config.ProviderClaude: &provider.Claude{APIKey: apiKey, Model: modelName},
		config.ProviderGemini: &provider.Gemini{APIKey: apiKey, Model: modelName},
	}

	order := []config.AIProvider{selected}
	for _, k := range []config.AIProvider{config.ProviderOpenAI, config.ProviderClaude, config.ProviderGemini} {
		if k != selected {
			order = append(order, k)
		}
	}

	providers := make([]provider.Provider, 0, len(order))
	for _, k := range order {
		providers = append(providers, all[k])
	}
	return providers
}
