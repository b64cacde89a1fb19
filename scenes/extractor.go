package scenes

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/videoscribe/analyzer/log"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/subprocess"
	"github.com/videoscribe/analyzer/video"
)

// ProgressFunc reports extraction progress the same shape the job queue
// and pipeline driver use for every other stage.
type ProgressFunc func(stage string, percent float64, message string)

// Options configures one extract_scenes call.
type Options struct {
	VideoPath  string
	SessionDir string

	Precision            int
	SceneThreshold       float64
	MinSceneDuration     float64
	SimilarityThreshold  float64
	MinScenesForGrouping int
}

// Result is extract_scenes's public contract.
type Result struct {
	AllScenes      []model.Scene
	GroupedScenes  []model.Scene
	PrecisionLevel int
	TargetCount    int
}

var ptsTimeRE = regexp.MustCompile(`pts_time:([0-9.]+)`)

func noopProgress(string, float64, string) {}

// Extract runs the full scene-extractor pipeline: transition detection,
// mid-frame extraction, feature-driven clustering, and balancing to the
// precision's target count.
func Extract(ctx context.Context, opts Options, progress ProgressFunc) (Result, error) {
	if progress == nil {
		progress = noopProgress
	}

	sceneDir := filepath.Join(opts.SessionDir, "scenes")
	groupedDir := filepath.Join(opts.SessionDir, "grouped")
	if err := os.MkdirAll(sceneDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating scenes dir: %w", err)
	}
	if err := os.MkdirAll(groupedDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating grouped dir: %w", err)
	}

	target := TargetCount(opts.Precision)

	boundaries, found, err := detectTransitions(ctx, opts.VideoPath, opts.SceneThreshold)
	if err != nil {
		log.LogNoRequestID("scene transition detection unavailable", "err", err.Error())
		return Result{PrecisionLevel: opts.Precision, TargetCount: target}, nil
	}

	if !found {
		scene, err := extractFrame(ctx, opts.VideoPath, 0, sceneDir, 0, opts.Precision)
		if err != nil {
			return Result{PrecisionLevel: opts.Precision, TargetCount: target}, nil
		}
		scene.Type = model.SceneSelected
		grouped, gerr := copyToGrouped(scene, groupedDir, 0)
		if gerr != nil {
			return Result{AllScenes: []model.Scene{scene}, PrecisionLevel: opts.Precision, TargetCount: target}, nil
		}
		return Result{
			AllScenes:      []model.Scene{scene},
			GroupedScenes:  []model.Scene{grouped},
			PrecisionLevel: opts.Precision,
			TargetCount:    target,
		}, nil
	}

	probed, perr := video.Probe(ctx, opts.VideoPath)
	duration := probed.DurationSeconds
	if perr != nil || duration <= 0 {
		duration = boundaries[len(boundaries)-1]
	}
	if duration > boundaries[len(boundaries)-1] {
		boundaries = append(boundaries, duration)
	}

	progress("extract", 40, "extracting mid-frames")
	scenes := extractMidFrames(ctx, opts, boundaries, sceneDir, progress)

	if len(scenes) == 0 {
		return Result{PrecisionLevel: opts.Precision, TargetCount: target}, nil
	}

	var grouped []model.Scene
	if len(scenes) < opts.MinScenesForGrouping {
		grouped = selectEvenly(scenes, target)
	} else {
		grouped = clusterAndSelect(scenes, opts, target)
	}

	finalized := finalizeGrouped(scenes, grouped, groupedDir)
	sort.Slice(finalized, func(i, j int) bool {
		return finalized[i].TimestampSeconds < finalized[j].TimestampSeconds
	})

	return Result{
		AllScenes:      scenes,
		GroupedScenes:  finalized,
		PrecisionLevel: opts.Precision,
		TargetCount:    target,
	}, nil
}

// detectTransitions shells out to ffmpeg's scene filter and parses the
// pts_time values showinfo logs to stderr for every frame that passes
// the scene-change threshold. The first frame is prepended when the
// first detected transition lands more than a second in.
func detectTransitions(ctx context.Context, path string, threshold float64) (timestamps []float64, found bool, err error) {
	filter := fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold)
	_, stderr, runErr := subprocess.RunCapturingStderr(ctx, 5*time.Minute, "ffmpeg",
		"-i", path, "-vf", filter, "-f", "null", "-")
	if runErr != nil && len(stderr) == 0 {
		return nil, false, runErr
	}

	matches := ptsTimeRE.FindAllSubmatch(stderr, -1)
	for _, m := range matches {
		t, perr := strconv.ParseFloat(string(m[1]), 64)
		if perr == nil {
			timestamps = append(timestamps, t)
		}
	}
	sort.Float64s(timestamps)

	if len(timestamps) == 0 {
		return []float64{0}, false, nil
	}
	if timestamps[0] > 1.0 {
		timestamps = append([]float64{0}, timestamps...)
	}
	return timestamps, true, nil
}

func extractMidFrames(ctx context.Context, opts Options, boundaries []float64, sceneDir string, progress ProgressFunc) []model.Scene {
	var scenes []model.Scene
	pairs := len(boundaries) - 1
	for i := 0; i < pairs; i++ {
		t0, t1 := boundaries[i], boundaries[i+1]
		if t1-t0 < opts.MinSceneDuration {
			continue
		}
		mid := (t0 + t1) / 2
		scene, err := extractFrame(ctx, opts.VideoPath, mid, sceneDir, len(scenes), opts.Precision)
		if err != nil {
			log.LogNoRequestID("mid-frame extraction failed, skipping", "timestamp", mid, "err", err.Error())
			continue
		}
		scenes = append(scenes, scene)

		pct := 40 + 30*float64(i+1)/float64(pairs)
		progress("extract", pct, fmt.Sprintf("extracted frame %d/%d", i+1, pairs))
	}
	return scenes
}

func extractFrame(ctx context.Context, videoPath string, timestamp float64, sceneDir string, index int, precision int) (model.Scene, error) {
	outPath := filepath.Join(sceneDir, fmt.Sprintf("scene_%04d.jpg", index))
	_, err := subprocess.Run(ctx, 30*time.Second, "ffmpeg",
		"-ss", fmt.Sprintf("%f", timestamp),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", strconv.Itoa(qualityScale(precision)),
		"-y", outPath)
	if err != nil {
		return model.Scene{}, err
	}
	return model.Scene{
		TimestampSeconds: timestamp,
		FramePath:        outPath,
		Type:             model.SceneMid,
	}, nil
}

// qualityScale maps precision to ffmpeg's -q:v JPEG quality scale, where
// 2 is near-lossless and 31 is heavily compressed.
func qualityScale(precision int) int {
	q := 10 - precision
	if q < 2 {
		return 2
	}
	if q > 8 {
		return 8
	}
	return q
}

func selectEvenly(scenes []model.Scene, target int) []model.Scene {
	items := make([]timestamped, len(scenes))
	for i, s := range scenes {
		items[i] = timestamped{index: i, timestamp: s.TimestampSeconds}
	}
	picked := timeEvenlySpaced(items, target)
	out := make([]model.Scene, len(picked))
	for i, p := range picked {
		out[i] = scenes[p.index]
	}
	return out
}

func clusterAndSelect(scenes []model.Scene, opts Options, target int) []model.Scene {
	weights := FeatureWeights(opts.Precision)
	features := make(map[FeatureKind][][]float64)
	for _, kind := range ActiveFeatures(opts.Precision) {
		features[kind] = make([][]float64, len(scenes))
	}

	for i, s := range scenes {
		img, err := decodeImage(s.FramePath)
		if err != nil {
			log.LogNoRequestID("failed to decode scene frame, treating as blank", "path", s.FramePath, "err", err.Error())
			img = image.NewRGBA(image.Rect(0, 0, 1, 1))
		}
		perFrame := ComputeFeatures(img, opts.Precision)
		for kind, vec := range perFrame {
			features[kind][i] = vec
		}
	}

	dist := combinedDistanceMatrix(features, weights)
	eps, minSamples := clusterParams(len(scenes), opts.SimilarityThreshold, opts.Precision)
	labels := dbscan(dist, eps, minSamples)
	representatives, noise := representativeIndices(dist, labels)

	all := make([]timestamped, len(scenes))
	for i, s := range scenes {
		all[i] = timestamped{index: i, timestamp: s.TimestampSeconds}
	}
	balanced := balanceToTarget(all, representatives, noise, target)

	out := make([]model.Scene, len(balanced))
	for i, b := range balanced {
		out[i] = scenes[b.index]
	}
	return out
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// finalizeGrouped copies every selected scene's frame into the grouped
// directory and sets the scenes slice's GroupedIndex/GroupedPath so
// callers can cross-reference from the full scene list.
func finalizeGrouped(scenes []model.Scene, grouped []model.Scene, groupedDir string) []model.Scene {
	out := make([]model.Scene, 0, len(grouped))
	for k, g := range grouped {
		finalized, err := copyToGrouped(g, groupedDir, k)
		if err != nil {
			log.LogNoRequestID("failed to copy grouped frame, skipping", "path", g.FramePath, "err", err.Error())
			continue
		}
		finalized.Type = model.SceneSelected
		out = append(out, finalized)

		idx := k
		for i := range scenes {
			if scenes[i].FramePath == g.FramePath {
				scenes[i].GroupedIndex = &idx
				scenes[i].GroupedPath = finalized.GroupedPath
			}
		}
	}
	return out
}

func copyToGrouped(scene model.Scene, groupedDir string, index int) (model.Scene, error) {
	dst := filepath.Join(groupedDir, fmt.Sprintf("grouped_%04d.jpg", index))
	if err := copyFile(scene.FramePath, dst); err != nil {
		return model.Scene{}, err
	}
	scene.GroupedPath = dst
	return scene, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.ReadFrom(in)
	return err
}
