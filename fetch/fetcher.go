package fetch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/errors"
	"github.com/videoscribe/analyzer/log"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/video"
)

// Result is what one successful fetch produces.
type Result struct {
	Parsed   Parsed
	Metadata model.VideoMetadata
	// LocalPath is the media file on disk, already passed through the
	// last-mile compatibility check.
	LocalPath string
	// ThumbnailPath is the local copy of Metadata.ThumbnailURL, or ""
	// when none was available.
	ThumbnailPath string
}

// Fetch parses url, then runs the strategy cascade (platform-specific
// first where one exists, generic browser-cookie/cookie-file/alt-browser/
// anonymous/aggressive after) until one succeeds, finally ensuring the
// downloaded media uses a widely supported codec. destDir is the
// caller's per-video workspace subdirectory.
func Fetch(ctx context.Context, rawURL, destDir string, quality config.VideoQuality) (Result, error) {
	parsed, err := ParseURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	cascade := cascadeFor(parsed)
	var lastErr error
	for _, s := range cascade {
		attemptURL := parsed.CanonicalURL
		if s.url != "" {
			attemptURL = s.url
		}

		meta, mediaPath, err := runYtdlp(ctx, attemptURL, destDir, quality, s.args)
		if err != nil {
			log.LogNoRequestID("fetch strategy failed, trying next", "strategy", s.name, "platform", string(parsed.Platform), "err", err.Error())
			lastErr = err
			continue
		}

		playable, err := ensurePlayable(ctx, mediaPath)
		if err != nil {
			lastErr = err
			continue
		}

		if meta.VideoID == "" {
			meta.VideoID = parsed.VideoID
		}
		meta.Platform = parsed.Platform
		thumbPath := downloadThumbnail(destDir, meta.VideoID, meta.ThumbnailURL)
		return Result{Parsed: parsed, Metadata: meta, LocalPath: playable, ThumbnailPath: thumbPath}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no fetch strategy available")
	}
	return Result{}, errors.Wrap(errors.KindFetchFailed, "all fetch strategies exhausted for "+rawURL, lastErr)
}

func ensurePlayable(ctx context.Context, mediaPath string) (string, error) {
	probed, err := video.Probe(ctx, mediaPath)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(filepath.Dir(mediaPath), "video_compatible.mp4")
	return video.EnsurePlayable(mediaPath, outPath, probed)
}
