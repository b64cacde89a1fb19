package fetch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/subprocess"
)

// ytdlpInfo is the subset of yt-dlp's `--dump-json` output this package
// reads into VideoMetadata.
type ytdlpInfo struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Uploader      string            `json:"uploader"`
	UploadDate    string            `json:"upload_date"`
	Description   string            `json:"description"`
	Language      string            `json:"language"`
	Tags          []string          `json:"tags"`
	Categories    []string          `json:"categories"`
	Duration      float64           `json:"duration"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	ViewCount     int64             `json:"view_count"`
	LikeCount     int64             `json:"like_count"`
	CommentCount  int64             `json:"comment_count"`
	WebpageURL    string            `json:"webpage_url"`
	Thumbnail     string            `json:"thumbnail"`
	RequestedSubs map[string]subRef `json:"requested_subtitles"`
}

type subRef struct {
	FilePath string `json:"filepath"`
}

// formatSelector maps VIDEO_QUALITY to a yt-dlp format selector, the
// "video-quality-driven preset" behavior original_source/download_options.py
// implements but spec.md's body never spells out.
func formatSelector(q config.VideoQuality) string {
	switch q {
	case config.VideoQualityFast:
		return "worst[ext=mp4]/worst"
	case config.VideoQualityBalanced:
		return "best[height<=720][ext=mp4]/best[height<=720]/best"
	default: // best
		return "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	}
}

// runYtdlp shells out to yt-dlp with authArgs prepended (the cookie/
// anonymous/aggressive strategy flags) and a fixed output template,
// returning the parsed metadata and the path to the downloaded media.
func runYtdlp(ctx context.Context, rawURL, destDir string, quality config.VideoQuality, authArgs []string) (model.VideoMetadata, string, error) {
	outputTemplate := filepath.Join(destDir, "video.%(ext)s")
	infoPath := filepath.Join(destDir, "info.json")

	args := append([]string{}, authArgs...)
	args = append(args,
		"-f", formatSelector(quality),
		"--write-subs", "--write-auto-subs", "--sub-langs", "all",
		"--write-info-json",
		"-o", outputTemplate,
		"--no-playlist",
		rawURL,
	)

	if _, err := subprocess.Run(ctx, config.FetchTimeout, "yt-dlp", args...); err != nil {
		return model.VideoMetadata{}, "", err
	}

	info, err := readInfoJSON(infoPath, destDir)
	if err != nil {
		return model.VideoMetadata{}, "", fmt.Errorf("reading yt-dlp info json: %w", err)
	}

	meta := toMetadata(info, rawURL)
	mediaPath, err := findDownloadedMedia(destDir)
	if err != nil {
		return model.VideoMetadata{}, "", err
	}
	return meta, mediaPath, nil
}

func toMetadata(info ytdlpInfo, rawURL string) model.VideoMetadata {
	subtitles := make(map[string]string, len(info.RequestedSubs))
	for lang, ref := range info.RequestedSubs {
		if ref.FilePath != "" {
			subtitles[lang] = ref.FilePath
		}
	}
	return model.VideoMetadata{
		VideoID:         info.ID,
		Title:           info.Title,
		Uploader:        info.Uploader,
		UploadDate:      info.UploadDate,
		Description:     info.Description,
		Language:        info.Language,
		Tags:            info.Tags,
		Categories:      info.Categories,
		DurationSeconds: info.Duration,
		Width:           info.Width,
		Height:          info.Height,
		ViewCount:       info.ViewCount,
		LikeCount:       info.LikeCount,
		CommentCount:    info.CommentCount,
		URL:             rawURL,
		WebpageURL:      info.WebpageURL,
		ThumbnailURL:    info.Thumbnail,
		SubtitleFiles:   subtitles,
	}
}
