// Package fetch resolves a URL to a platform and video ID, then drives
// yt-dlp through a cascade of authentication strategies to land media and
// metadata on disk. Grounded on the `downloader.Downloader` shape in
// other_examples/6b28e3e0_rankrevo-Yt-api (config-driven timeouts,
// structured errors around a yt-dlp subprocess), generalized from one
// platform to the two this domain supports.
package fetch

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/videoscribe/analyzer/errors"
	"github.com/videoscribe/analyzer/model"
)

var (
	youtubeStandardRE = regexp.MustCompile(`(?:youtube\.com|m\.youtube\.com)/watch\?.*\bv=([A-Za-z0-9_-]{6,})`)
	youtubeShortRE    = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`)
	youtubeEmbedRE    = regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{6,})`)
	youtubeShortsRE   = regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{6,})`)

	vimeoStandardRE = regexp.MustCompile(`vimeo\.com/(\d+)`)
	vimeoPlayerRE   = regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`)
)

// Parsed is the canonical identity a raw URL resolves to.
type Parsed struct {
	Platform     model.Platform
	VideoID      string
	CanonicalURL string
	PlayerURL    string // set for platforms with a distinct embeddable player form
}

// ParseURL normalizes a raw URL into a canonical platform + video ID,
// recognizing every standard/short/embed/player variant §6 enumerates.
// Anything unrecognized is UNSUPPORTED_URL.
func ParseURL(raw string) (Parsed, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := url.Parse(trimmed); err != nil {
		return Parsed{}, errors.New(errors.KindUnsupportedURL, "malformed URL: "+raw)
	}

	if m := youtubeStandardRE.FindStringSubmatch(trimmed); m != nil {
		return youtubeParsed(m[1]), nil
	}
	if m := youtubeShortRE.FindStringSubmatch(trimmed); m != nil {
		return youtubeParsed(m[1]), nil
	}
	if m := youtubeEmbedRE.FindStringSubmatch(trimmed); m != nil {
		return youtubeParsed(m[1]), nil
	}
	if m := youtubeShortsRE.FindStringSubmatch(trimmed); m != nil {
		return youtubeParsed(m[1]), nil
	}
	if m := vimeoPlayerRE.FindStringSubmatch(trimmed); m != nil {
		return vimeoParsed(m[1]), nil
	}
	if m := vimeoStandardRE.FindStringSubmatch(trimmed); m != nil {
		return vimeoParsed(m[1]), nil
	}

	return Parsed{}, errors.New(errors.KindUnsupportedURL, "no recognized platform URL pattern: "+raw)
}

func youtubeParsed(videoID string) Parsed {
	return Parsed{
		Platform:     model.PlatformYouTube,
		VideoID:      videoID,
		CanonicalURL: "https://www.youtube.com/watch?v=" + videoID,
		PlayerURL:    "https://www.youtube.com/embed/" + videoID,
	}
}

func vimeoParsed(videoID string) Parsed {
	return Parsed{
		Platform:     model.PlatformVimeo,
		VideoID:      videoID,
		CanonicalURL: "https://vimeo.com/" + videoID,
		PlayerURL:    "https://player.vimeo.com/video/" + videoID,
	}
}
