package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/videoscribe/analyzer/log"
)

// thumbnailClient retries transient network/5xx failures fetching a
// platform's thumbnail image, logging through the same retryablehttp
// leveled logger the rest of this project's HTTP clients would use.
var thumbnailClient = newThumbnailClient()

func newThumbnailClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.HTTPClient.Timeout = 30 * time.Second
	c.Logger = log.NewRetryableHTTPLogger()
	return c
}

// downloadThumbnail fetches thumbnailURL into
// <destDir>/<videoID>_Thumbnail.jpg, per §6's persisted-file layout. A
// missing URL or a download failure is non-fatal: it returns "" and no
// error, since the thumbnail is supplementary to the analysis images,
// not required for any stage to proceed.
func downloadThumbnail(destDir, videoID, thumbnailURL string) string {
	if thumbnailURL == "" {
		return ""
	}

	resp, err := thumbnailClient.Get(thumbnailURL)
	if err != nil {
		log.LogNoRequestID("thumbnail download failed", "video_id", videoID, "err", err.Error())
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.LogNoRequestID("thumbnail download non-200", "video_id", videoID, "status", resp.StatusCode)
		return ""
	}

	path := filepath.Join(destDir, fmt.Sprintf("%s_Thumbnail.jpg", videoID))
	f, err := os.Create(path)
	if err != nil {
		log.LogNoRequestID("thumbnail write failed", "video_id", videoID, "err", err.Error())
		return ""
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		log.LogNoRequestID("thumbnail copy failed", "video_id", videoID, "err", err.Error())
		os.Remove(path)
		return ""
	}
	return path
}
