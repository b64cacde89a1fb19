// Package video wraps ffprobe (measurement) and ffmpeg (compatibility
// remux), grounded on the upstream project's video.Probe and
// video.MuxTStoMP4 but generalized from HLS-rendition bookkeeping to
// the metadata and container checks this domain needs.
package video

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"

	"github.com/videoscribe/analyzer/model"
)

// Probed is the subset of ffprobe's output the scene extractor and
// metadata population need.
type Probed struct {
	DurationSeconds float64
	Width           int
	Height          int
	VideoCodec      string
	ContainerFormat string
}

// Probe runs ffprobe against a local file, retrying up to 3 times (4
// attempts in all) with exponential backoff, the same retry shape the upstream project uses for its own
// ffprobe calls against remote URLs.
func Probe(ctx context.Context, path string) (Probed, error) {
	var data *ffprobe.ProbeData
	operation := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
		var err error
		data, err = ffprobe.ProbeURL(probeCtx, path, "-loglevel", "error")
		return err
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = 500 * time.Millisecond
	backOff.MaxInterval = 2 * time.Second
	backOff.MaxElapsedTime = 0
	if err := backoff.Retry(operation, backoff.WithMaxRetries(backOff, 3)); err != nil {
		return Probed{}, fmt.Errorf("error probing %s: %w", path, err)
	}
	return parseProbeOutput(data)
}

func parseProbeOutput(data *ffprobe.ProbeData) (Probed, error) {
	stream := data.FirstVideoStream()
	if stream == nil {
		return Probed{}, fmt.Errorf("no video stream found")
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil && data.Format != nil {
		duration = data.Format.DurationSeconds
	}

	format := ""
	if data.Format != nil {
		format = data.Format.FormatName
	}

	return Probed{
		DurationSeconds: duration,
		Width:           stream.Width,
		Height:          stream.Height,
		VideoCodec:      stream.CodecName,
		ContainerFormat: format,
	}, nil
}

// ApplyTo copies the probed measurements into VideoMetadata, the way
// the fetch stage finishes populating metadata that yt-dlp itself
// doesn't report precisely (actual decoded duration/dimensions).
func (p Probed) ApplyTo(m *model.VideoMetadata) {
	if p.DurationSeconds > 0 {
		m.DurationSeconds = p.DurationSeconds
	}
	if p.Width > 0 {
		m.Width = p.Width
	}
	if p.Height > 0 {
		m.Height = p.Height
	}
}
