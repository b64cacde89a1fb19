package video

import (
	"bytes"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// widelySupportedCodecs is the set of video codecs that need no
// last-mile remux before frame extraction and playback.
var widelySupportedCodecs = map[string]bool{
	"h264": true,
	"vp9":  true,
	"av1":  true,
}

// EnsurePlayable returns path unchanged when the probed video codec is
// already widely supported; otherwise it re-encodes to outPath as H.264
// video with AAC audio. Streams are never copied, and the container alone
// never triggers a re-encode. Grounded on
// the upstream project's MuxTStoMP4, which does the same
// Input().Output().Run() remux, just against a fixed TS-to-MP4
// conversion instead of a codec-dependent one.
func EnsurePlayable(path, outPath string, probed Probed) (string, error) {
	if widelySupportedCodecs[probed.VideoCodec] {
		return path, nil
	}

	ffmpegErr := bytes.Buffer{}
	err := ffmpeg.Input(path).
		Output(outPath, ffmpeg.KwArgs{
			"c:v": "libx264",
			"c:a": "aac",
		}).
		OverWriteOutput().WithErrorOutput(&ffmpegErr).Run()
	if err != nil {
		return "", fmt.Errorf("failed to remux %s for compatibility [%s]: %w", path, ffmpegErr.String(), err)
	}
	return outPath, nil
}
