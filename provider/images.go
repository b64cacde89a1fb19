package provider

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/videoscribe/analyzer/config"
)

// LoadImage reads a JPEG frame off disk and base64-encodes it, mapping
// ANALYSIS_IMAGE_QUALITY to the provider-agnostic detail hint.
func LoadImage(path string, quality config.ImageQuality) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("reading image %s: %w", path, err)
	}
	return Image{
		Base64: base64.StdEncoding.EncodeToString(data),
		Detail: detailFor(quality),
	}, nil
}

func detailFor(quality config.ImageQuality) ImageDetail {
	switch quality {
	case config.ImageQualityLow:
		return DetailLow
	case config.ImageQualityHigh:
		return DetailHigh
	default:
		return DetailAuto
	}
}

func decode(img Image) ([]byte, error) {
	return base64.StdEncoding.DecodeString(img.Base64)
}
