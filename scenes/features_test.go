package scenes

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func checkerboard(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func solidGray(size int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestTargetCountMatchesPrecisionTable(t *testing.T) {
	require.Equal(t, 4, TargetCount(1))
	require.Equal(t, 6, TargetCount(5))
	require.Equal(t, 10, TargetCount(8))
	require.Equal(t, 10, TargetCount(10))
}

func TestActiveFeaturesCumulative(t *testing.T) {
	require.Equal(t, []FeatureKind{FeatureHistogram}, ActiveFeatures(1))
	require.Len(t, ActiveFeatures(6), 6)
	require.Contains(t, ActiveFeatures(6), FeatureTexture)
	require.NotContains(t, ActiveFeatures(6), FeatureSpatial)
}

func TestFeatureWeightsSumToOne(t *testing.T) {
	weights := FeatureWeights(7)
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestEdgeDensityHigherForCheckerboard(t *testing.T) {
	flat := toGray(solidGray(32, 128))
	checker := toGray(checkerboard(32))
	require.Greater(t, edgeDensity(checker), edgeDensity(flat))
}

func TestColorDiversityHigherForNoisyImage(t *testing.T) {
	flat := solidGray(16, 100)
	checker := checkerboard(16)
	require.Greater(t, colorDiversity(checker), colorDiversity(flat))
}

func TestComputeFeaturesReturnsAllActiveKinds(t *testing.T) {
	img := checkerboard(64)
	features := ComputeFeatures(img, 8)
	for _, kind := range ActiveFeatures(8) {
		require.Contains(t, features, kind)
		require.NotEmpty(t, features[kind])
	}
}
