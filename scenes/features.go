// Package scenes implements the scene extractor: transition detection,
// mid-frame extraction, per-frame feature vectors, density clustering, and
// balancing to a precision-driven target count. Grounded on the upstream
// project's video package for the ffmpeg/ffprobe subprocess idiom; the
// feature-vector and clustering math has no upstream counterpart and is
// built directly from the domain's own description of the algorithm.
package scenes

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// FeatureKind names one of the feature families activated by precision.
type FeatureKind string

const (
	FeatureHistogram  FeatureKind = "histogram"
	FeatureEdge       FeatureKind = "edge"
	FeatureBrightness FeatureKind = "brightness"
	FeatureContrast   FeatureKind = "contrast"
	FeatureDiversity  FeatureKind = "diversity"
	FeatureTexture    FeatureKind = "texture"
	FeatureSpatial    FeatureKind = "spatial"
	FeatureHash       FeatureKind = "hash"
)

// allFeatures is the cumulative activation order from the precision table.
var allFeatures = []FeatureKind{
	FeatureHistogram, FeatureEdge, FeatureBrightness, FeatureContrast,
	FeatureDiversity, FeatureTexture, FeatureSpatial, FeatureHash,
}

// featuresActiveAt returns how many of allFeatures (in order) are active,
// and the target representative count, for a given precision level.
func featuresActiveAt(precision int) (count int, target int) {
	switch {
	case precision <= 1:
		return 1, 4
	case precision == 2:
		return 2, 4
	case precision == 3:
		return 3, 5
	case precision == 4:
		return 4, 5
	case precision == 5:
		return 5, 6
	case precision == 6:
		return 6, 7
	case precision == 7:
		return 7, 8
	default: // 8, 9, 10
		return 8, 10
	}
}

// ActiveFeatures lists the feature kinds active at precision.
func ActiveFeatures(precision int) []FeatureKind {
	n, _ := featuresActiveAt(precision)
	return append([]FeatureKind(nil), allFeatures[:n]...)
}

// TargetCount is the number of representative frames precision aims for.
func TargetCount(precision int) int {
	_, target := featuresActiveAt(precision)
	return target
}

// FeatureWeights normalizes equal weight across the active features so
// they sum to 1, as the pipeline's distance combination step requires.
func FeatureWeights(precision int) map[FeatureKind]float64 {
	active := ActiveFeatures(precision)
	w := 1.0 / float64(len(active))
	weights := make(map[FeatureKind]float64, len(active))
	for _, f := range active {
		weights[f] = w
	}
	return weights
}

// histogramBins, lbpPoints, gridSize and hashSize scale feature
// dimensionality with precision, finer-grained at higher precision and
// coarser (cheaper) at lower.
func histogramBins(precision int) int {
	return 4 + precision*2 // 6..24 bins per channel
}

func lbpPoints(precision int) int {
	return 4 + precision/2 // 4..9 sample points
}

func gridSize(precision int) int {
	return 2 + precision/3 // 2..5 -> NxN grid
}

func hashSize(precision int) int {
	if precision >= 10 {
		return 10
	}
	return 8 // 8x8 average hash, bumped to 10x10 at max precision
}

// resizeDim is the square side frames are downsampled to before feature
// extraction; precision 10 processes at twice the resolution.
func resizeDim(precision int) int {
	if precision >= 10 {
		return 128
	}
	return 64
}

// ComputeFeatures extracts every feature family active at precision from
// img, keyed by kind so the clustering stage can build one distance
// matrix per feature rather than one undifferentiated vector.
func ComputeFeatures(img image.Image, precision int) map[FeatureKind][]float64 {
	small := downsample(img, resizeDim(precision))
	gray := toGray(small)

	out := make(map[FeatureKind][]float64)
	for _, f := range ActiveFeatures(precision) {
		switch f {
		case FeatureHistogram:
			out[f] = colorHistogram(small, histogramBins(precision))
		case FeatureEdge:
			out[f] = []float64{edgeDensity(gray)}
		case FeatureBrightness:
			mean, stddev := brightnessStats(gray)
			out[f] = []float64{mean, stddev}
		case FeatureContrast:
			out[f] = []float64{rmsContrast(gray)}
		case FeatureDiversity:
			out[f] = []float64{colorDiversity(small)}
		case FeatureTexture:
			out[f] = localBinaryPatternHistogram(gray, lbpPoints(precision))
		case FeatureSpatial:
			out[f] = spatialColorGrid(small, gridSize(precision))
		case FeatureHash:
			out[f] = perceptualHash(gray, hashSize(precision))
		}
	}
	return out
}

// downsample resizes img to a side x side square with Lanczos
// resampling, giving every feature a fixed-cost, resolution-independent
// pixel grid to operate on.
func downsample(img image.Image, side int) image.Image {
	b := img.Bounds()
	if b.Dx() == side && b.Dy() == side {
		return img
	}
	return imaging.Resize(img, side, side, imaging.Lanczos)
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// colorHistogram bins each RGB channel into `bins` buckets and
// concatenates the three normalized histograms.
func colorHistogram(img image.Image, bins int) []float64 {
	b := img.Bounds()
	counts := make([]float64, bins*3)
	total := 0.0
	width := 256.0 / float64(bins)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			counts[bucket(r, width, bins)]++
			counts[bins+bucket(g, width, bins)]++
			counts[2*bins+bucket(bl, width, bins)]++
			total++
		}
	}
	if total == 0 {
		return counts
	}
	for i := range counts {
		counts[i] /= total
	}
	return counts
}

func bucket(c16 uint32, width float64, bins int) int {
	c8 := float64(c16 >> 8)
	idx := int(c8 / width)
	if idx >= bins {
		idx = bins - 1
	}
	return idx
}

// edgeDensity is the fraction of pixels whose Sobel gradient magnitude
// exceeds a fixed threshold.
func edgeDensity(gray *image.Gray) float64 {
	b := gray.Bounds()
	const threshold = 64.0
	edges, total := 0.0, 0.0
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			gx := sobelGx(gray, x, y)
			gy := sobelGy(gray, x, y)
			mag := math.Hypot(gx, gy)
			if mag > threshold {
				edges++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return edges / total
}

func at(gray *image.Gray, x, y int) float64 {
	return float64(gray.GrayAt(x, y).Y)
}

func sobelGx(gray *image.Gray, x, y int) float64 {
	return at(gray, x+1, y-1) + 2*at(gray, x+1, y) + at(gray, x+1, y+1) -
		at(gray, x-1, y-1) - 2*at(gray, x-1, y) - at(gray, x-1, y+1)
}

func sobelGy(gray *image.Gray, x, y int) float64 {
	return at(gray, x-1, y+1) + 2*at(gray, x, y+1) + at(gray, x+1, y+1) -
		at(gray, x-1, y-1) - 2*at(gray, x, y-1) - at(gray, x+1, y-1)
}

func brightnessStats(gray *image.Gray) (mean, stddev float64) {
	b := gray.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += at(gray, x, y)
		}
	}
	mean = sum / n
	variance := 0.0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := at(gray, x, y) - mean
			variance += d * d
		}
	}
	variance /= n
	return mean, math.Sqrt(variance)
}

func rmsContrast(gray *image.Gray) float64 {
	_, stddev := brightnessStats(gray)
	return stddev
}

// colorDiversity is the fraction of distinct quantized colors (4 bits per
// channel) among sampled pixels.
func colorDiversity(img image.Image) float64 {
	b := img.Bounds()
	seen := make(map[uint32]struct{})
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			key := (r>>12)<<8 | (g>>12)<<4 | (bl >> 12)
			seen[key] = struct{}{}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(len(seen)) / float64(total)
}

// localBinaryPatternHistogram samples `points` neighbors around each
// interior pixel at a fixed radius, thresholds against the center, and
// bins the resulting pattern codes into a histogram.
func localBinaryPatternHistogram(gray *image.Gray, points int) []float64 {
	b := gray.Bounds()
	bins := make([]float64, points+2)
	const radius = 2.0
	total := 0.0
	for y := b.Min.Y + 3; y < b.Max.Y-3; y++ {
		for x := b.Min.X + 3; x < b.Max.X-3; x++ {
			center := at(gray, x, y)
			ones := 0
			for i := 0; i < points; i++ {
				theta := 2 * math.Pi * float64(i) / float64(points)
				nx := x + int(math.Round(radius*math.Cos(theta)))
				ny := y + int(math.Round(radius*math.Sin(theta)))
				if at(gray, nx, ny) >= center {
					ones++
				}
			}
			bins[ones]++
			total++
		}
	}
	if total == 0 {
		return bins
	}
	for i := range bins {
		bins[i] /= total
	}
	return bins
}

// spatialColorGrid averages RGB over an NxN grid of cells, capturing
// coarse spatial color layout the global histogram misses.
func spatialColorGrid(img image.Image, grid int) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, grid*grid*3)
	counts := make([]float64, grid*grid)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		cy := (y - b.Min.Y) * grid / h
		if cy >= grid {
			cy = grid - 1
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			cx := (x - b.Min.X) * grid / w
			if cx >= grid {
				cx = grid - 1
			}
			cell := cy*grid + cx
			r, g, bl, _ := img.At(x, y).RGBA()
			out[cell*3] += float64(r >> 8)
			out[cell*3+1] += float64(g >> 8)
			out[cell*3+2] += float64(bl >> 8)
			counts[cell]++
		}
	}
	for cell := 0; cell < grid*grid; cell++ {
		if counts[cell] == 0 {
			continue
		}
		for ch := 0; ch < 3; ch++ {
			out[cell*3+ch] = out[cell*3+ch] / counts[cell] / 255.0
		}
	}
	return out
}

// perceptualHash is an average-hash: downsample to size x size, threshold
// against the mean, and return one float (0 or 1) per cell.
func perceptualHash(gray *image.Gray, size int) []float64 {
	small := downsample(grayAsImage(gray), size)
	smallGray := toGray(small)
	mean, _ := brightnessStats(smallGray)
	out := make([]float64, size*size)
	b := smallGray.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if at(smallGray, x, y) >= mean {
				out[i] = 1
			}
			i++
		}
	}
	return out
}

func grayAsImage(gray *image.Gray) image.Image {
	b := gray.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := gray.GrayAt(x, y)
			rgba.Set(x, y, color.Gray{Y: v.Y})
		}
	}
	return rgba
}
