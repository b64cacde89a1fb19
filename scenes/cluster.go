package scenes

import "math"

// standardizeFeature z-scores each dimension of vectors (zero mean, unit
// variance across the batch), per the spec's distance step.
func standardizeFeature(vectors [][]float64) [][]float64 {
	if len(vectors) == 0 {
		return vectors
	}
	dims := len(vectors[0])
	out := make([][]float64, len(vectors))
	for i := range out {
		out[i] = make([]float64, dims)
	}
	for d := 0; d < dims; d++ {
		mean := 0.0
		for _, v := range vectors {
			mean += v[d]
		}
		mean /= float64(len(vectors))

		variance := 0.0
		for _, v := range vectors {
			diff := v[d] - mean
			variance += diff * diff
		}
		variance /= float64(len(vectors))
		stddev := math.Sqrt(variance)

		for i, v := range vectors {
			if stddev == 0 {
				out[i][d] = 0
				continue
			}
			out[i][d] = (v[d] - mean) / stddev
		}
	}
	return out
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// combinedDistanceMatrix standardizes each feature family independently,
// builds its own Euclidean distance matrix, normalizes that matrix to
// [0,1] by its own maximum, and combines the per-feature matrices into a
// single weighted-sum matrix.
func combinedDistanceMatrix(features map[FeatureKind][][]float64, weights map[FeatureKind]float64) [][]float64 {
	var n int
	for _, vectors := range features {
		n = len(vectors)
		break
	}
	combined := make([][]float64, n)
	for i := range combined {
		combined[i] = make([]float64, n)
	}

	for kind, vectors := range features {
		weight, active := weights[kind]
		if !active || weight == 0 {
			continue
		}
		standardized := standardizeFeature(vectors)
		dist := make([][]float64, n)
		maxDist := 0.0
		for i := range dist {
			dist[i] = make([]float64, n)
			for j := range dist[i] {
				if i == j {
					continue
				}
				dist[i][j] = euclidean(standardized[i], standardized[j])
				if dist[i][j] > maxDist {
					maxDist = dist[i][j]
				}
			}
		}
		if maxDist == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				combined[i][j] += weight * (dist[i][j] / maxDist)
			}
		}
	}
	return combined
}

// countFactor and precisionFactor feed the eps formula the spec defines.
func countFactor(n int) float64 {
	switch {
	case n > 30:
		return 0.8
	case n < 15:
		return 1.3
	default:
		return 1.0
	}
}

func precisionFactor(precision int) float64 {
	switch {
	case precision <= 3:
		return 1.5
	case precision >= 8:
		return 0.7
	default:
		return 1.0
	}
}

// clusterParams computes eps and min_samples from the distance matrix
// size, the configured similarity threshold, and the precision level.
func clusterParams(n int, similarityThreshold float64, precision int) (eps float64, minSamples int) {
	eps = (1 - similarityThreshold) * countFactor(n) * precisionFactor(precision)
	minSamples = n / 15
	if minSamples > 4 {
		minSamples = 4
	}
	if minSamples < 2 {
		minSamples = 2
	}
	return eps, minSamples
}

const noiseLabel = -1

// dbscan clusters n points from a precomputed distance matrix with the
// standard density-reachability algorithm: labels[i] is the cluster
// index the point was assigned to, or noiseLabel.
func dbscan(dist [][]float64, eps float64, minSamples int) []int {
	n := len(dist)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -2 // unvisited
	}

	regionQuery := func(i int) []int {
		var neighbors []int
		for j := 0; j < n; j++ {
			if j != i && dist[i][j] <= eps {
				neighbors = append(neighbors, j)
			}
		}
		return neighbors
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != -2 {
			continue
		}
		neighbors := regionQuery(i)
		if len(neighbors)+1 < minSamples {
			labels[i] = noiseLabel
			continue
		}
		labels[i] = cluster
		seeds := append([]int{}, neighbors...)
		for len(seeds) > 0 {
			j := seeds[0]
			seeds = seeds[1:]
			if labels[j] == noiseLabel {
				labels[j] = cluster
			}
			if labels[j] != -2 {
				continue
			}
			labels[j] = cluster
			jNeighbors := regionQuery(j)
			if len(jNeighbors)+1 >= minSamples {
				seeds = append(seeds, jNeighbors...)
			}
		}
		cluster++
	}
	return labels
}

// representativeIndices picks, for each cluster, the member with the
// smallest average distance to the rest of the cluster (a medoid
// approximation of "nearest the centroid") using the combined distance
// matrix directly rather than re-deriving a single Euclidean embedding
// across differently-weighted feature spaces. Noise points are returned
// as individual representatives of themselves.
func representativeIndices(dist [][]float64, labels []int) (representatives []int, noise []int) {
	byCluster := make(map[int][]int)
	for i, l := range labels {
		if l == noiseLabel {
			noise = append(noise, i)
			continue
		}
		byCluster[l] = append(byCluster[l], i)
	}
	for _, members := range byCluster {
		best, bestAvg := members[0], math.MaxFloat64
		for _, i := range members {
			sum := 0.0
			for _, j := range members {
				sum += dist[i][j]
			}
			avg := sum / float64(len(members))
			if avg < bestAvg {
				bestAvg, best = avg, i
			}
		}
		representatives = append(representatives, best)
	}
	return representatives, noise
}
