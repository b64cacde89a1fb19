package scenes

import "sort"

// timestamped is the minimal shape balance needs: an index back into the
// caller's frame slice plus the timestamp used for time-diversity.
type timestamped struct {
	index     int
	timestamp float64
}

// greedyFarthestByTimestamp selects k candidates maximizing time
// diversity: start from the earliest timestamp, then repeatedly add
// whichever remaining candidate is farthest (in timestamp) from its
// nearest already-selected neighbor.
func greedyFarthestByTimestamp(candidates []timestamped, k int) []timestamped {
	if k >= len(candidates) {
		sorted := append([]timestamped(nil), candidates...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].timestamp < sorted[j].timestamp })
		return sorted
	}
	if k <= 0 {
		return nil
	}

	remaining := append([]timestamped(nil), candidates...)
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].timestamp < remaining[j].timestamp })

	selected := []timestamped{remaining[0]}
	remaining = remaining[1:]

	for len(selected) < k && len(remaining) > 0 {
		bestIdx, bestDist := 0, -1.0
		for i, cand := range remaining {
			minDist := minTimestampDistance(cand, selected)
			if minDist > bestDist {
				bestDist, bestIdx = minDist, i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].timestamp < selected[j].timestamp })
	return selected
}

func minTimestampDistance(cand timestamped, selected []timestamped) float64 {
	min := -1.0
	for _, s := range selected {
		d := cand.timestamp - s.timestamp
		if d < 0 {
			d = -d
		}
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}

// timeEvenlySpaced picks k indices out of n frames spread evenly across
// the sequence, used whenever there aren't enough candidates for
// clustering to produce a meaningful target-count selection.
func timeEvenlySpaced(frames []timestamped, k int) []timestamped {
	if k >= len(frames) {
		return append([]timestamped(nil), frames...)
	}
	if k <= 0 {
		return nil
	}
	out := make([]timestamped, 0, k)
	step := float64(len(frames)-1) / float64(k-1)
	if k == 1 {
		step = 0
	}
	seen := make(map[int]bool)
	for i := 0; i < k; i++ {
		idx := int(float64(i) * step)
		if idx >= len(frames) {
			idx = len(frames) - 1
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, frames[idx])
	}
	return out
}

// balanceToTarget implements step 7: grow or shrink the cluster
// representatives + noise points to land on target, preferring
// time-diverse selection over arbitrary truncation.
func balanceToTarget(all []timestamped, representatives, noise []int, target int) []timestamped {
	byIndex := make(map[int]timestamped, len(all))
	for _, t := range all {
		byIndex[t.index] = t
	}

	selectedIdx := make(map[int]bool, len(representatives)+len(noise))
	var selected []timestamped
	for _, i := range representatives {
		selectedIdx[i] = true
		selected = append(selected, byIndex[i])
	}
	for _, i := range noise {
		selectedIdx[i] = true
		selected = append(selected, byIndex[i])
	}

	switch {
	case len(selected) == target:
		sort.Slice(selected, func(i, j int) bool { return selected[i].timestamp < selected[j].timestamp })
		return selected

	case len(selected) < target:
		var unused []timestamped
		for _, t := range all {
			if !selectedIdx[t.index] {
				unused = append(unused, t)
			}
		}
		need := target - len(selected)
		extra := timeEvenlySpaced(unused, need)
		selected = append(selected, extra...)
		sort.Slice(selected, func(i, j int) bool { return selected[i].timestamp < selected[j].timestamp })
		return selected

	default: // len(selected) > target
		var repItems []timestamped
		for _, i := range representatives {
			repItems = append(repItems, byIndex[i])
		}
		if len(repItems) >= target {
			return greedyFarthestByTimestamp(repItems, target)
		}
		var noiseItems []timestamped
		for _, i := range noise {
			noiseItems = append(noiseItems, byIndex[i])
		}
		need := target - len(repItems)
		picked := greedyFarthestByTimestamp(noiseItems, need)
		result := append(repItems, picked...)
		sort.Slice(result, func(i, j int) bool { return result[i].timestamp < result[j].timestamp })
		return result
	}
}
