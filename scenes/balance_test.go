package scenes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ts(indices ...int) []timestamped {
	out := make([]timestamped, len(indices))
	for i, idx := range indices {
		out[i] = timestamped{index: idx, timestamp: float64(idx)}
	}
	return out
}

func TestGreedyFarthestByTimestampReturnsAllWhenKExceedsLen(t *testing.T) {
	cands := ts(5, 1, 3)
	out := greedyFarthestByTimestamp(cands, 10)
	require.Len(t, out, 3)
	require.Equal(t, 1.0, out[0].timestamp)
}

func TestGreedyFarthestByTimestampSpreadsSelection(t *testing.T) {
	cands := ts(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	out := greedyFarthestByTimestamp(cands, 3)
	require.Len(t, out, 3)
	require.Equal(t, 0.0, out[0].timestamp)
	require.Equal(t, 10.0, out[len(out)-1].timestamp)
}

func TestTimeEvenlySpacedCoversRange(t *testing.T) {
	frames := ts(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	out := timeEvenlySpaced(frames, 4)
	require.LessOrEqual(t, len(out), 4)
	require.Equal(t, 0.0, out[0].timestamp)
}

func TestBalanceToTargetGrowsWithUnusedFrames(t *testing.T) {
	all := ts(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	representatives := []int{0, 5}
	var noise []int
	out := balanceToTarget(all, representatives, noise, 5)
	require.Len(t, out, 5)
}

func TestBalanceToTargetShrinksFromRepresentatives(t *testing.T) {
	all := ts(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	representatives := []int{0, 1, 2, 3, 4, 5}
	var noise []int
	out := balanceToTarget(all, representatives, noise, 3)
	require.Len(t, out, 3)
}

func TestBalanceToTargetTakesAllRepsPlusDiverseNoise(t *testing.T) {
	all := ts(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	representatives := []int{0, 1}
	noise := []int{2, 3, 4, 5, 6}
	out := balanceToTarget(all, representatives, noise, 4)
	require.Len(t, out, 4)
}
