package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/config"
)

func fixedClock(t *testing.T, at time.Time) {
	config.Clock = config.FixedTimestampGenerator{Timestamp: at}
	t.Cleanup(func() { config.Clock = config.RealTimestampGenerator{} })
}

func TestStageRescalesLocalPercentOntoGlobalWindow(t *testing.T) {
	fixedClock(t, time.Unix(1700000000, 0))

	var calls []float64
	r := NewReporter(func(stage string, percent float64, message string) {
		calls = append(calls, percent)
	})

	fetch := r.Stage("fetch")
	fetch("fetch", 0, "starting")
	fetch("fetch", 100, "done")

	require.Len(t, calls, 2)
	require.Equal(t, stageStart(t, "fetch"), calls[0])
	require.Equal(t, stageStart(t, "fetch")+Weights["fetch"], calls[1])
}

func TestStageWindowsAreContiguousAndSumToOneHundred(t *testing.T) {
	var total float64
	for _, s := range stageOrder {
		total += Weights[s]
	}
	require.Equal(t, float64(100), total)

	cursor := 0.0
	for _, s := range stageOrder {
		start, end := stageWindow(s)
		require.Equal(t, cursor, start)
		cursor = end
		require.Equal(t, cursor-start, Weights[s])
	}
	require.Equal(t, float64(100), cursor)
}

func TestReportThrottlesWithinABucketAndInterval(t *testing.T) {
	fixedClock(t, time.Unix(1700000000, 0))

	var calls int
	r := NewReporter(func(stage string, percent float64, message string) { calls++ })
	extract := r.Stage("extract")

	extract("extract", 10, "a")
	extract("extract", 11, "b") // same bucket, same instant: throttled

	require.Equal(t, 1, calls)
}

func TestReportAlwaysForwardsBucketCrossingsAndCompletion(t *testing.T) {
	fixedClock(t, time.Unix(1700000000, 0))

	var percents []float64
	r := NewReporter(func(stage string, percent float64, message string) { percents = append(percents, percent) })
	analyze := r.Stage("analyze")

	analyze("analyze", 0, "start")
	analyze("analyze", 100, "finished")

	require.Equal(t, []float64{stageStart(t, "analyze"), stageStart(t, "analyze") + Weights["analyze"]}, percents)
}

func TestNilSinkIsANoop(t *testing.T) {
	r := NewReporter(nil)
	require.NotPanics(t, func() { r.Stage("fetch")("fetch", 50, "x") })
}

func stageStart(t *testing.T, name string) float64 {
	t.Helper()
	start, _ := stageWindow(name)
	return start
}
