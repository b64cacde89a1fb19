package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/model"
)

func TestSubmitRunsJobAndReportsResult(t *testing.T) {
	q := New(10, 2)
	defer q.Close()

	id, err := q.Submit("analyze", "sess-1", model.PriorityNormal, func(progress ProgressFunc) (any, error) {
		progress("fetch", 50, "halfway")
		return "ok", nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return q.Status(id) == model.JobCompleted
	}, time.Second, 5*time.Millisecond)

	res := q.Result(id)
	require.Equal(t, model.JobCompleted, res.Status)
	require.Equal(t, "ok", res.Value)
}

func TestSubmitSurfacesJobError(t *testing.T) {
	q := New(10, 1)
	defer q.Close()

	id, err := q.Submit("analyze", "sess-1", model.PriorityNormal, func(progress ProgressFunc) (any, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return q.Status(id) == model.JobFailed
	}, time.Second, 5*time.Millisecond)

	res := q.Result(id)
	require.Equal(t, "boom", res.Error)
}

func TestSubmitFailsWhenQueueFull(t *testing.T) {
	q := New(0, 0)
	defer q.Close()

	_, err := q.Submit("analyze", "sess-1", model.PriorityNormal, func(progress ProgressFunc) (any, error) {
		return nil, nil
	})
	require.Error(t, err)
}

func TestCancelOnlyCancelsPendingJobs(t *testing.T) {
	q := New(10, 0) // no workers: job stays PENDING
	defer q.Close()

	id, err := q.Submit("analyze", "sess-1", model.PriorityNormal, func(progress ProgressFunc) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)

	require.True(t, q.Cancel(id))
	require.Equal(t, model.JobCancelled, q.Status(id))
}

func TestHigherPriorityRunsFirst(t *testing.T) {
	q := New(10, 0) // hold workers back so we can inspect ordering
	defer q.Close()

	_, err := q.Submit("low", "s", model.PriorityLow, func(progress ProgressFunc) (any, error) { return nil, nil })
	require.NoError(t, err)
	_, err = q.Submit("urgent", "s", model.PriorityUrgent, func(progress ProgressFunc) (any, error) { return nil, nil })
	require.NoError(t, err)

	q.mu.Lock()
	top := q.backlog[0]
	q.mu.Unlock()
	require.Equal(t, "urgent", top.job.Name)
}

func TestRecoversFromPanic(t *testing.T) {
	q := New(10, 1)
	defer q.Close()

	id, err := q.Submit("panics", "sess-1", model.PriorityNormal, func(progress ProgressFunc) (any, error) {
		panic("kaboom")
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return q.Status(id) == model.JobFailed
	}, time.Second, 5*time.Millisecond)
}
