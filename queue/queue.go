// Package queue implements the bounded priority job queue: a
// container/heap backlog, a fixed-size worker pool, and per-job
// status/result lookups with retention. The dispatcher-plus-finalizer
// shape and the panic-recovery wrapper are grounded on the teacher's
// pipeline.Coordinator (runHandlerAsync/finishJob/recovered[T]);
// completed-job retention uses patrickmn/go-cache directly so entries
// expire themselves instead of needing a manual sweep goroutine.
package queue

import (
	"container/heap"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/videoscribe/analyzer/config"
	pipelineerrors "github.com/videoscribe/analyzer/errors"
	"github.com/videoscribe/analyzer/log"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/requests"
)

// ProgressFunc reports (stage, percent, message) from inside a running
// job body. Implementations must not block; the queue never waits on
// them.
type ProgressFunc func(stage string, percent float64, message string)

// Result is the outward-facing shape of Queue.Result.
type Result struct {
	Status            model.JobStatus
	Value             any
	Error             string
	ExecutionSeconds  float64
	CreatedAt         time.Time
}

// Status is the outward-facing shape of Queue.QueueStatus.
type Status struct {
	QueueSize  int
	MaxQueue   int
	Running    int
	MaxWorkers int
}

// Queue is the bounded priority job queue.
type Queue struct {
	maxQueueSize int
	maxWorkers   int

	mu      sync.Mutex
	cond    *sync.Cond
	backlog priorityHeap
	seq     int64
	running int
	jobs    map[string]*model.Job
	pending map[string]bool // jobID -> cancelled-before-start

	completed *gocache.Cache

	closeOnce sync.Once
	closed    bool
}

func New(maxQueueSize, maxWorkers int) *Queue {
	q := &Queue{
		maxQueueSize: maxQueueSize,
		maxWorkers:   maxWorkers,
		jobs:         make(map[string]*model.Job),
		pending:      make(map[string]bool),
		completed:    gocache.New(config.JobResultRetention, config.JobResultRetention/2),
	}
	q.cond = sync.NewCond(&q.mu)
	for i := 0; i < maxWorkers; i++ {
		go q.worker()
	}
	return q
}

// Submit enqueues a unit of work and returns its job ID. It fails with
// KindQueueFull when the backlog is already at maxQueueSize.
func (q *Queue) Submit(name, sessionID string, priority model.Priority, run func(progress ProgressFunc) (any, error)) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.backlog) >= q.maxQueueSize {
		return "", pipelineerrors.New(pipelineerrors.KindQueueFull, "job backlog is full")
	}

	id := requests.NewID()
	job := &model.Job{
		ID:        id,
		Name:      name,
		SessionID: sessionID,
		Priority:  priority,
		Status:    model.JobPending,
		CreatedAt: config.Clock.GetTime(),
	}
	q.jobs[id] = job
	q.seq++
	heap.Push(&q.backlog, &entry{job: job, seq: q.seq, runFn: run})
	q.cond.Signal()
	return id, nil
}

// Status returns a job's current lifecycle state.
func (q *Queue) Status(jobID string) model.JobStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[jobID]; ok {
		return j.Status
	}
	if v, ok := q.completed.Get(jobID); ok {
		return v.(*model.Job).Status
	}
	return model.JobNotFound
}

// Result returns the terminal (or current) outcome of a job.
func (q *Queue) Result(jobID string) Result {
	q.mu.Lock()
	var job *model.Job
	if j, ok := q.jobs[jobID]; ok {
		job = j
	}
	q.mu.Unlock()

	if job == nil {
		if v, ok := q.completed.Get(jobID); ok {
			job = v.(*model.Job)
		}
	}
	if job == nil {
		return Result{Status: model.JobNotFound}
	}

	r := Result{Status: job.Status, Value: job.Result, Error: job.Error, CreatedAt: job.CreatedAt}
	if !job.StartedAt.IsZero() && !job.CompletedAt.IsZero() {
		r.ExecutionSeconds = job.CompletedAt.Sub(job.StartedAt).Seconds()
	}
	return r
}

// Cancel cancels a job that is still PENDING. RUNNING jobs cannot be
// cancelled and Cancel returns false for them.
func (q *Queue) Cancel(jobID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[jobID]
	if !ok || job.Status != model.JobPending {
		return false
	}
	q.pending[jobID] = true
	job.Status = model.JobCancelled
	delete(q.jobs, jobID)
	q.completed.Set(jobID, job, config.JobResultRetention)
	return true
}

// QueueStatus reports the current backlog and running-worker counts.
func (q *Queue) QueueStatus() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		QueueSize:  len(q.backlog),
		MaxQueue:   q.maxQueueSize,
		Running:    q.running,
		MaxWorkers: q.maxWorkers,
	}
}

// SessionJobs lists jobs still PENDING or RUNNING for a session.
func (q *Queue) SessionJobs(sessionID string) []*model.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*model.Job
	for _, j := range q.jobs {
		if j.SessionID == sessionID {
			out = append(out, j)
		}
	}
	return out
}

// worker is the fixed-size pool body: pop highest priority job, run it,
// finalize it. One goroutine per maxWorkers slot, each looping until
// Close has been called and the backlog is empty.
func (q *Queue) worker() {
	for {
		e := q.popNext()
		if e == nil {
			return
		}
		q.runEntry(e)
	}
}

func (q *Queue) popNext() *entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.backlog) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed && len(q.backlog) == 0 {
		return nil
	}
	e := heap.Pop(&q.backlog).(*entry)
	if q.pending[e.job.ID] {
		delete(q.pending, e.job.ID)
		return q.popNextLocked()
	}
	e.job.Status = model.JobRunning
	e.job.StartedAt = config.Clock.GetTime()
	q.running++
	return e
}

// popNextLocked retries the pop while already holding q.mu, used when
// the head of the backlog turned out to be a job cancelled in the gap
// between Submit and dispatch.
func (q *Queue) popNextLocked() *entry {
	for len(q.backlog) > 0 {
		e := heap.Pop(&q.backlog).(*entry)
		if q.pending[e.job.ID] {
			delete(q.pending, e.job.ID)
			continue
		}
		e.job.Status = model.JobRunning
		e.job.StartedAt = config.Clock.GetTime()
		q.running++
		return e
	}
	return nil
}

func (q *Queue) runEntry(e *entry) {
	progress := func(stage string, percent float64, message string) {
		// Progress callbacks must never block or panic the worker.
		defer func() { recover() }()
		log.Log(e.job.SessionID, "job progress", "job_id", e.job.ID, "stage", stage, "percent", percent, "message", message)
	}

	result, err := recovered(e.job.SessionID, func() (any, error) { return e.runFn(progress) })
	q.finish(e.job, result, err)
}

func (q *Queue) finish(job *model.Job, result any, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job.CompletedAt = config.Clock.GetTime()
	q.running--
	if err != nil {
		job.Status = model.JobFailed
		job.Error = err.Error()
	} else {
		job.Status = model.JobCompleted
		job.Result = result
	}

	delete(q.jobs, job.ID)
	q.completed.Set(job.ID, job, config.JobResultRetention)
}

// Close stops all workers once the backlog drains; it does not cancel
// in-flight jobs.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.cond.Broadcast()
	})
}

// recovered runs f, converting a panic into an error the same way the
// upstream pipeline coordinator's recovered[T] keeps a misbehaving
// handler from taking down the dispatcher goroutine. Logging is keyed by
// sessionID so a job's panic trace lands in the same per-session logger
// as its progress ticks.
func recovered(sessionID string, f func() (any, error)) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.LogError(sessionID, "panic in queue job, recovering", fmt.Errorf("%v", rec), "trace", string(debug.Stack()))
			err = fmt.Errorf("panic in job: %v", rec)
		}
	}()
	return f()
}
