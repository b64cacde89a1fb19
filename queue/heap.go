package queue

import (
	"container/heap"

	"github.com/videoscribe/analyzer/model"
)

// entry is one backlog slot: the job plus its insertion sequence, used
// to break priority ties FIFO since Priority alone isn't a strict order.
type entry struct {
	job      *model.Job
	seq      int64
	runFn    func(progress ProgressFunc) (any, error)
}

// priorityHeap orders by Priority descending, then by insertion sequence
// ascending, giving "higher priority first, FIFO within a priority" per
// the design's scheduling model.
type priorityHeap []*entry

func (h priorityHeap) Len() int { return len(h) }

func (h priorityHeap) Less(i, j int) bool {
	if h[i].job.Priority != h[j].job.Priority {
		return h[i].job.Priority > h[j].job.Priority
	}
	return h[i].seq < h[j].seq
}

func (h priorityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *priorityHeap) Push(x any) {
	*h = append(*h, x.(*entry))
}

func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*priorityHeap)(nil)
