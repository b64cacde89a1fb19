package model

import "time"

// Priority orders jobs inside the queue. Higher values run first; ties
// break by CreatedAt ascending (FIFO within a priority).
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityNormal Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

// JobStatus is the lifecycle state of a queued unit of work.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
	JobNotFound  JobStatus = "NOT_FOUND"
)

// Job is one unit of work submitted to the queue.
type Job struct {
	ID        string
	Name      string
	SessionID string
	Priority  Priority
	Status    JobStatus

	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time

	Error  string
	Result any
}

// SessionStatus is the lifecycle state of a UserSession.
type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionProcessing SessionStatus = "processing"
	SessionIdle       SessionStatus = "idle"
	SessionCompleted  SessionStatus = "completed"
	SessionExpired    SessionStatus = "expired"
)

// UserSession is a per-user isolated workspace and its admission state.
type UserSession struct {
	SessionID    string
	UserID       string
	WorkspaceDir string
	CreatedAt    time.Time
	LastActive   time.Time
	ActiveTasks  int
	Status       SessionStatus
}

// CacheEntry is one tier-1 LRU slot.
type CacheEntry struct {
	Key          string
	Value        []byte
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	AccessCount  int64
	LastAccessed time.Time
	SizeBytes    int64
}

// Expired reports whether the entry's TTL, if any, has passed.
func (c CacheEntry) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
