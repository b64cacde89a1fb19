// Package session implements the workspace & session manager: per-user
// scratch directories, admission control across a concurrent-user cap
// and a systemwide task cap, and idle-session reclamation. Grounded on
// the teacher's generic cache.Registry for the session table and its
// cluster/node-liveness packages for the "reclaim the stale, then admit"
// admission shape. The background sweep goroutine is grounded on the
// same "fixed goroutines draining on a close signal" shape as
// queue.Queue's worker pool.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/videoscribe/analyzer/cache"
	"github.com/videoscribe/analyzer/config"
	pipelineerrors "github.com/videoscribe/analyzer/errors"
	"github.com/videoscribe/analyzer/log"
	"github.com/videoscribe/analyzer/model"
	"github.com/videoscribe/analyzer/requests"
)

// Manager owns the UserSession registry and the workspace root all
// per-session directories are created under.
type Manager struct {
	root     string
	maxUsers int
	maxTasks int

	sessions *cache.Registry[*model.UserSession]
	monitor  ResourceMonitor

	mu          sync.Mutex
	activeTasks int

	closeOnce sync.Once
	stop      chan struct{}
}

// NewManager constructs a Manager and starts its background sweep
// goroutine, which reclaims idle-and-expired sessions on
// config.SessionSweepInterval regardless of admission pressure, per
// §4.1's "expire inactive users to reclaim space" responsibility. Call
// Close to stop the goroutine.
func NewManager(root string, maxUsers, maxTasks int, monitor ResourceMonitor) *Manager {
	m := &Manager{
		root:     root,
		maxUsers: maxUsers,
		maxTasks: maxTasks,
		sessions: cache.NewRegistry[*model.UserSession](),
		monitor:  monitor,
		stop:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// sweepLoop periodically reclaims idle-expired sessions so that a
// session which finishes with headroom below maxUsers still gets its
// workspace cleaned up, instead of leaking until a later caller happens
// to hit the user cap. Runs until Close is called.
func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(config.SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweepOnce()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) sweepOnce() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reclaimIdleLocked(config.Clock.GetTime())
}

// Close stops the background sweep goroutine. It does not remove any
// session workspace; callers that want a final cleanup should call
// CleanupSession explicitly for sessions still outstanding.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
}

// GetOrCreateSession admits a new session, first opportunistically
// reclaiming any session that has been idle with zero active tasks for
// longer than config.SessionIdleExpiry. Fails with KindCapacityExceeded
// when no slot can be freed.
func (m *Manager) GetOrCreateSession() (*model.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := config.Clock.GetTime()

	if m.sessions.Len() >= m.maxUsers {
		m.reclaimIdleLocked(now)
	}
	if m.sessions.Len() >= m.maxUsers {
		return nil, pipelineerrors.New(pipelineerrors.KindCapacityExceeded, "no session slot available")
	}

	sessionID := requests.NewID()
	workspaceDir := filepath.Join(m.root, sessionID)
	if err := os.MkdirAll(workspaceDir, 0o755); err != nil {
		return nil, pipelineerrors.Wrap(pipelineerrors.KindCapacityExceeded, "failed to create workspace", err)
	}

	sum := sha256.Sum256([]byte(sessionID))
	s := &model.UserSession{
		SessionID:    sessionID,
		UserID:       hex.EncodeToString(sum[:])[:16],
		WorkspaceDir: workspaceDir,
		CreatedAt:    now,
		LastActive:   now,
		Status:       model.SessionActive,
	}
	m.sessions.Store(sessionID, s)
	return s, nil
}

// reclaimIdleLocked drops any session idle longer than
// config.SessionIdleExpiry with zero active tasks. Caller must hold m.mu.
func (m *Manager) reclaimIdleLocked(now time.Time) {
	var stale []string
	m.sessions.Range(func(id string, s *model.UserSession) {
		if s.ActiveTasks == 0 && now.Sub(s.LastActive) > config.SessionIdleExpiry {
			stale = append(stale, id)
		}
	})
	for _, id := range stale {
		if err := m.cleanupLocked(id); err != nil {
			log.LogNoRequestID("session workspace cleanup failed", "session_id", id, "err", err.Error())
		}
	}
}

// StartTask attempts to admit one more concurrently-running task. It
// returns false (without error) rather than failing the caller's job
// when the system is at the task cap or under resource pressure, per
// §4.1's "do not start" contract.
func (m *Manager) StartTask(sessionID, taskName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeTasks >= m.maxTasks {
		return false
	}
	if m.monitor != nil && m.monitor.UnderPressure() {
		return false
	}

	s, ok := m.sessions.Get(sessionID)
	if !ok {
		return false
	}

	s.ActiveTasks++
	s.Status = model.SessionProcessing
	s.LastActive = config.Clock.GetTime()
	m.activeTasks++
	return true
}

// EndTask decrements the session's active-task count, returning its
// status to idle once it reaches zero.
func (m *Manager) EndTask(sessionID, taskName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(sessionID)
	if !ok {
		return
	}
	if s.ActiveTasks > 0 {
		s.ActiveTasks--
	}
	if m.activeTasks > 0 {
		m.activeTasks--
	}
	s.LastActive = config.Clock.GetTime()
	if s.ActiveTasks == 0 {
		s.Status = model.SessionIdle
	}
}

// MarkPipelineCompleted flags the session completed; reclamation still
// runs on the normal idle-expiry schedule, not immediately.
func (m *Manager) MarkPipelineCompleted(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.Status = model.SessionCompleted
	s.LastActive = config.Clock.GetTime()
}

// GetWorkspacePath returns the absolute path to the session's workspace,
// or a subdirectory of it, creating the subdirectory if it doesn't exist.
func (m *Manager) GetWorkspacePath(sessionID string, subdirectory string) (string, error) {
	s, ok := m.sessions.Get(sessionID)
	if !ok {
		return "", pipelineerrors.New(pipelineerrors.KindCapacityExceeded, "unknown session")
	}
	path := s.WorkspaceDir
	if subdirectory != "" {
		path = filepath.Join(path, subdirectory)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", err
		}
	}
	return path, nil
}

// CleanupSession removes the session's workspace tree and its record.
// Directory-removal failures are logged by the caller via the returned
// error but never block the registry entry from being dropped.
func (m *Manager) CleanupSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupLocked(sessionID)
}

func (m *Manager) cleanupLocked(sessionID string) error {
	s, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	err := os.RemoveAll(s.WorkspaceDir)
	m.sessions.Remove(sessionID)
	return err
}
