package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/webprint/platen/internal/webprint"
)

// TaskView joins a server-side task status with the locally stored
// submission metadata. FileName and PrinterName are display-only
// overlays; they are empty when the registry has no matching entry.
type TaskView struct {
	webprint.TaskStatus
	FileName    string
	PrinterName string
}

// Snapshot is the latest data available to the UI. Queue status and
// task details travel on independent paths: one failing leaves the
// other's data and error state untouched.
type Snapshot struct {
	Queue    webprint.QueueStatus
	HasQueue bool
	QueueErr error

	Tasks    []TaskView
	TasksErr error

	LastUpdated         time.Time
	ConsecutiveFailures int // consecutive queue-status poll failures
}

// IsOffline returns true when the API has been unreachable for
// multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetQueue records a queue-status poll result. On error the previous
// queue data is kept (stale-but-present) and the failure counter grows.
func (s *Store) SetQueue(queue *webprint.QueueStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.QueueErr = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	if queue != nil {
		s.snapshot.Queue = *queue
		s.snapshot.HasQueue = true
	}
	s.snapshot.QueueErr = nil
	s.snapshot.ConsecutiveFailures = 0
}

// SetTasks records a task-detail refresh result. A nil error replaces
// the task list; an error keeps the previous list and records the
// batch-level failure for the UI banner.
func (s *Store) SetTasks(tasks []TaskView, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.TasksErr = err
		return
	}
	s.snapshot.Tasks = cloneTasks(tasks)
	s.snapshot.TasksErr = nil
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Tasks = cloneTasks(s.snapshot.Tasks)
	if s.snapshot.QueueErr != nil {
		snap.QueueErr = fmt.Errorf("%w", s.snapshot.QueueErr)
	}
	if s.snapshot.TasksErr != nil {
		snap.TasksErr = fmt.Errorf("%w", s.snapshot.TasksErr)
	}
	return snap
}

func cloneTasks(tasks []TaskView) []TaskView {
	if len(tasks) == 0 {
		return nil
	}
	dup := make([]TaskView, len(tasks))
	copy(dup, tasks)
	return dup
}
