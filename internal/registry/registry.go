// Package registry keeps the client-side record of submitted print
// tasks. The server's task API is keyed by task ID with no notion of a
// user or session, so this file is the only mapping from "task" to
// "task I submitted" — if it is lost, the tasks still exist server-side
// but can no longer be listed as ours.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TaskInfo is the locally persisted metadata for one submitted task.
// The server's task status does not carry the file or printer name;
// these fields exist only here.
type TaskInfo struct {
	TaskID      string `json:"taskId"`
	FileName    string `json:"fileName"`
	PrinterID   string `json:"printerId"`
	PrinterName string `json:"printerName"`
	SubmittedAt string `json:"submittedAt"` // ISO 8601, client clock
}

// Patch holds optional field updates for Update. Nil fields are left
// untouched.
type Patch struct {
	FileName    *string
	PrinterID   *string
	PrinterName *string
}

const (
	// maxEntries caps the stored list; older entries beyond the cap are
	// dropped on insert, never on read.
	maxEntries = 100

	// retention is how long an entry survives before CleanupOld drops it.
	retention = 7 * 24 * time.Hour

	defaultRegistryPath = "~/.local/share/platen/tasks.json"
)

// Registry is a file-backed, bounded, time-evicting task list. All
// operations read the full list, apply the change, and write the full
// list back; the mutex serializes that read-modify-write within the
// process. Concurrent processes race with last-writer-wins, which is
// acceptable for advisory bookmark data.
type Registry struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// DefaultPath returns the default registry file path.
func DefaultPath() string {
	return defaultRegistryPath
}

// Open returns a registry backed by the given file path. An empty path
// selects the default location. The file is created lazily on first
// write.
func Open(path string) *Registry {
	resolved, err := resolvePath(path)
	if err != nil {
		// Fall back to the unexpanded path; reads will degrade to an
		// empty list and writes will surface the real error.
		resolved = path
	}
	return &Registry{path: resolved, now: time.Now}
}

// Add prepends info and truncates the list to the most recent
// maxEntries entries.
func (r *Registry) Add(info TaskInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.load()
	updated := append([]TaskInfo{info}, tasks...)
	if len(updated) > maxEntries {
		updated = updated[:maxEntries]
	}
	return r.store(updated)
}

// Tasks returns all stored entries, most recently added first. Any
// read or deserialization failure degrades to an empty list; corrupted
// storage must never crash the caller.
func (r *Registry) Tasks() []TaskInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// TaskIDs returns just the stored task IDs, in list order.
func (r *Registry) TaskIDs() []string {
	tasks := r.Tasks()
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.TaskID)
	}
	return ids
}

// Info looks up one entry by task ID.
func (r *Registry) Info(taskID string) (TaskInfo, bool) {
	for _, task := range r.Tasks() {
		if task.TaskID == taskID {
			return task, true
		}
	}
	return TaskInfo{}, false
}

// Remove deletes the entry with the given task ID, if present.
func (r *Registry) Remove(taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.load()
	kept := tasks[:0]
	for _, task := range tasks {
		if task.TaskID != taskID {
			kept = append(kept, task)
		}
	}
	return r.store(kept)
}

// Update applies a partial patch to the entry with the given task ID.
// Updating an absent ID is a no-op.
func (r *Registry) Update(taskID string, patch Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.load()
	changed := false
	for i := range tasks {
		if tasks[i].TaskID != taskID {
			continue
		}
		if patch.FileName != nil {
			tasks[i].FileName = *patch.FileName
		}
		if patch.PrinterID != nil {
			tasks[i].PrinterID = *patch.PrinterID
		}
		if patch.PrinterName != nil {
			tasks[i].PrinterName = *patch.PrinterName
		}
		changed = true
		break
	}
	if !changed {
		return nil
	}
	return r.store(tasks)
}

// CleanupOld drops entries whose SubmittedAt is older than the
// retention window, measured against the wall clock at call time.
// Entries with unparseable timestamps are dropped too. Calling it
// repeatedly is safe; removed entries do not reappear.
func (r *Registry) CleanupOld() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.load()
	cutoff := r.now().Add(-retention)
	kept := tasks[:0]
	for _, task := range tasks {
		submitted := parseSubmittedAt(task.SubmittedAt)
		if submitted.IsZero() || !submitted.After(cutoff) {
			continue
		}
		kept = append(kept, task)
	}
	if len(kept) == len(tasks) {
		return nil
	}
	return r.store(kept)
}

// Clear removes every stored entry.
func (r *Registry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear registry: %w", err)
	}
	return nil
}

// load reads and deserializes the full list. Callers must hold r.mu.
func (r *Registry) load() []TaskInfo {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil
	}
	var tasks []TaskInfo
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil
	}
	return tasks
}

// store writes the full list through a temp file and rename so the
// persisted representation is never partial. Callers must hold r.mu.
func (r *Registry) store(tasks []TaskInfo) error {
	if tasks == nil {
		tasks = []TaskInfo{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("create registry temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close registry temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace registry file: %w", err)
	}
	return nil
}

func parseSubmittedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultRegistryPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
