package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/srcp/schema-registry-controlplane/internal/metrics"
	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// DefaultPoolSize is the worker pool width used when no override is
// configured.
const DefaultPoolSize = 10

// Manager is a single-threaded dispatcher over a parallel pool: task
// bookkeeping happens under one mutex; only the task bodies submitted to
// the pool run concurrently, bounded by a weighted semaphore.
type Manager struct {
	mu           sync.Mutex
	tasks        map[string]*Task
	sem          *semaphore.Weighted
	poolSize     int64
	shuttingDown bool
	logger       *slog.Logger
	wg           sync.WaitGroup
	metrics      *metrics.Metrics
}

// SetMetrics attaches the process metrics so task lifecycle events are
// recorded. A nil field disables recording.
func (m *Manager) SetMetrics(mx *metrics.Metrics) { m.metrics = mx }

// NewManager builds a Manager with the given pool width.
func NewManager(poolSize int, logger *slog.Logger) *Manager {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &Manager{
		tasks:    make(map[string]*Task),
		sem:      semaphore.NewWeighted(int64(poolSize)),
		poolSize: int64(poolSize),
		logger:   logger,
	}
}

// Create registers a new PENDING task. It fails if the manager is
// shutting down.
func (m *Manager) Create(taskType Type, metadata map[string]any) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shuttingDown {
		return nil, srerr.New(srerr.TaskShuttingDown, "task manager is shutting down")
	}

	t := &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		Progress:  0,
		Metadata:  metadata,
	}
	m.tasks[t.ID] = t
	if m.metrics != nil {
		m.metrics.RecordTaskCreated(string(taskType))
	}
	return t.snapshot(), nil
}

// Execute transitions a task to RUNNING, submits fn to the bounded pool,
// and returns immediately; the task's terminal status is observable via
// Get once fn completes. It blocks only long enough to acquire a pool slot
// or to discover the manager is shutting down.
func (m *Manager) Execute(ctx context.Context, taskID string, fn Func) error {
	m.mu.Lock()
	t, ok := m.tasks[taskID]
	if !ok {
		m.mu.Unlock()
		return srerr.New(srerr.TaskCancelled, "unknown task %q", taskID)
	}
	if m.shuttingDown {
		m.mu.Unlock()
		return srerr.New(srerr.TaskShuttingDown, "task manager is shutting down")
	}
	if !t.setStatus(StatusRunning) {
		m.mu.Unlock()
		return srerr.New(srerr.TaskCancelled, "task %q already %s", taskID, t.Status)
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	now := time.Now()
	t.StartedAt = &now
	t.cancelFn = cancel
	t.mu.Unlock()
	m.wg.Add(1)
	m.mu.Unlock()

	if err := m.sem.Acquire(runCtx, 1); err != nil {
		m.finish(t, StatusCancelled, nil, "cancelled before acquiring a worker slot")
		cancel()
		m.wg.Done()
		return nil
	}

	go func() {
		defer m.sem.Release(1)
		defer cancel()
		defer m.wg.Done()

		progress := func(pct int) {
			t.mu.Lock()
			if pct < 0 {
				pct = 0
			}
			if pct > 100 {
				pct = 100
			}
			t.Progress = pct
			t.mu.Unlock()
		}

		result, err := fn(runCtx, progress)
		switch {
		case t.Cancelled():
			m.finish(t, StatusCancelled, nil, "")
		case err != nil:
			m.finish(t, StatusFailed, nil, err.Error())
		default:
			m.finish(t, StatusCompleted, result, "")
		}
	}()

	return nil
}

func (m *Manager) finish(t *Task, status Status, result any, errMsg string) {
	t.mu.Lock()
	if !isAllowedTransition(t.Status, status) {
		t.mu.Unlock()
		return
	}
	if m.metrics != nil {
		started := t.CreatedAt
		if t.StartedAt != nil {
			started = *t.StartedAt
		}
		m.metrics.RecordTaskFinished(string(t.Type), string(status), time.Since(started))
	}
	t.Status = status
	t.Result = result
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
	if status == StatusCompleted {
		t.Progress = 100
	} else {
		// A failed or cancelled task keeps whatever progress it last
		// reported rather than being forced to 100.
		t.Progress = clampProgress(t.Progress)
	}
	t.mu.Unlock()
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Get returns a snapshot of one task, or nil if unknown.
func (m *Manager) Get(id string) *Task {
	m.mu.Lock()
	t, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return t.snapshot()
}

// List returns snapshots of tasks matching the optional type and status
// filters. An empty filter matches everything.
func (m *Manager) List(typeFilter Type, statusFilter Status) []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if typeFilter != "" && t.Type != typeFilter {
			continue
		}
		if statusFilter != "" && t.Status != statusFilter {
			continue
		}
		out = append(out, t.snapshot())
	}
	return out
}

// Cancel sets the cancel flag on a RUNNING task and interrupts its
// context. A PENDING task (one never submitted to Execute) moves straight
// to CANCELLED. Cancelling a terminal task is a no-op that returns false.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	t, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return false
	}

	t.mu.Lock()
	if t.Status != StatusRunning && t.Status != StatusPending {
		t.mu.Unlock()
		return false
	}
	t.cancelFlag = true
	cancelFn := t.cancelFn
	wasRunning := t.Status == StatusRunning
	t.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
	}
	if !wasRunning {
		// PENDING tasks that never reached Execute transition directly.
		m.finish(t, StatusCancelled, nil, "cancelled before starting")
	}
	return true
}

// CancelAll cancels every cancellable task and returns the count affected.
func (m *Manager) CancelAll() int {
	m.mu.Lock()
	ids := make([]string, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	count := 0
	for _, id := range ids {
		if m.Cancel(id) {
			count++
		}
	}
	return count
}

// ResetQueue removes every non-RUNNING task from the table.
func (m *Manager) ResetQueue() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, t := range m.tasks {
		t.mu.Lock()
		status := t.Status
		t.mu.Unlock()
		if status == StatusRunning {
			continue
		}
		if status == StatusPending && m.metrics != nil {
			// PENDING tasks never reach finish, so the in-flight gauge
			// is balanced here instead.
			m.metrics.TasksInFlight.Dec()
		}
		delete(m.tasks, id)
		removed++
	}
	return removed
}

// Shutdown marks the manager as shutting down, cancels every running task,
// and waits for all in-flight task bodies to exit. It is idempotent and
// safe to call exactly once at process exit.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.shuttingDown {
		m.mu.Unlock()
		return
	}
	m.shuttingDown = true
	m.mu.Unlock()

	m.CancelAll()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if m.logger != nil {
			m.logger.Warn("task manager shutdown timed out waiting for workers")
		}
	}
}
