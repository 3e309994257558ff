package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndExecuteCompletes(t *testing.T) {
	m := NewManager(2, nil)
	tk, err := m.Create(TypeSync, map[string]any{"subject": "orders"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tk.Status)

	done := make(chan struct{})
	err = m.Execute(context.Background(), tk.ID, func(ctx context.Context, progress func(int)) (any, error) {
		progress(50)
		close(done)
		return "ok", nil
	})
	require.NoError(t, err)

	<-done
	require.Eventually(t, func() bool {
		return m.Get(tk.ID).Status == StatusCompleted
	}, time.Second, 5*time.Millisecond)

	final := m.Get(tk.ID)
	assert.Equal(t, "ok", final.Result)
	assert.Equal(t, 100, final.Progress)
	assert.NotNil(t, final.CompletedAt)
}

func TestExecuteFailureSetsFailed(t *testing.T) {
	m := NewManager(2, nil)
	tk, err := m.Create(TypeExport, nil)
	require.NoError(t, err)

	err = m.Execute(context.Background(), tk.ID, func(ctx context.Context, progress func(int)) (any, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return m.Get(tk.ID).Status == StatusFailed
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "boom", m.Get(tk.ID).Error)
}

func TestCancelRunningTask(t *testing.T) {
	m := NewManager(2, nil)
	tk, err := m.Create(TypeMigration, nil)
	require.NoError(t, err)

	started := make(chan struct{})
	err = m.Execute(context.Background(), tk.ID, func(ctx context.Context, progress func(int)) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	<-started

	assert.True(t, m.Cancel(tk.ID))
	require.Eventually(t, func() bool {
		return m.Get(tk.ID).Status == StatusCancelled
	}, time.Second, 5*time.Millisecond)
}

func TestCancelPendingTaskNeverExecuted(t *testing.T) {
	m := NewManager(2, nil)
	tk, err := m.Create(TypeCleanup, nil)
	require.NoError(t, err)

	assert.True(t, m.Cancel(tk.ID))
	assert.Equal(t, StatusCancelled, m.Get(tk.ID).Status)

	// Cancel is a no-op on an already-terminal task.
	assert.False(t, m.Cancel(tk.ID))
}

func TestCancelCompletedTaskIsNoop(t *testing.T) {
	m := NewManager(2, nil)
	tk, err := m.Create(TypeSync, nil)
	require.NoError(t, err)

	require.NoError(t, m.Execute(context.Background(), tk.ID, func(ctx context.Context, progress func(int)) (any, error) {
		return nil, nil
	}))
	require.Eventually(t, func() bool {
		return m.Get(tk.ID).Status == StatusCompleted
	}, time.Second, 5*time.Millisecond)

	assert.False(t, m.Cancel(tk.ID))
	assert.Equal(t, StatusCompleted, m.Get(tk.ID).Status)
}

func TestListFilters(t *testing.T) {
	m := NewManager(4, nil)
	a, _ := m.Create(TypeMigration, nil)
	b, _ := m.Create(TypeSync, nil)
	_ = a
	_ = b

	all := m.List("", "")
	assert.Len(t, all, 2)

	migrations := m.List(TypeMigration, "")
	assert.Len(t, migrations, 1)
	assert.Equal(t, TypeMigration, migrations[0].Type)

	pending := m.List("", StatusPending)
	assert.Len(t, pending, 2)
}

func TestCancelAll(t *testing.T) {
	m := NewManager(4, nil)
	for i := 0; i < 3; i++ {
		_, err := m.Create(TypeCleanup, nil)
		require.NoError(t, err)
	}
	count := m.CancelAll()
	assert.Equal(t, 3, count)
}

func TestResetQueueKeepsRunning(t *testing.T) {
	m := NewManager(4, nil)
	pending, _ := m.Create(TypeExport, nil)
	running, _ := m.Create(TypeExport, nil)

	release := make(chan struct{})
	require.NoError(t, m.Execute(context.Background(), running.ID, func(ctx context.Context, progress func(int)) (any, error) {
		<-release
		return nil, nil
	}))

	removed := m.ResetQueue()
	assert.Equal(t, 1, removed)
	assert.Nil(t, m.Get(pending.ID))
	assert.NotNil(t, m.Get(running.ID))

	close(release)
}

func TestCreateFailsAfterShutdown(t *testing.T) {
	m := NewManager(2, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Shutdown(ctx)

	_, err := m.Create(TypeSync, nil)
	require.Error(t, err)
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := NewManager(2, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Shutdown(ctx)
		}()
	}
	wg.Wait()
}
