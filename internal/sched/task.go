// internal/sched/task.go

package sched

import (
	"context"
	"sync/atomic"
)

// TaskID uniquely identifies a cancelable task registered with a TaskManager.
type TaskID uint64

// InvalidTaskID is never issued by a TaskManager.
const InvalidTaskID TaskID = 0

// Task is one unit of deferred work accepted by a TaskRunner.
type Task interface {
	Run(ctx context.Context)
}

const (
	taskWaiting int32 = iota
	taskCanceled
	taskRunning
)

// CancelableTask wraps a work function so that its TaskManager can abort it
// any time before it starts running. It runs at most once.
type CancelableTask struct {
	id      TaskID
	manager *TaskManager
	state   atomic.Int32
	work    func(ctx context.Context)
}

// NewCancelableTask registers a new task with m. If m was already canceled
// (see TaskManager.CancelAndWait) the task is born canceled and its ID is
// InvalidTaskID.
func NewCancelableTask(m *TaskManager, work func(ctx context.Context)) *CancelableTask {
	t := &CancelableTask{manager: m, work: work}
	t.id = m.Register(t)
	return t
}

// ID returns the identifier assigned at construction.
func (t *CancelableTask) ID() TaskID { return t.id }

// Run executes the work function unless the task was aborted first.
func (t *CancelableTask) Run(ctx context.Context) {
	if !t.state.CompareAndSwap(taskWaiting, taskRunning) {
		return
	}
	defer t.manager.removeFinished(t.id)
	t.work(ctx)
}

func (t *CancelableTask) cancel() bool {
	return t.state.CompareAndSwap(taskWaiting, taskCanceled)
}
