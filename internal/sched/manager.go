// internal/sched/manager.go

package sched

import (
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// TryAbortResult reports what TryAbort found.
type TryAbortResult int

const (
	// TaskRemoved means the id is not registered: the task finished, was
	// already aborted, or never existed.
	TaskRemoved TryAbortResult = iota
	// TaskRunning means the task already started and can no longer be aborted.
	TaskRunning
	// TaskAborted means the task was waiting and will now never run.
	TaskAborted
)

func (r TryAbortResult) String() string {
	switch r {
	case TaskRemoved:
		return "Removed"
	case TaskRunning:
		return "Running"
	case TaskAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// TaskManager issues task ids and keeps every live (waiting or running)
// CancelableTask so it can be aborted by id.
type TaskManager struct {
	mu       sync.Mutex
	cond     *sync.Cond         // signaled whenever a task leaves the registry
	nextID   TaskID             // last issued id
	tasks    *redblacktree.Tree // TaskID -> *CancelableTask, ordered by id
	canceled bool               // set by CancelAndWait, never reset
}

// NewTaskManager returns an empty registry.
func NewTaskManager() *TaskManager {
	m := &TaskManager{tasks: redblacktree.NewWith(idCmp)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Register issues the next id for t. After CancelAndWait every new task is
// canceled immediately and receives InvalidTaskID.
func (m *TaskManager) Register(t *CancelableTask) TaskID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.canceled {
		t.cancel()
		return InvalidTaskID
	}
	m.nextID++
	m.tasks.Put(m.nextID, t)
	return m.nextID
}

// TryAbort aborts the task with the given id if it has not started yet.
func (m *TaskManager) TryAbort(id TaskID) TryAbortResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, found := m.tasks.Get(id)
	if !found {
		return TaskRemoved
	}
	if v.(*CancelableTask).cancel() {
		m.tasks.Remove(id)
		m.cond.Broadcast()
		return TaskAborted
	}
	return TaskRunning
}

// TryAbortAll aborts every waiting task and returns how many were aborted.
// Running tasks are left alone.
func (m *TaskManager) TryAbortAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.abortWaitingLocked()
}

// CancelAndWait aborts every waiting task, blocks until running ones finish
// and cancels all tasks registered afterwards. It must not be called from a
// task owned by this manager.
func (m *TaskManager) CancelAndWait() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.canceled = true
	m.abortWaitingLocked()
	for !m.tasks.Empty() {
		m.cond.Wait()
	}
}

// Canceled reports whether CancelAndWait has been called.
func (m *TaskManager) Canceled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canceled
}

// Len returns the number of live tasks.
func (m *TaskManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks.Size()
}

func (m *TaskManager) abortWaitingLocked() int {
	aborted := 0
	for _, k := range m.tasks.Keys() {
		v, _ := m.tasks.Get(k)
		if v.(*CancelableTask).cancel() {
			m.tasks.Remove(k)
			aborted++
		}
	}
	if aborted > 0 {
		m.cond.Broadcast()
	}
	return aborted
}

func (m *TaskManager) removeFinished(id TaskID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks.Remove(id)
	m.cond.Broadcast()
}

// idCmp orders the registry by task id.
func idCmp(a, b any) int {
	ia, ib := a.(TaskID), b.(TaskID)
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	default:
		return 0
	}
}
