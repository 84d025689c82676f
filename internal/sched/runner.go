// internal/sched/runner.go

package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

var (
	// ErrRunnerClosed is returned when posting to a runner after Shutdown.
	ErrRunnerClosed = errors.New("task runner is shut down")
	// ErrNonNestableUnsupported is returned by PostNonNestableTask on runners
	// created without non-nestable support.
	ErrNonNestableUnsupported = errors.New("task runner does not support non-nestable tasks")
)

// TaskRunner accepts tasks for later execution on its thread.
type TaskRunner interface {
	// PostTask queues t; it may run inside a nested run loop.
	PostTask(t Task) error
	// PostNonNestableTask queues t to run only at a top-level turn of the
	// run loop, never inside another task.
	PostNonNestableTask(t Task) error
	// NonNestableTasksEnabled reports whether PostNonNestableTask is usable.
	NonNestableTasksEnabled() bool
}

var _ TaskRunner = (*ForegroundRunner)(nil)

// ForegroundRunner executes posted tasks one at a time on whichever goroutine
// drives it (Run or RunUntilIdle). A task may itself call RunUntilIdle; that
// nested loop only runs nestable tasks and defers the non-nestable ones to the
// next top-level turn.
type ForegroundRunner struct {
	mu                 sync.Mutex             // protects the queues and closed
	queue              *linkedlistqueue.Queue // queuedTask in post order
	deferred           *linkedlistqueue.Queue // non-nestable tasks skipped by a nested loop
	nonNestableEnabled bool
	closed             bool

	depth    atomic.Int32     // current run loop nesting depth
	wake     chan struct{}    // nudges Run after a post
	statusCh chan StatusEvent // buffered, sends never block
	dropped  atomic.Int64     // events lost to a full status channel
}

type queuedTask struct {
	task        Task
	nonNestable bool
}

// NewForegroundRunner creates a runner. nonNestable selects whether
// PostNonNestableTask is supported.
func NewForegroundRunner(nonNestable bool) *ForegroundRunner {
	return &ForegroundRunner{
		queue:              linkedlistqueue.New(),
		deferred:           linkedlistqueue.New(),
		nonNestableEnabled: nonNestable,
		wake:               make(chan struct{}, 1),
		statusCh:           make(chan StatusEvent, 256), // buffered channel for status events
	}
}

// NonNestableTasksEnabled implements TaskRunner.
func (r *ForegroundRunner) NonNestableTasksEnabled() bool { return r.nonNestableEnabled }

// PostTask implements TaskRunner.
func (r *ForegroundRunner) PostTask(t Task) error { return r.post(t, false) }

// PostNonNestableTask implements TaskRunner.
func (r *ForegroundRunner) PostNonNestableTask(t Task) error {
	if !r.nonNestableEnabled {
		return ErrNonNestableUnsupported
	}
	return r.post(t, true)
}

// StatusChannel exposes the read-only event stream. It is closed by Shutdown.
func (r *ForegroundRunner) StatusChannel() <-chan StatusEvent { return r.statusCh }

// DroppedEvents returns how many events were discarded because nobody was
// draining StatusChannel fast enough.
func (r *ForegroundRunner) DroppedEvents() int64 { return r.dropped.Load() }

// Pending returns the number of queued tasks, deferred ones included.
func (r *ForegroundRunner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Size() + r.deferred.Size()
}

// Depth returns the current run loop nesting depth; 0 when idle.
func (r *ForegroundRunner) Depth() int32 { return r.depth.Load() }

func (r *ForegroundRunner) post(t Task, nonNestable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRunnerClosed
	}
	r.queue.Enqueue(queuedTask{task: t, nonNestable: nonNestable})
	r.emitLocked(StatusEvent{
		Time:        time.Now(),
		Kind:        StatusPosted,
		TaskID:      taskID(t),
		NonNestable: nonNestable,
	})

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}

// RunUntilIdle runs queued tasks on the calling goroutine until none is
// runnable at this nesting depth, and returns how many ran.
func (r *ForegroundRunner) RunUntilIdle(ctx context.Context) int {
	depth := r.depth.Add(1)
	defer r.depth.Add(-1)
	nested := depth > 1

	ran := 0
	for ctx.Err() == nil {
		qt, ok := r.next(nested)
		if !ok {
			break
		}
		id := taskID(qt.task)
		r.emit(StatusEvent{Time: time.Now(), Kind: StatusDispatch, TaskID: id, NonNestable: qt.nonNestable, Depth: depth})
		qt.task.Run(ctx)
		r.emit(StatusEvent{Time: time.Now(), Kind: StatusFinish, TaskID: id, NonNestable: qt.nonNestable, Depth: depth})
		ran++
	}
	return ran
}

// Run drives the runner until ctx is done or the runner is shut down.
func (r *ForegroundRunner) Run(ctx context.Context) error {
	for {
		// 1) drain whatever is runnable
		r.RunUntilIdle(ctx)

		// 2) check shutdown
		if ctx.Err() != nil || r.isClosed() {
			return nil
		}

		// 3) sleep until the next post
		select {
		case <-ctx.Done():
			return nil
		case <-r.wake:
		}
	}
}

// Shutdown rejects further posts, drops every queued task without running
// it and closes the status channel. It is safe to call more than once.
func (r *ForegroundRunner) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	for _, q := range []*linkedlistqueue.Queue{r.deferred, r.queue} {
		for v, ok := q.Dequeue(); ok; v, ok = q.Dequeue() {
			qt := v.(queuedTask)
			r.emitLocked(StatusEvent{Time: time.Now(), Kind: StatusDropped, TaskID: taskID(qt.task), NonNestable: qt.nonNestable})
		}
	}
	r.closed = true
	close(r.statusCh)

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *ForegroundRunner) next(nested bool) (queuedTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return queuedTask{}, false
	}
	if !nested {
		if v, ok := r.deferred.Dequeue(); ok {
			return v.(queuedTask), true
		}
	}
	for {
		v, ok := r.queue.Dequeue()
		if !ok {
			return queuedTask{}, false
		}
		qt := v.(queuedTask)
		if nested && qt.nonNestable {
			r.deferred.Enqueue(qt)
			r.emitLocked(StatusEvent{Time: time.Now(), Kind: StatusDeferred, TaskID: taskID(qt.task), NonNestable: true, Depth: r.depth.Load()})
			continue
		}
		return qt, true
	}
}

func (r *ForegroundRunner) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *ForegroundRunner) emit(ev StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitLocked(ev)
}

// NOTE: never blocks; a full channel drops the event and counts it.
func (r *ForegroundRunner) emitLocked(ev StatusEvent) {
	if r.closed {
		return
	}
	select {
	case r.statusCh <- ev:
	default:
		r.dropped.Add(1)
	}
}
