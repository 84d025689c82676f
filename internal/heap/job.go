package heap

import (
	"log/slog"
	"sync/atomic"

	"minorgc/internal/sched"
)

// MinorGCJob schedules background minor collections on the heap's
// foreground runner. At most one of its tasks is outstanding at a time.
//
// The job must outlive every task it posts; the owning heap guarantees this
// by canceling its TaskManager before it is destroyed.
type MinorGCJob struct {
	heap    Heap
	flags   Flags
	logger  *slog.Logger
	metrics *Metrics

	// currentTaskID holds the id of the posted task that has neither started
	// nor been aborted, or sched.InvalidTaskID.
	currentTaskID atomic.Uint64
}

// JobOption configures a MinorGCJob.
type JobOption func(*MinorGCJob)

// WithLogger sets the job's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) JobOption {
	return func(j *MinorGCJob) { j.logger = l }
}

// WithMetrics sets the collectors the job increments.
func WithMetrics(m *Metrics) JobOption {
	return func(j *MinorGCJob) { j.metrics = m }
}

// NewMinorGCJob creates the job for h.
func NewMinorGCJob(h Heap, flags Flags, opts ...JobOption) *MinorGCJob {
	j := &MinorGCJob{heap: h, flags: flags}
	for _, opt := range opts {
		opt(j)
	}
	if j.logger == nil {
		j.logger = slog.Default()
	}
	if j.metrics == nil {
		j.metrics = NewMetrics(nil)
	}
	return j
}

// CurrentTaskID returns the outstanding task id or sched.InvalidTaskID. It
// says whether a collection is pending, not whether one is executing.
func (j *MinorGCJob) CurrentTaskID() sched.TaskID {
	return sched.TaskID(j.currentTaskID.Load())
}

// IsScheduled reports whether a task is outstanding.
func (j *MinorGCJob) IsScheduled() bool {
	return j.CurrentTaskID() != sched.InvalidTaskID
}

// TaskTriggerSize is TaskTriggerSize for the job's heap and flags.
func (j *MinorGCJob) TaskTriggerSize() uint64 { return TaskTriggerSize(j.heap, j.flags) }

// TaskTriggerReached is TaskTriggerReached for the job's heap and flags.
func (j *MinorGCJob) TaskTriggerReached() bool { return TaskTriggerReached(j.heap, j.flags) }

// ScheduleTask makes sure a minor GC task is outstanding. It never blocks
// and is a no-op when the feature is off, a task is already outstanding,
// the heap is tearing down or the runner cannot run non-nestable tasks.
//
// Callers may invoke it before the trigger is actually reached, e.g. from an
// allocation observer whose step size was computed from an older trigger.
func (j *MinorGCJob) ScheduleTask() {
	if !j.flags.MinorGCTask {
		return
	}
	if j.IsScheduled() {
		return
	}
	if j.heap.IsTearingDown() {
		return
	}

	runner := j.heap.ForegroundTaskRunner()
	if !runner.NonNestableTasksEnabled() {
		return
	}

	task := newJobTask(j)
	id := task.ID()
	if id == sched.InvalidTaskID {
		// the task manager is already canceled
		return
	}
	// publish the id before posting so concurrent callers see the slot taken
	if !j.currentTaskID.CompareAndSwap(uint64(sched.InvalidTaskID), uint64(id)) {
		j.heap.TaskManager().TryAbort(id)
		return
	}
	if err := runner.PostNonNestableTask(task); err != nil {
		j.heap.TaskManager().TryAbort(id)
		j.currentTaskID.CompareAndSwap(uint64(id), uint64(sched.InvalidTaskID))
		j.logger.Warn("minor gc task not posted", "task_id", id, "err", err)
		return
	}

	j.metrics.TasksScheduled.Inc()
	j.logger.Debug("minor gc task scheduled", "task_id", id)
}

// CancelTaskIfScheduled withdraws the outstanding task, if any. The abort is
// best effort: a task that already finished is simply gone, and a task that
// already started clears the slot itself before collecting. In that last
// case the slot stays set for the instant between the task starting and its
// own compare-and-swap, which keeps the task's id check race free.
func (j *MinorGCJob) CancelTaskIfScheduled() {
	id := j.CurrentTaskID()
	if id == sched.InvalidTaskID {
		return
	}

	result := j.heap.TaskManager().TryAbort(id)
	if result != sched.TaskRunning {
		j.currentTaskID.CompareAndSwap(uint64(id), uint64(sched.InvalidTaskID))
	}
	if result == sched.TaskAborted {
		j.metrics.TasksCanceled.Inc()
	}
	j.logger.Debug("minor gc task canceled", "task_id", id, "result", result)
}
