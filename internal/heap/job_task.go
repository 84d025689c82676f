package heap

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"minorgc/internal/sched"
)

const tracerName = "minorgc/internal/heap"

// jobTask is the cancelable unit a MinorGCJob posts. It runs at most once.
type jobTask struct {
	*sched.CancelableTask
	heap Heap
	job  *MinorGCJob
}

func newJobTask(j *MinorGCJob) *jobTask {
	t := &jobTask{heap: j.heap, job: j}
	t.CancelableTask = sched.NewCancelableTask(j.heap.TaskManager(), t.run)
	return t
}

func (t *jobTask) run(ctx context.Context) {
	restore := t.heap.EnterVMState(VMStateGC)
	defer restore()
	_, span := otel.Tracer(tracerName).Start(ctx, "MinorGCJob.Task",
		trace.WithAttributes(attribute.Int64("task_id", int64(t.ID()))))
	defer span.End()

	// Clearing first lets a new task be scheduled even if this one bails
	// out or collects for a long time.
	if !t.job.currentTaskID.CompareAndSwap(uint64(t.ID()), uint64(sched.InvalidTaskID)) {
		panic(errors.AssertionFailedf("minor gc task %d running but job records task %d",
			t.ID(), t.job.CurrentTaskID()))
	}
	t.job.metrics.TasksRun.Inc()

	if t.job.flags.SeparateGCPhases && t.heap.IsMajorMarking() {
		// Don't trigger a minor GC while major incremental marking is active.
		t.job.metrics.TaskBailouts.Inc()
		span.AddEvent("bailout: major marking")
		t.job.logger.Debug("minor gc task bailed out", "task_id", t.ID())
		return
	}

	t.heap.CollectGarbage(NewSpace, ReasonTask)
}
