package simheap

import "sync/atomic"

// minObserverStep bounds how often the observer probes once the young
// generation is already past the trigger.
const minObserverStep = 8 << 10

// allocationObserver probes the minor GC trigger after a step worth of
// allocation. The step is sized from the current trigger so the probe
// happens roughly when the trigger is crossed.
type allocationObserver struct {
	untilStep atomic.Int64
}

func (o *allocationObserver) step(h *Heap, n uint64) {
	if o.untilStep.Add(-int64(n)) > 0 {
		return
	}
	// young size may have shrunk since the step was sized, so check again
	if h.job.TaskTriggerReached() {
		h.job.ScheduleTask()
	}
	o.reset(h)
}

func (o *allocationObserver) reset(h *Heap) {
	o.untilStep.Store(int64(nextStepSize(h)))
}

func nextStepSize(h *Heap) uint64 {
	threshold, size := h.job.TaskTriggerSize(), h.YoungSize()
	if size < threshold {
		return threshold - size
	}
	return minObserverStep
}
