package heap

import (
	"minorgc/internal/sched"
)

type fakeNewSpace struct{ capacity, size uint64 }

func (s *fakeNewSpace) TotalCapacity() uint64 { return s.capacity }
func (s *fakeNewSpace) Size() uint64          { return s.size }

type fakeStickySpace struct{ capacity, old, young uint64 }

func (s *fakeStickySpace) Capacity() uint64         { return s.capacity }
func (s *fakeStickySpace) OldObjectsSize() uint64   { return s.old }
func (s *fakeStickySpace) YoungObjectsSize() uint64 { return s.young }

// fakeHeap records collections and lets tests flip every flag MinorGCJob
// looks at.
type fakeHeap struct {
	newSpace    fakeNewSpace
	stickySpace fakeStickySpace

	tearingDown  bool
	majorMarking bool
	runner       sched.TaskRunner
	tasks        *sched.TaskManager

	state       VMState
	collectedIn []VMState
	reasons     []GarbageCollectionReason
	onCollect   func()
	onEnter     func(VMState) // called before the state switch
}

func newFakeHeap() *fakeHeap {
	return &fakeHeap{
		newSpace:    fakeNewSpace{capacity: 1_000_000},
		stickySpace: fakeStickySpace{capacity: 1_000_000},
		runner:      sched.NewForegroundRunner(true),
		tasks:       sched.NewTaskManager(),
	}
}

func (h *fakeHeap) NewSpace() NewSpaceStats                { return &h.newSpace }
func (h *fakeHeap) StickySpace() StickySpaceStats          { return &h.stickySpace }
func (h *fakeHeap) IsTearingDown() bool                    { return h.tearingDown }
func (h *fakeHeap) IsMajorMarking() bool                   { return h.majorMarking }
func (h *fakeHeap) ForegroundTaskRunner() sched.TaskRunner { return h.runner }
func (h *fakeHeap) TaskManager() *sched.TaskManager        { return h.tasks }

func (h *fakeHeap) CollectGarbage(space AllocationSpace, reason GarbageCollectionReason) {
	h.collectedIn = append(h.collectedIn, h.state)
	h.reasons = append(h.reasons, reason)
	if h.onCollect != nil {
		h.onCollect()
	}
}

func (h *fakeHeap) EnterVMState(s VMState) func() {
	if h.onEnter != nil {
		h.onEnter(s)
	}
	prev := h.state
	h.state = s
	return func() { h.state = prev }
}

func (h *fakeHeap) fg() *sched.ForegroundRunner { return h.runner.(*sched.ForegroundRunner) }

// countingRunner counts posts and never runs anything.
type countingRunner struct {
	nonNestable bool
	posted      []sched.Task
	err         error
}

func (r *countingRunner) PostTask(t sched.Task) error { return r.PostNonNestableTask(t) }
func (r *countingRunner) PostNonNestableTask(t sched.Task) error {
	if r.err != nil {
		return r.err
	}
	r.posted = append(r.posted, t)
	return nil
}
func (r *countingRunner) NonNestableTasksEnabled() bool { return r.nonNestable }
