// Package simheap is a simulated managed heap. It keeps only the counters a
// minor GC scheduling policy looks at and fakes collections by promoting a
// fixed share of young bytes.
package simheap

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"minorgc/internal/heap"
	"minorgc/internal/sched"
)

// ErrTornDown is returned by Allocate once TearDown has started.
var ErrTornDown = errors.New("heap is tearing down")

// Collection records one simulated garbage collection.
type Collection struct {
	Seq         int
	Time        time.Time
	Space       heap.AllocationSpace
	Reason      heap.GarbageCollectionReason
	YoungBefore uint64 // young bytes when the collection started
	Promoted    uint64 // young bytes that survived into old
	OldAfter    uint64
}

// Heap implements heap.Heap and owns the MinorGCJob for its whole lifetime.
type Heap struct {
	cfg     Config
	logger  *slog.Logger
	metrics *heap.Metrics

	runner sched.TaskRunner
	fg     *sched.ForegroundRunner // nil when a custom runner was supplied
	tasks  *sched.TaskManager
	job    *heap.MinorGCJob

	newSpace    newSpace
	stickySpace stickySpace
	oldSize     atomic.Uint64 // old space bytes when sticky mark bits are off

	tearingDown  atomic.Bool
	majorMarking atomic.Bool
	vmState      atomic.Int32

	observer  allocationObserver
	markStart int // tick the current marking cycle began, mutator only

	mu          sync.Mutex // serializes young accounting and collections
	collections []Collection
}

// Option configures a Heap.
type Option func(*Heap)

// WithLogger sets the logger shared by the heap and its job.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) { h.logger = l }
}

// WithMetrics sets the collectors shared by the heap and its job.
func WithMetrics(m *heap.Metrics) Option {
	return func(h *Heap) { h.metrics = m }
}

// WithTaskRunner replaces the built-in ForegroundRunner.
func WithTaskRunner(r sched.TaskRunner) Option {
	return func(h *Heap) { h.runner = r }
}

// New creates a heap from cfg.
func New(cfg Config, opts ...Option) *Heap {
	h := &Heap{
		cfg:   cfg,
		tasks: sched.NewTaskManager(),
	}
	h.newSpace.capacity = cfg.NewSpaceCapacity
	h.stickySpace.capacity = cfg.StickySpaceCapacity
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.metrics == nil {
		h.metrics = heap.NewMetrics(nil)
	}
	if h.runner == nil {
		h.fg = sched.NewForegroundRunner(true)
		h.runner = h.fg
	}
	h.job = heap.NewMinorGCJob(h, cfg.Flags, heap.WithLogger(h.logger), heap.WithMetrics(h.metrics))
	h.observer.reset(h)
	return h
}

var _ heap.Heap = (*Heap)(nil)

func (h *Heap) NewSpace() heap.NewSpaceStats       { return &h.newSpace }
func (h *Heap) StickySpace() heap.StickySpaceStats { return &h.stickySpace }
func (h *Heap) IsTearingDown() bool                { return h.tearingDown.Load() }
func (h *Heap) IsMajorMarking() bool               { return h.majorMarking.Load() }
func (h *Heap) ForegroundTaskRunner() sched.TaskRunner {
	return h.runner
}
func (h *Heap) TaskManager() *sched.TaskManager { return h.tasks }

// EnterVMState implements heap.Heap.
func (h *Heap) EnterVMState(s heap.VMState) (restore func()) {
	prev := h.vmState.Swap(int32(s))
	return func() { h.vmState.Store(prev) }
}

// VMState returns the current attribution state.
func (h *Heap) VMState() heap.VMState { return heap.VMState(h.vmState.Load()) }

// Job returns the heap's minor GC job.
func (h *Heap) Job() *heap.MinorGCJob { return h.job }

// Runner returns the built-in runner, or nil if WithTaskRunner was used.
func (h *Heap) Runner() *sched.ForegroundRunner { return h.fg }

// Config returns the configuration the heap was built with.
func (h *Heap) Config() Config { return h.cfg }

// YoungSize returns the bytes currently held by the young generation.
func (h *Heap) YoungSize() uint64 {
	if h.cfg.StickyMarkBits {
		return h.stickySpace.young.Load()
	}
	return h.newSpace.size.Load()
}

// OldSize returns the bytes held by old objects.
func (h *Heap) OldSize() uint64 {
	if h.cfg.StickyMarkBits {
		return h.stickySpace.old.Load()
	}
	return h.oldSize.Load()
}

// YoungCapacity returns how many bytes the young generation may hold.
func (h *Heap) YoungCapacity() uint64 {
	if h.cfg.StickyMarkBits {
		capacity, old := h.stickySpace.capacity, h.stickySpace.old.Load()
		if old >= capacity {
			return 0
		}
		return capacity - old
	}
	return h.newSpace.capacity
}

// Collections returns a copy of the collection history.
func (h *Heap) Collections() []Collection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Collection(nil), h.collections...)
}

// Allocate accounts n bytes of young allocation. When n does not fit, a
// young collection runs synchronously first and a full one after that.
func (h *Heap) Allocate(n uint64) error {
	if h.IsTearingDown() {
		return ErrTornDown
	}

	for _, fallback := range []heap.AllocationSpace{heap.NewSpace, heap.OldSpace} {
		if h.tryAllocate(n) {
			h.observer.step(h, n)
			return nil
		}
		h.CollectGarbage(fallback, heap.ReasonAllocationFailure)
	}
	if h.tryAllocate(n) {
		h.observer.step(h, n)
		return nil
	}
	return errors.Newf("allocating %s: young generation holds at most %s",
		humanize.IBytes(n), humanize.IBytes(h.YoungCapacity()))
}

func (h *Heap) tryAllocate(n uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.YoungSize()+n > h.YoungCapacity() {
		return false
	}
	if h.cfg.StickyMarkBits {
		h.stickySpace.young.Add(n)
	} else {
		h.newSpace.size.Add(n)
	}
	return true
}

// CollectGarbage implements heap.Heap. A young collection promotes
// SurvivalPercent of young bytes; any other space means a full collection,
// which additionally keeps only SurvivalPercent of old bytes.
func (h *Heap) CollectGarbage(space heap.AllocationSpace, reason heap.GarbageCollectionReason) {
	full := space != heap.NewSpace
	if full {
		// a full collection makes the pending minor task redundant
		h.job.CancelTaskIfScheduled()
	}
	restore := h.EnterVMState(heap.VMStateGC)
	defer restore()

	h.mu.Lock()
	young := h.YoungSize()
	promoted := young * uint64(h.cfg.SurvivalPercent) / 100

	old := &h.oldSize
	if h.cfg.StickyMarkBits {
		h.stickySpace.young.Store(0)
		old = &h.stickySpace.old
	} else {
		h.newSpace.size.Store(0)
	}
	oldAfter := old.Add(promoted)
	if full {
		oldAfter = oldAfter * uint64(h.cfg.SurvivalPercent) / 100
		old.Store(oldAfter)
	}

	c := Collection{
		Seq:         len(h.collections) + 1,
		Time:        time.Now(),
		Space:       space,
		Reason:      reason,
		YoungBefore: young,
		Promoted:    promoted,
		OldAfter:    oldAfter,
	}
	h.collections = append(h.collections, c)
	h.mu.Unlock()

	h.observer.reset(h)
	h.metrics.Collections.WithLabelValues(space.String(), reason.String()).Inc()
	h.logger.Info("garbage collection",
		"seq", c.Seq,
		"space", space.String(),
		"reason", reason.String(),
		"young", humanize.IBytes(young),
		"promoted", humanize.IBytes(promoted),
		"old", humanize.IBytes(oldAfter))
}

// StartMajorMarking marks the beginning of major incremental marking.
func (h *Heap) StartMajorMarking() {
	if h.majorMarking.CompareAndSwap(false, true) {
		h.logger.Debug("major incremental marking started")
	}
}

// FinishMajorMarking ends incremental marking with a full collection.
func (h *Heap) FinishMajorMarking() {
	if h.majorMarking.CompareAndSwap(true, false) {
		h.CollectGarbage(heap.OldSpace, heap.ReasonFinalizeMarking)
	}
}

// Step is one mutator turn of the simulation: advance the major marking
// schedule, allocate AllocationPerTick bytes, then give the built-in runner a
// top-level turn. tick counts from 0.
func (h *Heap) Step(ctx context.Context, tick int) error {
	if every := h.cfg.MajorMarkingEvery; every > 0 {
		switch {
		case !h.IsMajorMarking() && tick > 0 && tick%every == 0:
			h.markStart = tick
			h.StartMajorMarking()
		case h.IsMajorMarking() && tick-h.markStart >= h.cfg.MajorMarkingTicks:
			h.FinishMajorMarking()
		}
	}

	if err := h.Allocate(h.cfg.AllocationPerTick); err != nil {
		return err
	}
	if h.fg != nil {
		h.fg.RunUntilIdle(ctx)
	}
	return nil
}

// TearDown stops the heap with a last full collection. No task posted by the
// job runs after TearDown returns. It must not be called from a task running
// on the heap's runner.
func (h *Heap) TearDown() {
	if !h.tearingDown.CompareAndSwap(false, true) {
		return
	}
	h.job.CancelTaskIfScheduled()
	h.tasks.CancelAndWait()
	h.CollectGarbage(heap.OldSpace, heap.ReasonTeardown)
	if h.fg != nil {
		h.fg.Shutdown()
	}
	h.logger.Debug("heap torn down", "collections", len(h.Collections()))
}
