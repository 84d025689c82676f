// Package heap holds the policy that decides when a background minor
// (young generation) collection runs, and guarantees at most one such
// collection task is pending at any time.
//
// The package does not collect anything itself. It talks to the owning heap
// through the Heap interface and to the embedder through sched.TaskRunner.
package heap

import (
	"minorgc/internal/sched"
)

// NewSpaceStats exposes the counters of a separate young space.
type NewSpaceStats interface {
	TotalCapacity() uint64
	Size() uint64
}

// StickySpaceStats exposes the counters of a sticky-mark-bits space, where
// young and old objects share one region.
type StickySpaceStats interface {
	Capacity() uint64
	OldObjectsSize() uint64
	YoungObjectsSize() uint64
}

// Spaces is the read-only view the trigger calculation needs.
type Spaces interface {
	NewSpace() NewSpaceStats
	StickySpace() StickySpaceStats
}

// Heap is everything MinorGCJob consumes from its owner. Counters are read
// without additional locking; implementations decide what is safe to read
// from which goroutine.
type Heap interface {
	Spaces

	IsTearingDown() bool
	// IsMajorMarking reports whether major incremental marking is active.
	IsMajorMarking() bool
	CollectGarbage(space AllocationSpace, reason GarbageCollectionReason)
	ForegroundTaskRunner() sched.TaskRunner
	TaskManager() *sched.TaskManager
	// EnterVMState switches the attribution state and returns a func that
	// restores the previous one.
	EnterVMState(state VMState) (restore func())
}
