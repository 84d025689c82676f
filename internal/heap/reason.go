package heap

// AllocationSpace names the region a collection targets.
type AllocationSpace int

const (
	NewSpace AllocationSpace = iota
	OldSpace
)

func (s AllocationSpace) String() string {
	switch s {
	case NewSpace:
		return "new_space"
	case OldSpace:
		return "old_space"
	default:
		return "unknown"
	}
}

// GarbageCollectionReason tags a collection for diagnostics and metrics.
type GarbageCollectionReason int

const (
	ReasonUnknown GarbageCollectionReason = iota
	ReasonAllocationFailure
	ReasonTask
	ReasonFinalizeMarking
	ReasonTesting
	ReasonTeardown
)

func (r GarbageCollectionReason) String() string {
	switch r {
	case ReasonAllocationFailure:
		return "allocation failure"
	case ReasonTask:
		return "task"
	case ReasonFinalizeMarking:
		return "finalize incremental marking"
	case ReasonTesting:
		return "testing"
	case ReasonTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// VMState attributes time spent on the foreground thread.
type VMState int32

const (
	VMStateJS VMState = iota
	VMStateGC
)

func (s VMState) String() string {
	switch s {
	case VMStateJS:
		return "JS"
	case VMStateGC:
		return "GC"
	default:
		return "UNKNOWN"
	}
}
