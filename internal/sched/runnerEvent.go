// internal/sched/runnerEvent.go

package sched

import (
	"time"
)

// StatusKind represents the type of runner event
type StatusKind int

const (
	StatusPosted StatusKind = iota
	StatusDeferred
	StatusDispatch
	StatusFinish
	StatusDropped
)

// StatusEvent is emitted on every task lifecycle step of a ForegroundRunner.
type StatusEvent struct {
	Time        time.Time
	Kind        StatusKind
	TaskID      TaskID // InvalidTaskID for tasks that carry no id
	NonNestable bool
	Depth       int32 // loop nesting depth at dispatch time
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusPosted:
		return "Posted"
	case StatusDeferred:
		return "Deferred"
	case StatusDispatch:
		return "Dispatch"
	case StatusFinish:
		return "Finish"
	case StatusDropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// taskID extracts the id of tasks that expose one.
func taskID(t Task) TaskID {
	if ided, ok := t.(interface{ ID() TaskID }); ok {
		return ided.ID()
	}
	return InvalidTaskID
}
