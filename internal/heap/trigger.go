package heap

// TaskTriggerSize returns the young generation occupancy, in bytes, at which
// a minor GC task should be scheduled.
func TaskTriggerSize(s Spaces, flags Flags) uint64 {
	var youngCapacity uint64
	if flags.StickyMarkBits {
		sticky := s.StickySpace()
		capacity, old := sticky.Capacity(), sticky.OldObjectsSize()
		if old < capacity {
			youngCapacity = capacity - old
		}
	} else {
		youngCapacity = s.NewSpace().TotalCapacity()
	}
	return youngCapacity * uint64(flags.MinorGCTaskTrigger) / 100
}

// TaskTriggerReached reports whether the young generation has grown to
// TaskTriggerSize.
func TaskTriggerReached(s Spaces, flags Flags) bool {
	if flags.StickyMarkBits {
		return s.StickySpace().YoungObjectsSize() >= TaskTriggerSize(s, flags)
	}
	return s.NewSpace().Size() >= TaskTriggerSize(s, flags)
}
