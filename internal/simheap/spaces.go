package simheap

import "sync/atomic"

// newSpace is a separate young space with a fixed capacity.
type newSpace struct {
	capacity uint64
	size     atomic.Uint64
}

func (s *newSpace) TotalCapacity() uint64 { return s.capacity }
func (s *newSpace) Size() uint64          { return s.size.Load() }

// stickySpace keeps young and old objects in one region; old objects are
// the ones that survived a minor collection.
type stickySpace struct {
	capacity uint64
	old      atomic.Uint64
	young    atomic.Uint64
}

func (s *stickySpace) Capacity() uint64         { return s.capacity }
func (s *stickySpace) OldObjectsSize() uint64   { return s.old.Load() }
func (s *stickySpace) YoungObjectsSize() uint64 { return s.young.Load() }
