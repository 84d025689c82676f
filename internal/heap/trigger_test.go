package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskTriggerSizeNewSpace(t *testing.T) {
	h := newFakeHeap()
	flags := Flags{MinorGCTaskTrigger: 25}

	assert.Equal(t, uint64(250_000), TaskTriggerSize(h, flags))

	h.newSpace.size = 249_999
	assert.False(t, TaskTriggerReached(h, flags))
	h.newSpace.size = 250_000
	assert.True(t, TaskTriggerReached(h, flags))
}

func TestTaskTriggerSizeSticky(t *testing.T) {
	h := newFakeHeap()
	h.stickySpace.old = 400_000
	flags := Flags{MinorGCTaskTrigger: 50, StickyMarkBits: true}

	assert.Equal(t, uint64(300_000), TaskTriggerSize(h, flags))

	// new space counters are ignored in sticky mode
	h.newSpace.size = 1_000_000
	h.stickySpace.young = 299_999
	assert.False(t, TaskTriggerReached(h, flags))
	h.stickySpace.young = 300_000
	assert.True(t, TaskTriggerReached(h, flags))
}

func TestTaskTriggerDegeneratePercentages(t *testing.T) {
	h := newFakeHeap()

	zero := Flags{MinorGCTaskTrigger: 0}
	assert.Equal(t, uint64(0), TaskTriggerSize(h, zero))
	assert.True(t, TaskTriggerReached(h, zero), "zero percent triggers on an empty young generation")

	over := Flags{MinorGCTaskTrigger: 150}
	h.newSpace.size = h.newSpace.capacity
	assert.Equal(t, uint64(1_500_000), TaskTriggerSize(h, over))
	assert.False(t, TaskTriggerReached(h, over), "above a hundred percent never triggers")
}

func TestTaskTriggerStickyOldExceedsCapacity(t *testing.T) {
	h := newFakeHeap()
	h.stickySpace.old = h.stickySpace.capacity + 1
	assert.Equal(t, uint64(0), TaskTriggerSize(h, Flags{MinorGCTaskTrigger: 80, StickyMarkBits: true}))
}

func TestTaskTriggerFloors(t *testing.T) {
	h := newFakeHeap()
	h.newSpace.capacity = 999
	assert.Equal(t, uint64(329), TaskTriggerSize(h, Flags{MinorGCTaskTrigger: 33}))
}
