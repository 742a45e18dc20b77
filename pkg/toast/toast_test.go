package toast

import (
	"testing"
	"time"

	"github.com/daypanel/daypanel/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue() (*Queue, *utils.MockClock) {
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)}
	return NewQueue(3, 3000*time.Millisecond, clock), clock
}

func TestQueue_PushAndActive(t *testing.T) {
	queue, _ := newTestQueue()

	first := queue.Push(KindSuccess, "Event updated")
	assert.NotEmpty(t, first.Id)

	active := queue.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Event updated", active[0].Message)
	assert.Equal(t, KindSuccess, active[0].Kind)
}

func TestQueue_FourthToastEvictsOldest(t *testing.T) {
	queue, _ := newTestQueue()

	oldest := queue.Push(KindInfo, "one")
	queue.Push(KindInfo, "two")
	queue.Push(KindInfo, "three")
	queue.Push(KindInfo, "four")

	active := queue.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "two", active[0].Message)
	assert.Equal(t, "four", active[2].Message)
	for _, item := range active {
		assert.NotEqual(t, oldest.Id, item.Id)
	}
}

func TestQueue_NeverExceedsCapacity(t *testing.T) {
	queue, _ := newTestQueue()
	for i := 0; i < 10; i++ {
		queue.Push(KindError, "again")
		assert.LessOrEqual(t, len(queue.Active()), 3)
	}
}

func TestQueue_ToastsExpire(t *testing.T) {
	queue, clock := newTestQueue()

	queue.Push(KindSuccess, "short-lived")
	clock.SetNow(clock.Now().Add(2999 * time.Millisecond))
	assert.Len(t, queue.Active(), 1)

	clock.SetNow(clock.Now().Add(2 * time.Millisecond))
	assert.Empty(t, queue.Active())
}

func TestQueue_ExpiredSlotsFreeCapacity(t *testing.T) {
	queue, clock := newTestQueue()

	queue.Push(KindInfo, "one")
	queue.Push(KindInfo, "two")
	queue.Push(KindInfo, "three")
	clock.SetNow(clock.Now().Add(4 * time.Second))

	queue.Push(KindInfo, "fresh")
	assert.Len(t, queue.Active(), 1)
}

func TestQueue_Dismiss(t *testing.T) {
	queue, _ := newTestQueue()
	pushed := queue.Push(KindInfo, "dismiss me")

	assert.True(t, queue.Dismiss(pushed.Id))
	assert.False(t, queue.Dismiss(pushed.Id))
	assert.Empty(t, queue.Active())
}
