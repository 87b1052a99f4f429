package controller

import (
	"fmt"
	"sync"

	"github.com/Alia5/matrixkb/scancode"
)

// Queue is the bounded FIFO between the scan tick and the consumer loop.
//
// Cursors are byte-wide and advance modulo the capacity, so occupancy is
// (write - read) & (size - 1). Push never checks the read cursor: a full
// queue silently overwrites the oldest unread slot.
type Queue struct {
	mu    sync.Mutex
	slots []scancode.Event
	mask  uint8
	read  uint8
	write uint8
}

// NewQueue creates a queue. size must be a power of two in [2, 256].
func NewQueue(size int) (*Queue, error) {
	if size < 2 || size > 256 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrQueueSize, size)
	}
	return &Queue{
		slots: make([]scancode.Event, size),
		mask:  uint8(size - 1),
	}, nil
}

// Push appends e. Called only from the scan tick.
func (q *Queue) Push(e scancode.Event) {
	q.mu.Lock()
	q.slots[q.write] = e
	q.write = (q.write + 1) & q.mask
	q.mu.Unlock()
}

// Pop removes the oldest event, if any. Called only from the consumer loop.
func (q *Queue) Pop() (scancode.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if (q.write-q.read)&q.mask == 0 {
		return scancode.Event{}, false
	}
	e := q.slots[q.read]
	q.read = (q.read + 1) & q.mask
	return e, true
}

// Len returns the current occupancy.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int((q.write - q.read) & q.mask)
}

// Cap returns the slot count.
func (q *Queue) Cap() int { return len(q.slots) }

// Reset drops every pending event.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.read, q.write = 0, 0
	q.mu.Unlock()
}
