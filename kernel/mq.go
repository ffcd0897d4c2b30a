package kernel

import "sync"

// Queue is a bounded message queue gated by a pair of semaphores — one
// counting free slots, one counting filled slots — exactly the
// classic bounded-buffer construction spec §4.7 asks for, with the ring
// itself laid out like the teacher's Mailbox (head/tail indices modulo
// capacity) but guarded by a mutex instead of that type's lock-free CAS
// scheme, since the semaphores only gate how many items may be in flight.
type Queue struct {
	notEmpty *Semaphore
	notFull  *Semaphore

	mu       sync.Mutex
	buf      [][]byte
	head     int
	tail     int
	itemSize int
}

// NewQueue creates a queue holding up to capacity items of at most
// itemSize bytes each.
func (k *Kernel) NewQueue(capacity, itemSize int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		notEmpty: k.NewSemaphore(0, capacity),
		notFull:  k.NewSemaphore(capacity, capacity),
		buf:      make([][]byte, capacity),
		itemSize: itemSize,
	}
}

// Send copies item into the queue, blocking the calling task if the
// queue is full. ErrItemTooLarge is returned without blocking if item
// exceeds the queue's configured item size.
func (q *Queue) Send(ctx *TaskContext, item []byte) error {
	if len(item) > q.itemSize {
		return ErrItemTooLarge
	}
	if err := q.notFull.Wait(ctx); err != nil {
		return err
	}

	cp := make([]byte, len(item))
	copy(cp, item)

	q.mu.Lock()
	q.buf[q.tail] = cp
	q.tail = (q.tail + 1) % len(q.buf)
	q.mu.Unlock()

	q.notEmpty.Signal()
	return nil
}

// TrySend copies item into the queue without blocking, returning
// ErrQueueFull instead of waiting for room when it is already full.
// ErrItemTooLarge is still returned without blocking if item exceeds
// the queue's configured item size.
func (q *Queue) TrySend(item []byte) error {
	if len(item) > q.itemSize {
		return ErrItemTooLarge
	}
	if err := q.notFull.TryWait(); err != nil {
		return ErrQueueFull
	}

	cp := make([]byte, len(item))
	copy(cp, item)

	q.mu.Lock()
	q.buf[q.tail] = cp
	q.tail = (q.tail + 1) % len(q.buf)
	q.mu.Unlock()

	q.notEmpty.Signal()
	return nil
}

// TryReceive removes and returns the oldest item without blocking,
// returning ErrQueueEmpty instead of waiting for an item when the queue
// is empty.
func (q *Queue) TryReceive() ([]byte, error) {
	if err := q.notEmpty.TryWait(); err != nil {
		return nil, ErrQueueEmpty
	}

	q.mu.Lock()
	item := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.mu.Unlock()

	q.notFull.Signal()
	return item, nil
}

// Receive removes and returns the oldest item, blocking the calling task
// if the queue is empty.
func (q *Queue) Receive(ctx *TaskContext) ([]byte, error) {
	if err := q.notEmpty.Wait(ctx); err != nil {
		return nil, err
	}

	q.mu.Lock()
	item := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.mu.Unlock()

	q.notFull.Signal()
	return item, nil
}

// Len reports the number of items currently queued.
func (q *Queue) Len() int {
	return q.notEmpty.Count()
}

// Cap reports the queue's capacity.
func (q *Queue) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
