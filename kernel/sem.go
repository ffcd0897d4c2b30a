package kernel

import "sync"

// Semaphore is a counting semaphore with a FIFO wait list, the primitive
// spec §4.6 builds mutexes and bounded queues on top of. The wait list
// saturates at MaxTasks, the task table's own bound, rather than at the
// semaphore's count ceiling — the wait list can never hold more entries
// than there are tasks to put in it, and a small-capacity semaphore with
// many potential waiters must still be able to queue up to MaxTasks of
// them. A task calling Wait past that bound gets ErrWaitListFull instead
// of growing the list without limit, keeping it as fixed-size as
// everything else an ISR can touch.
type Semaphore struct {
	k   *Kernel
	mu  sync.Mutex
	n   int
	max int
	// waiters is a FIFO of blocked tasks: Wait appends at the back,
	// Signal pops the front, and Wait keeps it at most MaxTasks long.
	waiters []TaskID
}

// NewSemaphore creates a counting semaphore starting at count initial,
// bounded above by max.
func (k *Kernel) NewSemaphore(initial, max int) *Semaphore {
	if initial > max {
		initial = max
	}
	return &Semaphore{k: k, n: initial, max: max}
}

// Wait decrements the semaphore, blocking the calling task if it is
// already at zero. Returns ErrWaitListFull if the wait list is already
// at its bound rather than blocking indefinitely.
func (s *Semaphore) Wait(ctx *TaskContext) error {
	s.mu.Lock()
	if s.n > 0 {
		s.n--
		s.mu.Unlock()
		return nil
	}
	if len(s.waiters) >= MaxTasks {
		s.mu.Unlock()
		return ErrWaitListFull
	}
	s.waiters = append(s.waiters, ctx.id)
	s.mu.Unlock()

	s.k.switchFrom(ctx.id, StateBlocked)
	return nil
}

// TryWait decrements the semaphore if it is available without blocking,
// returning ErrWouldBlock instead of queuing the caller when it is not.
func (s *Semaphore) TryWait() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n > 0 {
		s.n--
		return nil
	}
	return ErrWouldBlock
}

// Signal increments the semaphore, or if a task is waiting, hands its
// count directly to the head of the FIFO wait list instead.
func (s *Semaphore) Signal() {
	s.mu.Lock()
	if len(s.waiters) > 0 {
		id := s.waiters[0]
		s.waiters = s.waiters[1:]
		s.mu.Unlock()
		s.k.wake(id)
		return
	}
	if s.n < s.max {
		s.n++
	}
	s.mu.Unlock()
}

// Count returns the current available count without blocking.
func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Waiting returns the number of tasks currently blocked in Wait.
func (s *Semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}
