package kernel

import "sync"

// Mutex is a non-recursive binary semaphore with owner tracking, built
// directly on the same wait-list discipline as Semaphore (spec §4.6
// describes a mutex as "a semaphore with an owner").
type Mutex struct {
	k       *Kernel
	mu      sync.Mutex
	held    bool
	owner   TaskID
	waiters []TaskID
}

// NewMutex creates an unheld mutex.
func (k *Kernel) NewMutex() *Mutex {
	return &Mutex{k: k}
}

// Lock acquires the mutex, blocking if another task holds it.
// ErrMutexRecursive is returned instead of deadlocking if the calling
// task already owns it.
func (m *Mutex) Lock(ctx *TaskContext) error {
	m.mu.Lock()
	if !m.held {
		m.held = true
		m.owner = ctx.id
		m.mu.Unlock()
		return nil
	}
	if m.owner == ctx.id {
		m.mu.Unlock()
		return ErrMutexRecursive
	}
	m.waiters = append(m.waiters, ctx.id)
	m.mu.Unlock()

	m.k.switchFrom(ctx.id, StateBlocked)
	// Unlock transferred ownership to us directly before waking us.
	return nil
}

// TryLock acquires the mutex only if it is currently unheld, returning
// ErrWouldBlock instead of blocking when it is not. Like Lock, it
// reports ErrMutexRecursive rather than ErrWouldBlock if the caller
// already owns it.
func (m *Mutex) TryLock(ctx *TaskContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held {
		m.held = true
		m.owner = ctx.id
		return nil
	}
	if m.owner == ctx.id {
		return ErrMutexRecursive
	}
	return ErrWouldBlock
}

// Unlock releases the mutex. Only the owning task may call it;
// ErrMutexNotOwner is returned otherwise. If another task is waiting,
// ownership transfers to it directly rather than briefly returning to
// the unheld state.
func (m *Mutex) Unlock(ctx *TaskContext) error {
	m.mu.Lock()
	if !m.held || m.owner != ctx.id {
		m.mu.Unlock()
		return ErrMutexNotOwner
	}
	if len(m.waiters) > 0 {
		next := m.waiters[0]
		m.waiters = m.waiters[1:]
		m.owner = next
		m.mu.Unlock()
		m.k.wake(next)
		return nil
	}
	m.held = false
	m.owner = 0
	m.mu.Unlock()
	return nil
}

// Owner reports the current owning task and whether the mutex is held.
func (m *Mutex) Owner() (id TaskID, held bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner, m.held
}
