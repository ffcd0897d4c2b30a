package kernel

import "errors"

var (
	// ErrTooManyTasks is returned by TaskCreate once the task table is
	// full.
	ErrTooManyTasks = errors.New("kernel: too many tasks")

	// ErrWaitListFull is returned by Semaphore.Wait when the semaphore's
	// FIFO wait list has already saturated at its bound.
	ErrWaitListFull = errors.New("kernel: semaphore wait list full")

	// ErrMutexNotOwner is returned by Mutex.Unlock when the caller does
	// not hold the mutex.
	ErrMutexNotOwner = errors.New("kernel: unlock by non-owner")

	// ErrMutexRecursive is returned by Mutex.Lock when the caller already
	// holds the mutex; mutexes in this kernel are non-recursive.
	ErrMutexRecursive = errors.New("kernel: recursive lock")

	// ErrItemTooLarge is returned by Queue.Send when the item exceeds the
	// queue's configured item size.
	ErrItemTooLarge = errors.New("kernel: item exceeds queue item size")

	// ErrWouldBlock is returned by Semaphore.TryWait and Mutex.TryLock
	// when the operation cannot complete immediately instead of blocking
	// the calling task.
	ErrWouldBlock = errors.New("kernel: would block")

	// ErrQueueFull is returned by Queue.TrySend when the queue has no
	// free slot instead of blocking the calling task.
	ErrQueueFull = errors.New("kernel: queue full")

	// ErrQueueEmpty is returned by Queue.TryReceive when the queue has no
	// item ready instead of blocking the calling task.
	ErrQueueEmpty = errors.New("kernel: queue empty")
)
