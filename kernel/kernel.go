// Package kernel implements the preemptive multitasking core: task
// control blocks, a priority scheduler with round-robin tie-breaking,
// sleep queues, semaphores, mutexes, bounded message queues, and
// software timers serviced from the tick handler.
//
// The scheduler is grounded on the same shape as sparkos/kernel.Kernel's
// Step()-driven round robin and its tick wait-mask wakeup, generalized
// from "one Step() call runs one task's bounded slice" to real
// goroutines handed a single-token turn to run, which is what lets
// tasks block inside library calls (semaphore waits, queue receives)
// instead of only at the top of a Step function. Only one task's turn
// token is ever outstanding at a time, so despite running on top of the
// Go scheduler's real concurrency, exactly one task's kernel-visible
// state changes at once.
package kernel

import (
	"sync"
	"sync/atomic"

	"oskernel/hal"
)

// Kernel is the scheduler and the owner of every task's control block.
type Kernel struct {
	mu      sync.Mutex
	tasks   [MaxTasks]*task
	count   TaskID
	current TaskID
	cursor  TaskID

	started   bool
	ticks     uint64
	idleTicks atomic.Uint64

	timers  []*Timer
	tickSrc hal.TickSource
}

// New constructs a kernel with its idle task already registered in slot
// 0. Call TaskCreate to add real tasks, then Start to begin dispatch.
func New() *Kernel {
	k := &Kernel{}
	k.spawnIdle()
	return k
}

func (k *Kernel) spawnIdle() {
	fn := func(ctx *TaskContext) {
		for {
			k.idleTicks.Add(1)
			ctx.Yield()
		}
	}
	t := &task{
		id:     IdleTaskID,
		name:   "idle",
		state:  StateReady,
		fn:     fn,
		turn:   make(chan struct{}, 1),
		exited: make(chan struct{}),
	}
	k.tasks[IdleTaskID] = t
	k.count = 1
	go k.taskEntry(t)
}

// TaskCreate registers a new task at the given priority (higher runs
// first) and starts its goroutine. The task does not run until Start is
// called (or, if the kernel is already started, until the scheduler next
// picks it).
func (k *Kernel) TaskCreate(name string, priority uint8, fn TaskFunc) (TaskID, error) {
	k.mu.Lock()
	if k.count >= MaxTasks {
		k.mu.Unlock()
		return 0, ErrTooManyTasks
	}
	id := k.count
	k.count++
	t := &task{
		id:       id,
		name:     name,
		priority: priority,
		state:    StateReady,
		fn:       fn,
		turn:     make(chan struct{}, 1),
		exited:   make(chan struct{}),
	}
	k.tasks[id] = t
	k.mu.Unlock()

	go k.taskEntry(t)
	return id, nil
}

// Start hands the first turn to the highest-priority ready task. It
// returns immediately; tasks run in their own goroutines from then on.
func (k *Kernel) Start() {
	k.mu.Lock()
	if k.started {
		k.mu.Unlock()
		return
	}
	k.started = true
	next := k.pickNext()
	k.current = next
	nt := k.tasks[next]
	k.mu.Unlock()

	nt.turn <- struct{}{}
}

// AttachTick wires the kernel's tick handler to a hardware or simulated
// tick source, exactly the way spec §4.5 names the tick source as one of
// the kernel's four collaborator seams.
func (k *Kernel) AttachTick(src hal.TickSource) {
	k.tickSrc = src
	src.Start(k.Tick)
}

// DetachTick stops the attached tick source, if any.
func (k *Kernel) DetachTick() {
	if k.tickSrc != nil {
		k.tickSrc.Stop()
	}
}

// Tick advances the kernel's time base by one tick, wakes any task whose
// sleep has elapsed, and services software timers. It is meant to run
// from the platform's tick source the same way SysTick_Handler does on
// the baremetal build (hal/tinygo_systick.go) — briefly, and without
// itself blocking.
func (k *Kernel) Tick() {
	k.mu.Lock()
	k.ticks++
	now := k.ticks

	for i := TaskID(1); i < k.count; i++ {
		t := k.tasks[i]
		if t != nil && t.state == StateSleeping && now >= t.wakeAt {
			t.state = StateReady
		}
	}

	var due []func()
	for _, tm := range k.timers {
		if tm.active && now >= tm.deadline {
			if tm.mode == TimerPeriodic {
				tm.deadline = now + tm.period
			} else {
				tm.active = false
			}
			due = append(due, tm.fn)
		}
	}
	k.mu.Unlock()

	for _, fn := range due {
		if fn != nil {
			fn()
		}
	}
}

// Ticks returns the current tick count.
func (k *Kernel) Ticks() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ticks
}

// IdleTicks returns the number of turns the idle task has run, a rough
// measure of spare CPU capacity.
func (k *Kernel) IdleTicks() uint64 {
	return k.idleTicks.Load()
}

// TaskSnapshot is a point-in-time copy of one task's scheduling state,
// safe to hold onto after the kernel has moved on.
type TaskSnapshot struct {
	ID       TaskID
	Name     string
	Priority uint8
	State    TaskState
}

// Snapshot is a point-in-time copy of the whole scheduler, for the host
// debug dashboard (cmd/kdash) and for tests that want to assert on
// scheduling state without racing the live task table.
type Snapshot struct {
	Ticks     uint64
	IdleTicks uint64
	Current   TaskID
	Tasks     []TaskSnapshot
}

// Snapshot copies the current tick count and every live task's state.
func (k *Kernel) Snapshot() Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()

	s := Snapshot{
		Ticks:     k.ticks,
		IdleTicks: k.idleTicks.Load(),
		Current:   k.current,
	}
	for i := TaskID(0); i < k.count; i++ {
		t := k.tasks[i]
		if t == nil {
			continue
		}
		s.Tasks = append(s.Tasks, TaskSnapshot{
			ID:       t.id,
			Name:     t.name,
			Priority: t.priority,
			State:    t.state,
		})
	}
	return s
}

// pickNext scans the task table for the highest-priority Ready task,
// round-robining among ties by resuming the scan just past the last
// task picked. Falls back to the idle task when nothing else is ready.
// Callers must hold k.mu.
func (k *Kernel) pickNext() TaskID {
	var maxPrio uint8
	found := false
	for i := TaskID(1); i < k.count; i++ {
		t := k.tasks[i]
		if t != nil && t.state == StateReady {
			if !found || t.priority > maxPrio {
				maxPrio = t.priority
				found = true
			}
		}
	}
	if !found {
		return IdleTaskID
	}

	for i := TaskID(1); i <= k.count; i++ {
		id := (k.cursor + i) % k.count
		if id == IdleTaskID {
			continue
		}
		t := k.tasks[id]
		if t != nil && t.state == StateReady && t.priority == maxPrio {
			k.cursor = id
			return id
		}
	}
	return IdleTaskID
}

// switchFrom is every preemption point in the kernel: a task marks
// itself into newState, the scheduler picks whoever runs next, and the
// caller's goroutine blocks on its own turn token until it is scheduled
// again. A tick that wakes a higher-priority task does not interrupt a
// running task mid-instruction — Go gives no portable way to do that
// without real hardware exception entry — so priority takes effect at
// the next switchFrom call the running task makes, the same way a task
// that never yields or blocks starves lower-priority tasks on any
// cooperative scheduler.
func (k *Kernel) switchFrom(id TaskID, newState TaskState) {
	k.mu.Lock()
	k.tasks[id].state = newState
	next := k.pickNext()
	k.current = next
	nt := k.tasks[next]
	me := k.tasks[id]
	k.mu.Unlock()

	nt.turn <- struct{}{}
	<-me.turn

	k.mu.Lock()
	k.tasks[id].state = StateRunning
	k.mu.Unlock()
}

// wake makes a Blocked or Sleeping task Ready without granting it the
// turn immediately; it becomes eligible at the next switchFrom.
func (k *Kernel) wake(id TaskID) {
	k.mu.Lock()
	t := k.tasks[id]
	if t != nil && (t.state == StateBlocked || t.state == StateSleeping) {
		t.state = StateReady
	}
	k.mu.Unlock()
}

func (k *Kernel) taskExit(id TaskID) {
	k.mu.Lock()
	k.tasks[id].state = StateDeleted
	next := k.pickNext()
	k.current = next
	nt := k.tasks[next]
	k.mu.Unlock()

	nt.turn <- struct{}{}
}

// taskEntry is the goroutine body for every task, including idle. It
// waits for its first turn, then runs fn — restarting fn from the top if
// it panics, per the "resume the faulting task" default (spec §4.5,
// SPEC_FULL.md's Open Question resolution). Go's panic/recover unwinds
// the stack, so "resume" here means the task's entry point runs again
// rather than the exact faulting instruction resuming — the closest a
// portable Go program can come to a real CPU's exception-return
// behavior.
func (k *Kernel) taskEntry(t *task) {
	<-t.turn
	for {
		k.mu.Lock()
		t.state = StateRunning
		k.mu.Unlock()

		if !k.runTaskStep(t) {
			break
		}
	}
	k.taskExit(t.id)
	close(t.exited)
}

func (k *Kernel) runTaskStep(t *task) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			triggerPanic(PanicInfo{TaskID: t.id, Value: r})
		}
	}()
	ctx := &TaskContext{k: k, id: t.id}
	t.fn(ctx)
	return false
}
