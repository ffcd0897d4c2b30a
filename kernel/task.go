package kernel

// TaskID identifies a task control block by its slot in the kernel's task
// table. Task 0 is always the idle task.
type TaskID uint8

// IdleTaskID is the reserved slot for the task that runs when nothing
// else is ready.
const IdleTaskID TaskID = 0

// MaxTasks bounds the task table, matching the fixed-table sizing the
// rest of this codebase uses for anything ISR-reachable (see
// internal/pool, internal/heap).
const MaxTasks = 16

// TaskState is a task control block's scheduling state.
type TaskState uint8

const (
	StateUnused TaskState = iota
	StateReady
	StateRunning
	StateBlocked
	StateSleeping
	StateDeleted
)

func (s TaskState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateSleeping:
		return "sleeping"
	case StateDeleted:
		return "deleted"
	default:
		return "unused"
	}
}

// TaskFunc is a task's entry point. It is expected to run for the
// lifetime of the task, cooperating with the scheduler through the
// TaskContext it is handed — calling Yield, Sleep, or blocking on a
// semaphore/mutex/queue at the points where it is safe to let another
// task run.
type TaskFunc func(ctx *TaskContext)

// task is one task control block. It is never copied; the kernel always
// holds it by pointer.
type task struct {
	id       TaskID
	name     string
	priority uint8
	state    TaskState
	wakeAt   uint64
	fn       TaskFunc

	// turn is the handoff token: exactly one task ever holds it, and
	// scheduling a task means sending into its turn channel. Buffered to
	// depth 1 so a task handing the token to itself (the only-ready-task
	// case) never deadlocks against its own receive.
	turn chan struct{}

	exited chan struct{}
}

// TaskContext is the handle a running task uses to call back into the
// kernel that scheduled it.
type TaskContext struct {
	k  *Kernel
	id TaskID
}

// ID returns the calling task's own ID.
func (c *TaskContext) ID() TaskID { return c.id }

// Yield gives up the remainder of the current task's turn, making it
// Ready again and letting the scheduler pick the next task to run —
// possibly the same one, if nothing else is Ready.
func (c *TaskContext) Yield() {
	c.k.switchFrom(c.id, StateReady)
}

// Sleep blocks the calling task until at least ticks kernel ticks have
// elapsed.
func (c *TaskContext) Sleep(ticks uint64) {
	c.k.mu.Lock()
	c.k.tasks[c.id].wakeAt = c.k.ticks + ticks
	c.k.mu.Unlock()
	c.k.switchFrom(c.id, StateSleeping)
}
