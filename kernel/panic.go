package kernel

import "sync/atomic"

// PanicInfo describes a task that hit a Go panic — this kernel's
// portable stand-in for a non-interrupt CPU exception (illegal
// instruction, bus fault) landing on a task's own stack rather than the
// dispatcher's.
type PanicInfo struct {
	TaskID TaskID
	Value  any
	Stack  []byte
}

var (
	panicActive  atomic.Bool
	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether any task has ever panicked.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs a process-wide panic handler, invoked once
// per panic (a restarted task that panics again is reported again) in
// addition to the kernel's own default recovery.
// It must not itself panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

func triggerPanic(info PanicInfo) {
	panicActive.Store(true)
	info.Stack = captureStack()
	if v := panicHandler.Load(); v != nil {
		if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
			fn(info)
		}
	}
}
