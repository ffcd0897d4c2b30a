package kernel

// TimerMode selects whether a Timer fires once or repeats.
type TimerMode uint8

const (
	TimerOneShot TimerMode = iota
	TimerPeriodic
)

// Timer is a software timer serviced from Kernel.Tick, grounded on the
// same 1ms tick-counter shape as the teacher's System.StartTick, but
// driving callbacks instead of a plain counter.
type Timer struct {
	mode     TimerMode
	period   uint64
	deadline uint64
	active   bool
	fn       func()
}

// NewTimer registers a timer that calls fn after periodTicks ticks (and
// every periodTicks ticks thereafter, if mode is TimerPeriodic). The
// timer does not start counting until Start is called.
func (k *Kernel) NewTimer(mode TimerMode, periodTicks uint64, fn func()) *Timer {
	t := &Timer{mode: mode, period: periodTicks, fn: fn}
	k.mu.Lock()
	k.timers = append(k.timers, t)
	k.mu.Unlock()
	return t
}

// Start (re)arms the timer relative to the kernel's current tick count.
func (t *Timer) Start(k *Kernel) {
	k.mu.Lock()
	t.deadline = k.ticks + t.period
	t.active = true
	k.mu.Unlock()
}

// Stop disarms the timer. A periodic timer that is due on the same tick
// Stop is called from will not fire again after this call returns.
func (t *Timer) Stop(k *Kernel) {
	k.mu.Lock()
	t.active = false
	k.mu.Unlock()
}

// Active reports whether the timer is currently armed.
func (t *Timer) Active(k *Kernel) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return t.active
}
