//go:build !tinygo

package hal

import "sync/atomic"

// The host build has no real interrupt mask to flip. It simulates one
// with a nesting depth so call sites written against Guard behave
// identically on host and target. This is not a mutual-exclusion
// primitive: the host simulation drives exactly one goroutine's worth of
// "current task" logic at a time by convention (see kernel.Kernel), the
// same way real hardware runs exactly one instruction stream at a time.
var guardDepth atomic.Int32

// AcquireGuard disables (simulated) interrupts and returns a token that
// restores the previous state when released. Nesting is counted the way
// FreeRTOS's portENTER_CRITICAL/portEXIT_CRITICAL do: the mask is only
// lifted once the outermost guard is released.
func AcquireGuard() Guard {
	guardDepth.Add(1)
	return Guard{}
}

// Release restores the interrupt mask this guard suspended.
func (Guard) Release() {
	guardDepth.Add(-1)
}

// GuardDepth reports the current nesting depth, for tests and diagnostics.
func GuardDepth() int32 {
	return guardDepth.Load()
}
