//go:build tinygo && baremetal

package hal

import "device/arm"

// guardDepth is only ever touched with interrupts already masked, so it
// needs no atomic access despite being shared across "task" contexts.
var guardDepth int32

// AcquireGuard masks interrupts via CPSID i and returns a token that unmasks
// them again once every nested guard has been released, mirroring the
// nesting-counter pattern used by every RTOS critical section
// (portENTER_CRITICAL/portEXIT_CRITICAL).
func AcquireGuard() Guard {
	arm.Asm("cpsid i")
	guardDepth++
	return Guard{}
}

// Release lifts the interrupt mask once the outermost guard is released.
func (Guard) Release() {
	guardDepth--
	if guardDepth <= 0 {
		guardDepth = 0
		arm.Asm("cpsie i")
	}
}
