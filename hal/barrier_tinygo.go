//go:build tinygo && baremetal

package hal

import "device/arm"

// Barrier issues a data memory barrier, ordering all prior explicit memory
// accesses before any that follow it in program order.
func Barrier() {
	arm.Asm("dmb")
}

// InstructionBarrier issues an instruction synchronization barrier,
// flushing the pipeline so instruction fetch sees the effect of a prior
// write to a code-critical register (e.g. VTOR).
func InstructionBarrier() {
	arm.Asm("dsb")
	arm.Asm("isb")
}
