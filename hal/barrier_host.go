//go:build !tinygo

package hal

import "sync/atomic"

// barrierFence gives the host build something to synchronize on so the
// Go race detector (and a human reader) can see the ordering intent even
// though the platform has no real store buffer to drain.
var barrierFence atomic.Uint32

// Barrier publishes prior stores before a guard is released.
func Barrier() {
	barrierFence.Add(1)
}

// InstructionBarrier synchronizes with instruction fetch. On host there is
// no separate instruction stream to flush, so this is Barrier's twin.
func InstructionBarrier() {
	barrierFence.Add(1)
}
