package hal

// Barrier publishes stores made before a guard release to any observer
// that synchronizes with the corresponding acquire (spec §4.1, §5's
// happens-before requirement on sem_post/sem_wait).
//
// InstructionBarrier additionally synchronizes with instruction fetch,
// required after writing code-critical registers (e.g. the vector table
// base) before relying on the new value taking effect.
