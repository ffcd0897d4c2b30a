package hal

// Guard is an acquired interrupt-disable section. The zero value is not a
// valid Guard; obtain one from AcquireGuard. Guards nest: releasing an
// inner guard leaves interrupts disabled until the outer guard is also
// released.
//
// Acquisition never blocks and is safe to call from any context, including
// from inside an already-held guard.
type Guard struct {
	_ struct{} // force explicit construction via AcquireGuard
}
