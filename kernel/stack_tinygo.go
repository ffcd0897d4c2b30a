//go:build tinygo

package kernel

// TinyGo does not implement runtime/debug.Stack; on the firmware build a
// panicking task's stack trace is not recoverable in portable Go, so
// PanicInfo.Stack is left nil there. The handler still gets TaskID and
// Value.
func captureStack() []byte {
	return nil
}
