//go:build tinygo && baremetal

package hal

import "machine"

// uartLogger writes diagnostic lines to the configured UART.
type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// uartSerial is the filesystem upload path's byte source/sink.
type uartSerial struct {
	uart *machine.UART
}

func (s *uartSerial) TryReadByte() (byte, bool) {
	if s.uart.Buffered() == 0 {
		return 0, false
	}
	b, err := s.uart.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

func (s *uartSerial) WriteByte(b byte) error {
	return s.uart.WriteByte(b)
}

// sysTickSource is bound to the board's SysTick interrupt (wired up in
// hal.New) and calls fn from that interrupt context, matching spec
// §4.10's tick source contract.
type sysTickSource struct {
	fn      func()
	running bool
}

func (t *sysTickSource) Start(fn func()) {
	t.fn = fn
	t.running = true
}

func (t *sysTickSource) Stop() {
	t.running = false
}

// fire is invoked by the SysTick interrupt handler, SysTick_Handler in
// hal/tinygo_systick.go.
func (t *sysTickSource) fire() {
	if t.running && t.fn != nil {
		t.fn()
	}
}
