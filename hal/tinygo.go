//go:build tinygo && baremetal

package hal

import "machine"

type tinyGoHAL struct {
	logger *uartLogger
	serial *uartSerial
	flash  Flash
	tick   TickSource
}

// New returns the baremetal HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1 — used both for
// diagnostics (Logger) and the filesystem upload protocol (Serial).
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		serial: &uartSerial{uart: uart},
		flash:  newBoardFlash(),
		tick:   globalTick,
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) Flash() Flash     { return h.flash }
func (h *tinyGoHAL) Serial() Serial   { return h.serial }
func (h *tinyGoHAL) Tick() TickSource { return h.tick }
