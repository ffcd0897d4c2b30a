package fs

import (
	"fmt"
	"time"

	"oskernel/hal"
)

// uploadTimeout is the inter-byte silence that fails a stalled upload.
// A var, not a const, so tests can shrink it instead of waiting out a
// real 10 seconds.
var uploadTimeout = 10 * time.Second

func writeSerialString(s hal.Serial, str string) error {
	for i := 0; i < len(str); i++ {
		if err := s.WriteByte(str[i]); err != nil {
			return err
		}
	}
	return nil
}

// Upload runs the streaming upload wire protocol against serial: it
// reserves a total-byte file-table entry up front, replies "READY\n",
// then reads exactly total bytes, writing one flash sector at a time
// and echoing '#' after each sector lands. It reports the CRC-16/CCITT
// of the bytes received in a trailing "\nOK 0x%04x\n" line and returns
// that same checksum to the caller.
//
// yield is called between sectors and while polling for the next byte,
// giving the caller (normally a kernel task's Yield) a chance to run
// other work — this is the only place fs yields mid-operation.
// If 10 seconds pass with no byte arriving, Upload deletes the partial
// entry and fails with ErrTimeout.
func (f *FS) Upload(name string, total uint32, serial hal.Serial, yield func()) (uint16, error) {
	if err := f.requireMounted(); err != nil {
		return 0, err
	}

	if err := f.Create(name, make([]byte, total)); err != nil {
		return 0, err
	}

	g := hal.AcquireGuard()
	entries, err := f.readTable()
	g.Release()
	if err != nil {
		return 0, err
	}
	e, _, ok := findEntry(entries, name)
	if !ok {
		return 0, ErrNotFound
	}

	if err := writeSerialString(serial, "READY\n"); err != nil {
		return 0, err
	}

	sectors := sectorsFor(total)
	crc := crc16Init
	var received uint32
	lastByte := time.Now()

	for sec := uint32(0); sec < sectors; sec++ {
		want := SectorSize
		if remaining := total - received; remaining < SectorSize {
			want = int(remaining)
		}

		var buf [SectorSize]byte
		got := 0
		for got < want {
			b, ok := serial.TryReadByte()
			if !ok {
				if time.Since(lastByte) > uploadTimeout {
					f.Delete(name)
					return 0, ErrTimeout
				}
				if yield != nil {
					yield()
				}
				continue
			}
			buf[got] = b
			got++
			received++
			lastByte = time.Now()
			crc = crc16Update(crc, b)
		}
		for i := got; i < SectorSize; i++ {
			buf[i] = 0xFF
		}

		if err := func() error {
			g := hal.AcquireGuard()
			defer g.Release()
			addr := f.dataOffset(uint32(e.startSector) + sec)
			if err := f.flash.Erase(addr, SectorSize); err != nil {
				return err
			}
			_, err := f.flash.WriteAt(buf[:], addr)
			return err
		}(); err != nil {
			return 0, err
		}

		if err := serial.WriteByte('#'); err != nil {
			return 0, err
		}
		if yield != nil {
			yield()
		}
	}

	if err := writeSerialString(serial, fmt.Sprintf("\nOK 0x%04x\n", crc)); err != nil {
		return 0, err
	}
	return crc, nil
}
