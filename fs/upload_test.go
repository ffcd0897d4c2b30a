package fs

import (
	"bytes"
	"regexp"
	"testing"
	"time"
)

type fakeSerial struct {
	rx  []byte
	out bytes.Buffer
}

func (s *fakeSerial) TryReadByte() (byte, bool) {
	if len(s.rx) == 0 {
		return 0, false
	}
	b := s.rx[0]
	s.rx = s.rx[1:]
	return b, true
}

func (s *fakeSerial) WriteByte(b byte) error {
	s.out.WriteByte(b)
	return nil
}

func TestUploadStreamsSectorsAndReportsCRC(t *testing.T) {
	f := newTestFS(t)
	payload := bytes.Repeat([]byte{0x42}, 3*SectorSize)
	serial := &fakeSerial{rx: append([]byte(nil), payload...)}

	crc, err := f.Upload("game.bin", uint32(len(payload)), serial, func() {})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if want := CRC16CCITT(payload); crc != want {
		t.Fatalf("crc = 0x%04x, want 0x%04x", crc, want)
	}

	out := serial.out.String()
	if !bytes.HasPrefix([]byte(out), []byte("READY\n")) {
		t.Fatalf("output %q does not start with READY", out)
	}
	if got := bytes.Count([]byte(out), []byte{'#'}); got != 3 {
		t.Fatalf("ack count = %d, want 3 (one per sector)", got)
	}
	okLine := regexp.MustCompile(`\nOK 0x[0-9a-f]{4}\n$`)
	if !okLine.MatchString(out) {
		t.Fatalf("output %q does not end with the OK line", out)
	}

	info, err := f.Stat("game.bin")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size != uint32(len(payload)) {
		t.Fatalf("Stat size = %d, want %d", info.Size, len(payload))
	}

	got := make([]byte, len(payload))
	n, err := f.Read("game.bin", got)
	if err != nil || n != len(payload) || !bytes.Equal(got, payload) {
		t.Fatalf("Read after upload did not round-trip (err=%v n=%d)", err, n)
	}
}

func TestUploadTimesOutOnStalledStream(t *testing.T) {
	old := uploadTimeout
	uploadTimeout = 20 * time.Millisecond
	defer func() { uploadTimeout = old }()

	f := newTestFS(t)
	serial := &fakeSerial{rx: []byte{0x01, 0x02}} // fewer bytes than the declared total

	_, err := f.Upload("stalled.bin", SectorSize, serial, func() {})
	if err != ErrTimeout {
		t.Fatalf("Upload(stalled) = %v, want ErrTimeout", err)
	}
	if _, err := f.Stat("stalled.bin"); err != ErrNotFound {
		t.Fatalf("Stat(stalled) after timeout = %v, want ErrNotFound (entry should be deleted)", err)
	}
}

func TestUploadFailsWhenNameAlreadyExists(t *testing.T) {
	f := newTestFS(t)
	if err := f.Create("dup.bin", []byte("x")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	serial := &fakeSerial{rx: []byte{0x01}}
	if _, err := f.Upload("dup.bin", 1, serial, func() {}); err != ErrExists {
		t.Fatalf("Upload(dup) = %v, want ErrExists", err)
	}
}

func TestUploadRejectsWhenNoSpace(t *testing.T) {
	f := newTestFS(t)
	serial := &fakeSerial{rx: bytes.Repeat([]byte{0x01}, testDataSectors*SectorSize+1)}
	if _, err := f.Upload("big.bin", testDataSectors*SectorSize+1, serial, func() {}); err != ErrNoSpace {
		t.Fatalf("Upload(too big) = %v, want ErrNoSpace", err)
	}
}

func TestCRC16CCITTKnownVector(t *testing.T) {
	// "123456789" is the standard CRC catalog check string; CRC-16/CCITT
	// (poly 0x1021, init 0xFFFF, no reflection, no final XOR) yields
	// 0x29B1 for it.
	got := CRC16CCITT([]byte("123456789"))
	if got != 0x29B1 {
		t.Fatalf("CRC16CCITT(123456789) = 0x%04x, want 0x29b1", got)
	}
}
