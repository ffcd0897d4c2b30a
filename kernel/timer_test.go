package kernel

import (
	"sync/atomic"
	"testing"
)

func TestOneShotTimerFiresOnce(t *testing.T) {
	k := New()
	var fired atomic.Int32
	timer := k.NewTimer(TimerOneShot, 3, func() {
		fired.Add(1)
	})
	timer.Start(k)

	for i := 0; i < 10; i++ {
		k.Tick()
	}

	if got := fired.Load(); got != 1 {
		t.Fatalf("fired = %d, want 1", got)
	}
}

func TestPeriodicTimerFiresRepeatedly(t *testing.T) {
	k := New()
	var fired atomic.Int32
	timer := k.NewTimer(TimerPeriodic, 4, func() {
		fired.Add(1)
	})
	timer.Start(k)

	for i := 0; i < 17; i++ {
		k.Tick()
	}

	if got := fired.Load(); got != 4 {
		t.Fatalf("fired = %d, want 4 (ticks 4, 8, 12, 16)", got)
	}
}

func TestTimerStopPreventsFurtherFiring(t *testing.T) {
	k := New()
	var fired atomic.Int32
	timer := k.NewTimer(TimerPeriodic, 2, func() {
		fired.Add(1)
	})
	timer.Start(k)

	for i := 0; i < 5; i++ {
		k.Tick()
	}
	timer.Stop(k)
	before := fired.Load()

	for i := 0; i < 10; i++ {
		k.Tick()
	}

	if got := fired.Load(); got != before {
		t.Fatalf("fired advanced from %d to %d after Stop", before, got)
	}
}

func TestTimerNotActiveUntilStarted(t *testing.T) {
	k := New()
	timer := k.NewTimer(TimerOneShot, 1, func() {})
	if timer.Active(k) {
		t.Fatal("Active() = true before Start")
	}
	timer.Start(k)
	if !timer.Active(k) {
		t.Fatal("Active() = false after Start")
	}
}
