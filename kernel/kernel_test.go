package kernel

import (
	"sync"
	"testing"
	"time"
)

func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
		return true
	case <-time.After(d):
		return false
	}
}

func TestYieldRoundRobinsEqualPriority(t *testing.T) {
	k := New()
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	k.TaskCreate("a", 5, func(ctx *TaskContext) {
		defer wg.Done()
		for i := 0; i < 3; i++ {
			record("a")
			ctx.Yield()
		}
	})
	k.TaskCreate("b", 5, func(ctx *TaskContext) {
		defer wg.Done()
		for i := 0; i < 3; i++ {
			record("b")
			ctx.Yield()
		}
	})

	k.Start()

	if !waitTimeout(&wg, 2*time.Second) {
		t.Fatal("timed out waiting for tasks to finish")
	}

	want := []string{"a", "b", "a", "b", "a", "b"}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != len(want) {
		t.Fatalf("order = %v, want length %d", order, len(want))
	}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("order[%d] = %q, want %q (full: %v)", i, order[i], w, order)
		}
	}
}

func TestHigherPriorityRunsFirst(t *testing.T) {
	k := New()
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	k.TaskCreate("low", 1, func(ctx *TaskContext) {
		defer wg.Done()
		record("low")
	})
	k.TaskCreate("high", 9, func(ctx *TaskContext) {
		defer wg.Done()
		record("high")
	})

	k.Start()

	if !waitTimeout(&wg, 2*time.Second) {
		t.Fatal("timed out waiting for tasks to finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "high" {
		t.Fatalf("order = %v, want [high low]", order)
	}
}

func TestSleepWakesOnSchedule(t *testing.T) {
	k := New()
	woke := make(chan uint64, 1)

	k.TaskCreate("sleeper", 5, func(ctx *TaskContext) {
		ctx.Sleep(5)
		woke <- k.Ticks()
	})
	k.Start()

	// Sleep counts from the tick at which it is called, so the ticks are
	// delivered only once the sleeper is actually asleep; ticks sent before
	// its Sleep call would not count toward its wake-up.
	asleep := func() bool {
		for _, ts := range k.Snapshot().Tasks {
			if ts.Name == "sleeper" && ts.State == StateSleeping {
				return true
			}
		}
		return false
	}
	deadline := time.Now().Add(2 * time.Second)
	for !asleep() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for sleeper to go to sleep")
		}
		time.Sleep(time.Millisecond)
	}

	go func() {
		for i := 0; i < 10; i++ {
			k.Tick()
		}
	}()

	select {
	case tick := <-woke:
		if tick < 5 {
			t.Fatalf("woke at tick %d, want >= 5", tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sleeper to wake")
	}
}

func TestIdleTicksAdvanceWhenNothingElseReady(t *testing.T) {
	k := New()
	before := k.IdleTicks()

	done := make(chan struct{})
	k.TaskCreate("brief", 5, func(ctx *TaskContext) {
		close(done)
	})
	k.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}

	deadline := time.Now().Add(time.Second)
	for k.IdleTicks() == before && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if k.IdleTicks() == before {
		t.Fatal("IdleTicks() never advanced after the only task exited")
	}
}

func TestSnapshotReportsTasks(t *testing.T) {
	k := New()
	block := make(chan struct{})
	ready := make(chan struct{})
	k.TaskCreate("worker", 3, func(ctx *TaskContext) {
		close(ready)
		<-block
	})
	k.Start()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for worker to start")
	}

	snap := k.Snapshot()
	found := false
	for _, ts := range snap.Tasks {
		if ts.Name == "worker" {
			found = true
			if ts.Priority != 3 {
				t.Fatalf("worker priority = %d, want 3", ts.Priority)
			}
		}
	}
	if !found {
		t.Fatal("Snapshot() did not report the worker task")
	}
	close(block)
}
