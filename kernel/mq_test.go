package kernel

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

func TestQueueProducerConsumer(t *testing.T) {
	k := New()
	q := k.NewQueue(4, 16)
	const n = 20

	received := make(chan []byte, n)
	done := make(chan struct{})

	k.TaskCreate("producer", 5, func(ctx *TaskContext) {
		for i := 0; i < n; i++ {
			item := []byte(fmt.Sprintf("item-%02d", i))
			if err := q.Send(ctx, item); err != nil {
				t.Errorf("Send: %v", err)
				return
			}
		}
	})
	k.TaskCreate("consumer", 5, func(ctx *TaskContext) {
		for i := 0; i < n; i++ {
			item, err := q.Receive(ctx)
			if err != nil {
				t.Errorf("Receive: %v", err)
				return
			}
			received <- item
		}
		close(done)
	})
	k.Start()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for consumer to drain the queue")
	}
	close(received)

	i := 0
	for item := range received {
		want := []byte(fmt.Sprintf("item-%02d", i))
		if !bytes.Equal(item, want) {
			t.Fatalf("item %d = %q, want %q", i, item, want)
		}
		i++
	}
	if i != n {
		t.Fatalf("received %d items, want %d", i, n)
	}
}

func TestQueueSendRejectsOversizedItem(t *testing.T) {
	k := New()
	q := k.NewQueue(2, 4)
	result := make(chan error, 1)

	k.TaskCreate("sender", 5, func(ctx *TaskContext) {
		result <- q.Send(ctx, []byte("too-long"))
	})
	k.Start()

	select {
	case err := <-result:
		if err != ErrItemTooLarge {
			t.Fatalf("Send(oversized) = %v, want ErrItemTooLarge", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestQueueTryReceiveFailsWhenEmpty(t *testing.T) {
	k := New()
	q := k.NewQueue(2, 8)
	if _, err := q.TryReceive(); err != ErrQueueEmpty {
		t.Fatalf("TryReceive() on empty queue = %v, want ErrQueueEmpty", err)
	}
}

func TestQueueTrySendFailsWhenFull(t *testing.T) {
	k := New()
	q := k.NewQueue(1, 8)
	if err := q.TrySend([]byte("a")); err != nil {
		t.Fatalf("TrySend(a): %v", err)
	}
	if err := q.TrySend([]byte("b")); err != ErrQueueFull {
		t.Fatalf("TrySend(b) on full queue = %v, want ErrQueueFull", err)
	}
}

func TestQueueTrySendThenTryReceiveRoundTrips(t *testing.T) {
	k := New()
	q := k.NewQueue(2, 8)
	if err := q.TrySend([]byte("hello")); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	item, err := q.TryReceive()
	if err != nil {
		t.Fatalf("TryReceive: %v", err)
	}
	if !bytes.Equal(item, []byte("hello")) {
		t.Fatalf("TryReceive() = %q, want %q", item, "hello")
	}
}

func TestQueueSendBlocksWhenFull(t *testing.T) {
	k := New()
	q := k.NewQueue(1, 8)
	sentTwice := make(chan struct{})

	k.TaskCreate("filler", 5, func(ctx *TaskContext) {
		q.Send(ctx, []byte("a"))
		q.Send(ctx, []byte("b")) // must block until someone Receives
		close(sentTwice)
	})
	k.Start()

	select {
	case <-sentTwice:
		t.Fatal("second Send returned before the queue had room")
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := q.Receive(&TaskContext{k: k, id: IdleTaskID}); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	select {
	case <-sentTwice:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the blocked Send to complete")
	}
}
