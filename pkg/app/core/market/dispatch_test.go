package market

import (
	"sync"
	"testing"
	"time"
)

func TestAsyncDispatcherPreservesOrder(t *testing.T) {
	d := NewAsyncDispatcher(nil)
	d.Start()

	var mu sync.Mutex
	var got []string
	cb := func(tx Transaction) {
		mu.Lock()
		got = append(got, tx.ID)
		mu.Unlock()
	}

	want := []string{"a", "b", "c", "d", "e"}
	for _, id := range want {
		d.Dispatch(cb, Transaction{ID: id})
	}
	d.Close()

	if len(got) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestAsyncDispatcherDoesNotBlockOnSlowCallback(t *testing.T) {
	d := NewAsyncDispatcher(nil)
	d.Start()
	defer d.Close()

	release := make(chan struct{})
	defer close(release)
	slow := func(Transaction) { <-release }

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			d.Dispatch(slow, Transaction{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Dispatch blocked behind a slow callback")
	}
}

func TestCloseWithoutStartDrains(t *testing.T) {
	d := NewAsyncDispatcher(nil)
	n := 0
	d.Dispatch(func(Transaction) { n++ }, Transaction{})
	d.Dispatch(func(Transaction) { n++ }, Transaction{})
	d.Close()

	if n != 2 {
		t.Errorf("expected 2 deliveries after Close, got %d", n)
	}
	d.Close() // second Close returns
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	d := NewAsyncDispatcher(nil)
	d.Start()
	d.Close()

	called := false
	d.Dispatch(func(Transaction) { called = true }, Transaction{})
	if d.Pending() != 0 || called {
		t.Errorf("expected dispatch after close to be dropped")
	}
}

func TestDispatchersRecoverFromPanics(t *testing.T) {
	boom := func(Transaction) { panic("boom") }

	InlineDispatcher{}.Dispatch(boom, Transaction{ID: "x"})

	d := NewAsyncDispatcher(nil)
	d.Start()
	after := false
	d.Dispatch(boom, Transaction{ID: "y"})
	d.Dispatch(func(Transaction) { after = true }, Transaction{ID: "z"})
	d.Close()

	if !after {
		t.Errorf("expected worker to keep running after a panicking callback")
	}
}

func TestNilCallbackSkipped(t *testing.T) {
	InlineDispatcher{}.Dispatch(nil, Transaction{})

	d := NewAsyncDispatcher(nil)
	d.Dispatch(nil, Transaction{})
	if d.Pending() != 0 {
		t.Errorf("expected nil callback not to be queued")
	}
	d.Close()
}
