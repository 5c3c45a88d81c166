package presence

import (
	"sync"
	"testing"
)

// TestConnectAndPush tests that a connected user receives pushed events.
func TestConnectAndPush(t *testing.T) {
	r := NewRegistry()
	c := r.Connect("vol-1")

	if !r.IsConnected("vol-1") {
		t.Error("expected vol-1 to be connected")
	}

	n := r.Push("vol-1", Event{Kind: "signup", Data: `{"title":"hi"}`})
	if n != 1 {
		t.Errorf("expected 1 delivery, got %d", n)
	}

	ev := <-c.Events()
	if ev.Kind != "signup" {
		t.Errorf("expected kind=signup, got %s", ev.Kind)
	}
}

// TestPushToDisconnectedUser tests that pushes to absent users deliver nothing.
func TestPushToDisconnectedUser(t *testing.T) {
	r := NewRegistry()
	if n := r.Push("nobody", Event{Kind: "signup", Data: "{}"}); n != 0 {
		t.Errorf("expected 0 deliveries, got %d", n)
	}
}

// TestDisconnect tests that a disconnected connection stops receiving.
func TestDisconnect(t *testing.T) {
	r := NewRegistry()
	c := r.Connect("vol-1")
	r.Disconnect(c)

	if r.IsConnected("vol-1") {
		t.Error("expected vol-1 to be disconnected")
	}
	if n := r.Push("vol-1", Event{Kind: "signup", Data: "{}"}); n != 0 {
		t.Errorf("expected 0 deliveries after disconnect, got %d", n)
	}
	if _, open := <-c.Events(); open {
		t.Error("expected event channel to be closed")
	}
}

// TestMultipleConnections tests that two tabs for the same user both receive.
func TestMultipleConnections(t *testing.T) {
	r := NewRegistry()
	c1 := r.Connect("vol-1")
	c2 := r.Connect("vol-1")

	if n := r.Push("vol-1", Event{Kind: "badge", Data: "{}"}); n != 2 {
		t.Errorf("expected 2 deliveries, got %d", n)
	}

	r.Disconnect(c1)
	if !r.IsConnected("vol-1") {
		t.Error("expected vol-1 to stay connected via second tab")
	}
	if n := r.Push("vol-1", Event{Kind: "badge", Data: "{}"}); n != 1 {
		t.Errorf("expected 1 delivery after first tab closed, got %d", n)
	}
	r.Disconnect(c2)
}

// TestFullBufferDoesNotBlock tests that a slow subscriber never blocks Push.
func TestFullBufferDoesNotBlock(t *testing.T) {
	r := NewRegistry()
	c := r.Connect("vol-1")

	// Fill the buffer without draining.
	for i := 0; i < 32; i++ {
		r.Push("vol-1", Event{Kind: "signup", Data: "{}"})
	}
	if n := r.Push("vol-1", Event{Kind: "signup", Data: "{}"}); n != 0 {
		t.Errorf("expected 0 deliveries with full buffer, got %d", n)
	}
	r.Disconnect(c)
}

// TestConcurrentConnectPush tests registry safety under concurrent access.
func TestConcurrentConnectPush(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := r.Connect("vol-1")
			r.Disconnect(c)
		}()
		go func() {
			defer wg.Done()
			r.Push("vol-1", Event{Kind: "signup", Data: "{}"})
		}()
	}
	wg.Wait()
}
