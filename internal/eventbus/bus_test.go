package eventbus

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	a := bus.Subscribe()
	b := bus.Subscribe()
	bus.Publish("plan")
	if v := <-a; v != "plan" {
		t.Fatalf("a got %v", v)
	}
	if v := <-b; v != "plan" {
		t.Fatalf("b got %v", v)
	}
	bus.Unsubscribe(a)
	if _, ok := <-a; ok {
		t.Fatalf("expected a closed after unsubscribe")
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewWithBuffer(1)
	ch := bus.Subscribe()
	bus.Publish(1)
	bus.Publish(2)
	if got := bus.Dropped(); got != 1 {
		t.Fatalf("dropped = %d", got)
	}
	if v := <-ch; v != 1 {
		t.Fatalf("expected first event, got %v", v)
	}
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	bus.Publish("ignored")
	bus.Unsubscribe(ch)
	bus.Close()
	late := bus.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("subscription after close should be closed")
	}
}
