// internal/events/events_test.go
package events

import "testing"

func TestBus_OrderedDelivery(t *testing.T) {
	b := NewBus(8)
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Emit(PongReceived, nil)
	b.Emit(SentParamList, nil)

	first := <-ch
	second := <-ch
	if first.Name != PongReceived || second.Name != SentParamList {
		t.Fatalf("expected pong then sent, got %s then %s", first.Name, second.Name)
	}
	if first.At.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestBus_DropsWhenFull(t *testing.T) {
	b := NewBus(1)
	dropped := 0
	b.OnDrop = func(Event) { dropped++ }

	ch, unsub := b.Subscribe()
	defer unsub()

	b.Emit(Error, "one")
	b.Emit(Error, "two")

	if dropped != 1 {
		t.Fatalf("expected 1 drop, got %d", dropped)
	}
	if e := <-ch; e.Value != "one" {
		t.Fatalf("expected first event kept, got %v", e.Value)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus(1)
	ch, unsub := b.Subscribe()

	unsub()
	unsub()

	if b.Len() != 0 {
		t.Fatalf("expected no subscribers, got %d", b.Len())
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}

	// must not panic with no subscribers
	b.Emit(Error, nil)
}
