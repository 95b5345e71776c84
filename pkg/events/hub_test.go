package events

import "testing"

func TestHubPublish(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	if h.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d, want 2", h.Subscribers())
	}

	if n := h.Publish(DatasetReloaded, DatasetReloadedEvent{Path: "thrust.csv", Rows: 3}); n != 2 {
		t.Fatalf("Publish() delivered to %d, want 2", n)
	}
	for _, ch := range []chan Event{a, b} {
		ev := <-ch
		if ev.Name != DatasetReloaded {
			t.Errorf("event name = %q", ev.Name)
		}
		p, err := DecodeAs[DatasetReloadedEvent](ev)
		if err != nil {
			t.Fatal(err)
		}
		if p.Path != "thrust.csv" || p.Rows != 3 {
			t.Errorf("payload = %+v", p)
		}
	}

	h.Unsubscribe(b)
	if _, ok := <-b; ok {
		t.Errorf("unsubscribed channel should be closed")
	}
	h.Unsubscribe(b)
	if h.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", h.Subscribers())
	}
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for i := 0; i < subscriberBuffer; i++ {
		h.Publish(DatasetReloaded, i)
	}
	if n := h.Publish(DatasetReloaded, "overflow"); n != 0 {
		t.Errorf("full subscriber received an event")
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered %d events, want %d", len(ch), subscriberBuffer)
	}
}

func TestNilHub(t *testing.T) {
	var h *Hub
	if h.Publish(DatasetReloaded, nil) != 0 || h.Subscribers() != 0 {
		t.Errorf("nil hub should drop events")
	}
	if v, err := DecodeAs[DatasetReloadedEvent](Event{}); err != nil || v.Rows != 0 {
		t.Errorf("empty payload should decode to zero value")
	}
}
