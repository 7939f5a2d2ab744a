package mqtt

import "testing"

func TestBacklogEmptyDrain(t *testing.T) {
	b := newBacklog(10)
	msgs, dropped := b.drain()
	if msgs != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(msgs))
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
}

func TestBacklogPushAndDrain(t *testing.T) {
	b := newBacklog(10)
	for i := 0; i < 5; i++ {
		b.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	msgs, dropped := b.drain()
	if len(msgs) != 5 {
		t.Fatalf("expected 5 items, got %d", len(msgs))
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
	for i := 0; i < 5; i++ {
		if msgs[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, msgs[i].payload[0])
		}
	}

	// Second drain should be empty.
	msgs, _ = b.drain()
	if msgs != nil {
		t.Errorf("expected nil from second drain, got %d items", len(msgs))
	}
}

func TestBacklogOverflowKeepsNewest(t *testing.T) {
	capacity := 5
	b := newBacklog(capacity)

	// Push capacity+3 items (0..7); the oldest 3 are evicted.
	for i := 0; i < capacity+3; i++ {
		evicted := b.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
		if want := i >= capacity; evicted != want {
			t.Errorf("push %d: evicted=%v, want %v", i, evicted, want)
		}
	}

	msgs, dropped := b.drain()
	if len(msgs) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(msgs))
	}
	if dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}
	for i := 0; i < capacity; i++ {
		want := byte(i + 3)
		if msgs[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, msgs[i].payload[0])
		}
	}
}

func TestBacklogMultipleCycles(t *testing.T) {
	b := newBacklog(5)

	for i := 0; i < 3; i++ {
		b.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	msgs, _ := b.drain()
	if len(msgs) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(msgs))
	}

	for i := 10; i < 14; i++ {
		b.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	msgs, dropped := b.drain()
	if len(msgs) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(msgs))
	}
	if dropped != 0 {
		t.Errorf("cycle 2: expected 0 dropped, got %d", dropped)
	}
	for i, m := range msgs {
		want := byte(10 + i)
		if m.payload[0] != want {
			t.Errorf("cycle 2 item %d: expected %d, got %d", i, want, m.payload[0])
		}
	}
}

func TestBacklogLen(t *testing.T) {
	b := newBacklog(10)
	if b.len() != 0 {
		t.Errorf("expected len 0, got %d", b.len())
	}

	b.push(queuedMsg{topic: "t"})
	b.push(queuedMsg{topic: "t"})
	if b.len() != 2 {
		t.Errorf("expected len 2, got %d", b.len())
	}

	b.drain()
	if b.len() != 0 {
		t.Errorf("expected len 0 after drain, got %d", b.len())
	}
}

func TestBacklogPreservesFields(t *testing.T) {
	b := newBacklog(10)
	b.push(queuedMsg{
		topic:    "home/relay-control/system",
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	msgs, _ := b.drain()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 item, got %d", len(msgs))
	}
	if msgs[0].topic != "home/relay-control/system" {
		t.Errorf("topic: got %s", msgs[0].topic)
	}
	if string(msgs[0].payload) != `{"test":true}` {
		t.Errorf("payload: got %s", msgs[0].payload)
	}
	if msgs[0].qos != 1 {
		t.Errorf("qos: got %d, want 1", msgs[0].qos)
	}
	if !msgs[0].retained {
		t.Error("retained: got false, want true")
	}
}
