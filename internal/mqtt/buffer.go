package mqtt

// queuedMsg holds a serialized message awaiting replay after reconnect.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog is a fixed-capacity FIFO holding messages while the broker is
// unreachable. When full, the oldest message is overwritten. Not safe
// for concurrent use; the publisher's mutex covers it.
type backlog struct {
	slots    []queuedMsg
	capacity int
	next     int // next write position
	count    int
	dropped  int // messages overwritten since last drain
}

func newBacklog(capacity int) *backlog {
	return &backlog{
		slots:    make([]queuedMsg, capacity),
		capacity: capacity,
	}
}

// push enqueues a message, evicting the oldest when full. It reports
// whether a message was dropped to make room.
func (b *backlog) push(msg queuedMsg) bool {
	evicted := false
	if b.count == b.capacity {
		// next already points at the oldest slot.
		b.dropped++
		evicted = true
	} else {
		b.count++
	}
	b.slots[b.next] = msg
	b.next = (b.next + 1) % b.capacity
	return evicted
}

// drain returns all queued messages oldest-first along with the number
// dropped since the previous drain, and resets the backlog.
func (b *backlog) drain() ([]queuedMsg, int) {
	dropped := b.dropped
	if b.count == 0 {
		b.dropped = 0
		return nil, dropped
	}

	out := make([]queuedMsg, b.count)
	start := (b.next - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		out[i] = b.slots[(start+i)%b.capacity]
	}

	b.count = 0
	b.next = 0
	b.dropped = 0
	return out, dropped
}

func (b *backlog) len() int {
	return b.count
}
