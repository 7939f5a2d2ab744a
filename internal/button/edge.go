package button

import (
	"log/slog"
	"sync"
	"time"
)

// EdgeSource dispatches debounced button presses from hardware edge
// events. Pass Handle as the gpio edge handler; call Close before
// releasing the line so a late event cannot dispatch mid-teardown.
type EdgeSource struct {
	disp    Dispatcher
	relayID int
	source  string
	log     *slog.Logger

	mu     sync.Mutex
	deb    debouncer
	closed bool
}

// NewEdgeSource creates an edge-triggered source targeting one relay.
func NewEdgeSource(disp Dispatcher, relayID int, window time.Duration, source string, log *slog.Logger) *EdgeSource {
	return &EdgeSource{
		disp:    disp,
		relayID: relayID,
		source:  source,
		log:     log,
		deb:     debouncer{window: window},
	}
}

// Handle processes one press edge. It is safe to call from the gpio
// event goroutine; after Close it does nothing.
func (s *EdgeSource) Handle(t time.Time) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ok := s.deb.accept(t)
	s.mu.Unlock()

	if !ok {
		s.log.Debug("button press ignored (debounce)", "relay", s.relayID)
		return
	}

	s.log.Info("button press", "relay", s.relayID)
	if _, err := s.disp.Dispatch(s.relayID, s.source); err != nil {
		s.log.Warn("button trigger rejected", "relay", s.relayID, "error", err)
	}
}

// Close stops dispatching. Call it before the gpio line is released.
func (s *EdgeSource) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
