package button

import (
	"context"
	"log/slog"
	"time"
)

// Poller dispatches debounced button presses by sampling a logical
// input. A press is a released-to-pressed transition between two
// samples. The first sample only establishes a baseline, so a button
// held down at startup does not fire.
type Poller struct {
	disp    Dispatcher
	relayID int
	source  string
	log     *slog.Logger
	read    func() (bool, error)

	deb       debouncer
	prev      bool
	baselined bool
}

// NewPoller creates a polling source targeting one relay. read samples
// the line; it is typically gpio.Input.Pressed.
func NewPoller(disp Dispatcher, relayID int, window time.Duration, source string, read func() (bool, error), log *slog.Logger) *Poller {
	return &Poller{
		disp:    disp,
		relayID: relayID,
		source:  source,
		log:     log,
		read:    read,
		deb:     debouncer{window: window},
	}
}

// Run samples on every tick until ctx is cancelled. The tick channel and
// now function are injected so tests can drive virtual time. Cancel ctx
// before releasing the gpio line; Run never dispatches after it returns.
func (p *Poller) Run(ctx context.Context, tick <-chan time.Time, now func() time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			p.sample(now())
		}
	}
}

func (p *Poller) sample(t time.Time) {
	pressed, err := p.read()
	if err != nil {
		p.log.Warn("button read error", "relay", p.relayID, "error", err)
		return
	}

	if !p.baselined {
		p.prev = pressed
		p.baselined = true
		return
	}

	edge := pressed && !p.prev
	p.prev = pressed
	if !edge {
		return
	}

	if !p.deb.accept(t) {
		p.log.Debug("button press ignored (debounce)", "relay", p.relayID)
		return
	}

	p.log.Info("button press", "relay", p.relayID)
	if _, err := p.disp.Dispatch(p.relayID, p.source); err != nil {
		p.log.Warn("button trigger rejected", "relay", p.relayID, "error", err)
	}
}
