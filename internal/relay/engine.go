package relay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Controller is the trigger entry point shared by the HTTP layer and the
// physical button. The admission handshake is synchronous; the timed
// ON/OFF cycle runs on a background goroutine so no caller ever blocks
// for the trigger duration.
type Controller struct {
	reg       *Registry
	adm       *Admission
	log       *slog.Logger
	observers []Observer

	wg    sync.WaitGroup
	sleep func(time.Duration)

	mu         sync.Mutex
	lastSource map[int]string
}

// NewController wires the registry and admission controller together.
// Observers receive lifecycle notifications for telemetry; they are
// optional and must not block for long.
func NewController(reg *Registry, adm *Admission, log *slog.Logger, observers ...Observer) *Controller {
	return &Controller{
		reg:        reg,
		adm:        adm,
		log:        log,
		observers:  observers,
		sleep:      time.Sleep,
		lastSource: make(map[int]string),
	}
}

// Dispatch admits or rejects a trigger for the given relay. On success
// it returns the duration the relay will be held ON and schedules the
// actuation in the background. On failure it returns one of
// ErrUnknownRelay, ErrAlreadyActive or ErrCapacityExhausted with no side
// effect on GPIO state.
func (c *Controller) Dispatch(id int, source string) (time.Duration, error) {
	r, err := c.reg.Resolve(id)
	if err != nil {
		c.reject(id, source, err)
		return 0, err
	}

	// Guard first, counter second. Same-relay bursts are the common
	// rejection and should never touch the shared counter.
	if !r.guard.tryAcquire() {
		c.reject(id, source, ErrAlreadyActive)
		return 0, ErrAlreadyActive
	}
	if !c.adm.TryAdmit() {
		// The guard is already held at this point; without this release
		// a capacity rejection would leave the relay locked forever.
		r.guard.release()
		c.reject(id, source, ErrCapacityExhausted)
		return 0, ErrCapacityExhausted
	}

	rec := Record{
		ID:       uuid.New(),
		Relay:    r.id,
		Source:   source,
		Start:    time.Now(),
		Duration: r.duration,
	}

	c.mu.Lock()
	c.lastSource[r.id] = source
	c.mu.Unlock()

	c.wg.Add(1)
	go c.actuate(r, rec)

	return r.duration, nil
}

// actuate drives the relay ON, holds it for the configured duration and
// restores it to OFF. The cleanup step runs on every exit path: the OFF
// write, the admission slot and the guard are never skipped, even when
// the ON write fails.
func (c *Controller) actuate(r *Relay, rec Record) {
	defer c.wg.Done()

	var fault error
	defer func() {
		if err := r.out.SetLevel(false); err != nil {
			// Nothing more can be done at this layer; the line cannot be
			// independently verified, so it is presumed OFF.
			c.log.Error("relay OFF write failed, presumed OFF",
				"relay", r.id, "line", r.line, "source", rec.Source, "error", err)
			if fault == nil {
				fault = err
			}
		}
		c.adm.Release()
		r.guard.release()
		for _, o := range c.observers {
			o.ActuationFinished(rec, fault)
		}
	}()

	for _, o := range c.observers {
		o.ActuationStarted(rec)
	}

	if err := r.out.SetLevel(true); err != nil {
		c.log.Error("relay ON write failed",
			"relay", r.id, "line", r.line, "source", rec.Source, "error", err)
		fault = err
		return
	}
	c.log.Info("relay on",
		"relay", r.id, "line", r.line, "source", rec.Source, "duration", rec.Duration, "actuation", rec.ID)

	// A fixed wait, deliberately not cancellable: a trigger always runs
	// its full duration.
	c.sleep(rec.Duration)

	c.log.Info("relay off", "relay", r.id, "line", r.line, "source", rec.Source, "actuation", rec.ID)
}

func (c *Controller) reject(id int, source string, err error) {
	reason := ReasonCode(err)
	c.log.Warn("trigger rejected", "relay", id, "source", source, "reason", reason)
	for _, o := range c.observers {
		o.ActuationRejected(id, source, reason)
	}
}

// Wait blocks until every in-flight actuation has completed its cleanup.
// Used at shutdown, after new triggers have been stopped.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Status is one relay's point-in-time state for status reporting.
type Status struct {
	Relay      int
	Name       string
	Line       int
	On         bool
	Locked     bool
	Duration   time.Duration
	LastSource string
}

// Status reports every relay in ascending id order. The On field is a
// best-effort hardware read-back; a read failure is reported as OFF.
func (c *Controller) Status() []Status {
	relays := c.reg.All()
	out := make([]Status, 0, len(relays))

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range relays {
		on, err := r.out.Level()
		if err != nil {
			c.log.Debug("status read failed", "relay", r.id, "error", err)
			on = false
		}
		out = append(out, Status{
			Relay:      r.id,
			Name:       r.name,
			Line:       r.line,
			On:         on,
			Locked:     r.guard.held(),
			Duration:   r.duration,
			LastSource: c.lastSource[r.id],
		})
	}
	return out
}

// Count returns the number of configured relays.
func (c *Controller) Count() int {
	return c.reg.Count()
}

// Duration returns the configured trigger duration for one relay.
func (c *Controller) Duration(id int) (time.Duration, error) {
	r, err := c.reg.Resolve(id)
	if err != nil {
		return 0, err
	}
	return r.duration, nil
}

// Active returns the number of actuations currently admitted.
func (c *Controller) Active() int {
	return c.adm.Active()
}

// Ceiling returns the global concurrency ceiling.
func (c *Controller) Ceiling() int {
	return c.adm.Ceiling()
}
