package relay

import (
	"fmt"
	"sort"

	"github.com/sweeney/relay-control/internal/gpio"
)

// Registry owns every relay for the lifetime of the process. It is built
// once from validated configuration; a configuration change means a new
// process and a new registry, never mutation of a live relay.
type Registry struct {
	relays map[int]*Relay
	order  []int
}

// NewRegistry builds a registry from relay definitions and their output
// lines. Definitions sharing a physical line are rejected: two relays on
// one line would fight over the hardware. The configuration layer checks
// this before persisting, but the registry is the last line of defence.
func NewRegistry(defs []Def, outputs map[int]gpio.Output) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no relays configured")
	}

	relays := make(map[int]*Relay, len(defs))
	lineOwner := make(map[int]int, len(defs))
	for _, def := range defs {
		if def.ID < 1 {
			return nil, fmt.Errorf("relay id %d: must be positive", def.ID)
		}
		if def.Duration <= 0 {
			return nil, fmt.Errorf("relay %d: trigger duration must be positive", def.ID)
		}
		if _, dup := relays[def.ID]; dup {
			return nil, fmt.Errorf("relay %d: duplicate id", def.ID)
		}
		if owner, dup := lineOwner[def.Line]; dup {
			return nil, fmt.Errorf("relay %d: line %d already used by relay %d", def.ID, def.Line, owner)
		}
		out, ok := outputs[def.ID]
		if !ok {
			return nil, fmt.Errorf("relay %d: no output line provided", def.ID)
		}
		lineOwner[def.Line] = def.ID
		relays[def.ID] = &Relay{
			id:       def.ID,
			line:     def.Line,
			name:     def.Name,
			duration: def.Duration,
			out:      out,
		}
	}

	order := make([]int, 0, len(relays))
	for id := range relays {
		order = append(order, id)
	}
	sort.Ints(order)

	return &Registry{relays: relays, order: order}, nil
}

// Resolve returns the relay with the given id, or ErrUnknownRelay.
func (r *Registry) Resolve(id int) (*Relay, error) {
	relay, ok := r.relays[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRelay, id)
	}
	return relay, nil
}

// All returns every relay in ascending id order.
func (r *Registry) All() []*Relay {
	out := make([]*Relay, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.relays[id])
	}
	return out
}

// Count returns the number of configured relays.
func (r *Registry) Count() int {
	return len(r.relays)
}
