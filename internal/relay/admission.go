package relay

import "sync"

// DefaultMaxConcurrent is the admission ceiling used when none is
// configured.
const DefaultMaxConcurrent = 3

// Admission enforces the global ceiling on concurrently active
// actuations. Rejected callers are not queued and no fairness is
// promised: ties go to whichever attempt runs its check first.
type Admission struct {
	mu      sync.Mutex
	active  int
	ceiling int
}

// NewAdmission creates an admission controller with the given ceiling.
// A ceiling below one falls back to DefaultMaxConcurrent.
func NewAdmission(ceiling int) *Admission {
	if ceiling < 1 {
		ceiling = DefaultMaxConcurrent
	}
	return &Admission{ceiling: ceiling}
}

// TryAdmit atomically claims a slot if one is free. A false return has
// no side effect.
func (a *Admission) TryAdmit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active >= a.ceiling {
		return false
	}
	a.active++
	return true
}

// Release returns a slot. Callers must release exactly once per
// successful TryAdmit, on every exit path; a missed release permanently
// leaks capacity.
func (a *Admission) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active > 0 {
		a.active--
	}
}

// Active returns the number of slots currently claimed.
func (a *Admission) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Ceiling returns the configured maximum.
func (a *Admission) Ceiling() int {
	return a.ceiling
}
