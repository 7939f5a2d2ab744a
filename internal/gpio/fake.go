package gpio

import "sync"

// FakeOutput is a test double recording logical levels written to it.
// Safe for concurrent use: actuations write from background goroutines
// while tests inspect state.
type FakeOutput struct {
	mu sync.Mutex

	on     bool
	writes []bool

	// SetError, if set, is returned by SetLevel.
	SetError error

	// ReadError, if set, is returned by Level.
	ReadError error

	closed bool
}

// NewFakeOutput creates a FakeOutput at logical OFF.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetLevel records the logical level.
func (f *FakeOutput) SetLevel(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.on = on
	f.writes = append(f.writes, on)
	return nil
}

// Level returns the last level set.
func (f *FakeOutput) Level() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.on, nil
}

// Close drives the fake OFF and marks it closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on = false
	f.closed = true
	return nil
}

// On reports the current logical level.
func (f *FakeOutput) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Writes returns a copy of all logical levels written so far.
func (f *FakeOutput) Writes() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.writes))
	copy(out, f.writes)
	return out
}

// WriteCount returns the number of SetLevel calls that succeeded.
func (f *FakeOutput) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakeInput is a test double for a button line.
type FakeInput struct {
	mu sync.Mutex

	pressed bool

	// ReadError, if set, is returned by Pressed.
	ReadError error

	closed bool
}

// NewFakeInput creates a released FakeInput.
func NewFakeInput() *FakeInput {
	return &FakeInput{}
}

// SetPressed sets the logical state returned by Pressed.
func (f *FakeInput) SetPressed(pressed bool) {
	f.mu.Lock()
	f.pressed = pressed
	f.mu.Unlock()
}

// Pressed returns the scripted state.
func (f *FakeInput) Pressed() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.pressed, nil
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeInput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
