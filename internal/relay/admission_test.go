package relay

import (
	"sync"
	"testing"
)

func TestAdmissionCeiling(t *testing.T) {
	a := NewAdmission(3)

	for i := 0; i < 3; i++ {
		if !a.TryAdmit() {
			t.Fatalf("admit %d: expected success", i)
		}
	}
	if a.TryAdmit() {
		t.Error("expected rejection at ceiling")
	}
	if a.Active() != 3 {
		t.Errorf("active: got %d, want 3", a.Active())
	}

	a.Release()
	if !a.TryAdmit() {
		t.Error("expected success after release")
	}
}

func TestAdmissionDefaultCeiling(t *testing.T) {
	a := NewAdmission(0)
	if a.Ceiling() != DefaultMaxConcurrent {
		t.Errorf("ceiling: got %d, want %d", a.Ceiling(), DefaultMaxConcurrent)
	}
}

func TestAdmissionRejectionHasNoSideEffect(t *testing.T) {
	a := NewAdmission(1)
	a.TryAdmit()

	for i := 0; i < 5; i++ {
		a.TryAdmit()
	}
	if a.Active() != 1 {
		t.Errorf("active after rejections: got %d, want 1", a.Active())
	}
}

func TestAdmissionConcurrentBurst(t *testing.T) {
	// 0 <= active <= ceiling at all observation points, and exactly the
	// excess is rejected.
	const ceiling = 3
	const attempts = 10

	a := NewAdmission(ceiling)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if a.TryAdmit() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != ceiling {
		t.Errorf("admitted: got %d, want %d", admitted, ceiling)
	}
	if a.Active() != ceiling {
		t.Errorf("active: got %d, want %d", a.Active(), ceiling)
	}

	for i := 0; i < ceiling; i++ {
		a.Release()
	}
	if a.Active() != 0 {
		t.Errorf("active after releases: got %d, want 0", a.Active())
	}
}

func TestAdmissionReleaseNeverGoesNegative(t *testing.T) {
	a := NewAdmission(2)
	a.Release()
	if a.Active() != 0 {
		t.Errorf("active: got %d, want 0", a.Active())
	}
	if !a.TryAdmit() || !a.TryAdmit() {
		t.Error("ceiling should be intact after spurious release")
	}
	if a.TryAdmit() {
		t.Error("expected rejection at ceiling")
	}
}
