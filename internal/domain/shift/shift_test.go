package shift

import (
	"errors"
	"testing"
	"time"
)

func TestLifecycle_StartAndActive(t *testing.T) {
	l := NewLifecycle()

	if _, active := l.Active(); active {
		t.Fatal("fresh lifecycle should have no active shift")
	}

	started, err := l.Start(2, "m.okafor")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if started.ID == "" {
		t.Error("started shift should have an id")
	}
	if started.ShiftNumber != 2 || started.Supervisor != "m.okafor" {
		t.Errorf("started shift = %+v, want number 2 supervisor m.okafor", started)
	}
	if started.StartTime.IsZero() {
		t.Error("started shift should have a start time")
	}

	current, active := l.Active()
	if !active {
		t.Fatal("shift should be active after Start()")
	}
	if current.ID != started.ID {
		t.Errorf("Active() id = %s, want %s", current.ID, started.ID)
	}
}

func TestLifecycle_DoubleStartBlocked(t *testing.T) {
	l := NewLifecycle()

	if _, err := l.Start(1, "a.reyes"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := l.Start(2, "a.reyes"); !errors.Is(err, ErrShiftAlreadyActive) {
		t.Errorf("second Start() error = %v, want ErrShiftAlreadyActive", err)
	}
}

func TestLifecycle_ElapsedIsDerived(t *testing.T) {
	l := NewLifecycle()

	now := time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }

	if _, err := l.Start(1, "a.reyes"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	now = now.Add(90 * time.Minute)
	elapsed, err := l.Elapsed()
	if err != nil {
		t.Fatalf("Elapsed() error = %v", err)
	}
	if elapsed != 90*time.Minute {
		t.Errorf("Elapsed() = %v, want 90m", elapsed)
	}

	// the value must track the clock, not a cached computation
	now = now.Add(30 * time.Minute)
	if elapsed, _ = l.Elapsed(); elapsed != 120*time.Minute {
		t.Errorf("Elapsed() = %v, want 120m", elapsed)
	}
}

func TestLifecycle_ElapsedWithoutShift(t *testing.T) {
	l := NewLifecycle()
	if _, err := l.Elapsed(); !errors.Is(err, ErrNoActiveShift) {
		t.Errorf("Elapsed() error = %v, want ErrNoActiveShift", err)
	}
}

func TestLifecycle_EndClearsState(t *testing.T) {
	l := NewLifecycle()

	started, err := l.Start(3, "j.tanaka")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ended, err := l.End()
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.ID != started.ID {
		t.Errorf("End() id = %s, want %s", ended.ID, started.ID)
	}

	if _, active := l.Active(); active {
		t.Error("shift should not be active after End()")
	}
	if _, err := l.End(); !errors.Is(err, ErrNoActiveShift) {
		t.Errorf("second End() error = %v, want ErrNoActiveShift", err)
	}

	// a fresh shift may start after the previous one ends
	if _, err := l.Start(4, "j.tanaka"); err != nil {
		t.Errorf("Start() after End() error = %v", err)
	}
}
