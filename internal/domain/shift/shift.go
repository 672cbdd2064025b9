// Package shift models the active-shift lifecycle: a shift is either open
// or not, and while open it carries its start time, shift number and
// supervisor. Elapsed duration is derived on every observation, never
// stored.
package shift

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrShiftAlreadyActive is returned when starting while a shift is open
	ErrShiftAlreadyActive = errors.New("a shift is already active")

	// ErrNoActiveShift is returned when observing or ending without an open shift
	ErrNoActiveShift = errors.New("no active shift")
)

// Shift is the transient per-shift record, created on start and cleared on
// end-shift completion
type Shift struct {
	ID          string    `json:"id"`
	ShiftNumber int       `json:"shift_number"`
	Supervisor  string    `json:"supervisor"`
	StartTime   time.Time `json:"start_time"`
}

// Lifecycle tracks whether a shift is open. States are NoActiveShift and
// ShiftActive; Start and End are the only transitions.
type Lifecycle struct {
	mu      sync.Mutex
	current *Shift
	clock   func() time.Time
}

// NewLifecycle creates a lifecycle with no active shift
func NewLifecycle() *Lifecycle {
	return &Lifecycle{clock: time.Now}
}

// Start opens a shift, stamping its start time. Only valid with no active
// shift.
func (l *Lifecycle) Start(shiftNumber int, supervisor string) (*Shift, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		return nil, ErrShiftAlreadyActive
	}

	l.current = &Shift{
		ID:          uuid.NewString(),
		ShiftNumber: shiftNumber,
		Supervisor:  supervisor,
		StartTime:   l.clock(),
	}
	shift := *l.current
	return &shift, nil
}

// Active returns the open shift, or false when none is open
func (l *Lifecycle) Active() (*Shift, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return nil, false
	}
	shift := *l.current
	return &shift, true
}

// Elapsed recomputes the open shift's duration from its start time. The
// value is derived at every observation; "now" advances independent of any
// state transition, so caching it would go stale.
func (l *Lifecycle) Elapsed() (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return 0, ErrNoActiveShift
	}
	return l.clock().Sub(l.current.StartTime), nil
}

// End closes the shift and clears its fields. The caller is responsible
// for checking the closeout wizard's terminal predicate first.
func (l *Lifecycle) End() (*Shift, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return nil, ErrNoActiveShift
	}
	ended := *l.current
	l.current = nil
	return &ended, nil
}
