package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/plantline/opsconsole/internal/application/port"
	"github.com/plantline/opsconsole/internal/domain/event"
	"github.com/plantline/opsconsole/internal/domain/shift"
	"github.com/plantline/opsconsole/internal/domain/wizard"
)

// ShiftNotReadyError rejects an end-shift request while required closeout
// steps are still invalid
type ShiftNotReadyError struct {
	UnmetKeys []string
}

func (e *ShiftNotReadyError) Error() string {
	return fmt.Sprintf("shift not ready to close: %s unmet", strings.Join(e.UnmetKeys, ", "))
}

// ReportWriter renders the closeout summary for a closed shift and returns
// the written file path
type ReportWriter interface {
	WriteCloseoutReport(record *shift.ClosedShift) (string, error)
}

// ShiftStatus is the observable state of the open shift: the shift fields,
// the continuously recomputed elapsed duration, and every wizard step's
// lifecycle state.
type ShiftStatus struct {
	Shift      shift.Shift                 `json:"shift"`
	Elapsed    time.Duration               `json:"elapsed"`
	StepStates map[string]wizard.StepState `json:"step_states"`
}

// ShiftService drives the shift lifecycle and its closeout wizard. A shift
// opens with a fresh orchestrator; steps are confirmed against it; ending
// requires the terminal predicate and persists the full accumulator.
type ShiftService interface {
	StartShift(ctx context.Context, shiftNumber int, supervisor string) (*shift.Shift, error)
	CurrentShift(ctx context.Context) (*ShiftStatus, error)
	WizardSteps(ctx context.Context) ([]wizard.Step, error)
	ConfirmStep(ctx context.Context, key string, payload map[string]interface{}) (wizard.ConfirmResult, error)
	ReopenStep(ctx context.Context, key string) ([]string, error)
	Accumulator(ctx context.Context) (wizard.Snapshot, error)
	EndShift(ctx context.Context) (*shift.ClosedShift, error)
	History(ctx context.Context, limit, offset int) ([]*shift.ClosedShift, error)
}

type shiftServiceImpl struct {
	lifecycle     *shift.Lifecycle
	shiftRepo     port.ShiftRepository
	reportWriter  ReportWriter
	events        port.EventPublisher
	logger        Logger
	minAttendance float64

	mu           sync.Mutex
	orchestrator *wizard.Orchestrator
}

// NewShiftService creates a new ShiftService. reportWriter and events may be
// nil when closeout reports or the audit stream are disabled; a non-positive
// minAttendance falls back to the default floor.
func NewShiftService(
	shiftRepo port.ShiftRepository,
	reportWriter ReportWriter,
	events port.EventPublisher,
	minAttendance float64,
	logger Logger,
) ShiftService {
	if minAttendance <= 0 {
		minAttendance = wizard.MinAttendanceRatio
	}
	return &shiftServiceImpl{
		lifecycle:     shift.NewLifecycle(),
		shiftRepo:     shiftRepo,
		reportWriter:  reportWriter,
		events:        events,
		logger:        logger,
		minAttendance: minAttendance,
	}
}

func (s *shiftServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events != nil {
		s.events.Publish(ctx, evt)
	}
}

// StartShift opens a shift and builds a fresh closeout wizard for it
func (s *shiftServiceImpl) StartShift(ctx context.Context, shiftNumber int, supervisor string) (*shift.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started, err := s.lifecycle.Start(shiftNumber, supervisor)
	if err != nil {
		return nil, err
	}

	orchestrator, err := wizard.NewCloseoutOrchestrator(s.minAttendance)
	if err != nil {
		// undo the start so the lifecycle does not dangle without a wizard
		_, _ = s.lifecycle.End()
		return nil, fmt.Errorf("build closeout wizard: %w", err)
	}
	s.orchestrator = orchestrator

	s.publish(ctx, event.NewEvent(event.TypeShiftStarted, started.ID, map[string]interface{}{
		"shift_number": shiftNumber,
		"supervisor":   supervisor,
	}))

	s.logger.Info("Shift started",
		"shift_id", started.ID, "shift_number", shiftNumber, "supervisor", supervisor)
	return started, nil
}

// CurrentShift reports the open shift with freshly derived elapsed time
func (s *shiftServiceImpl) CurrentShift(ctx context.Context) (*ShiftStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, active := s.lifecycle.Active()
	if !active {
		return nil, shift.ErrNoActiveShift
	}

	elapsed, err := s.lifecycle.Elapsed()
	if err != nil {
		return nil, err
	}

	states := make(map[string]wizard.StepState)
	for _, step := range s.orchestrator.Steps() {
		state, err := s.orchestrator.StepState(step.Key)
		if err != nil {
			return nil, err
		}
		states[step.Key] = state
	}

	return &ShiftStatus{
		Shift:      *current,
		Elapsed:    elapsed,
		StepStates: states,
	}, nil
}

// WizardSteps returns the closeout sequence for the open shift
func (s *shiftServiceImpl) WizardSteps(ctx context.Context) ([]wizard.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orchestrator == nil {
		return nil, shift.ErrNoActiveShift
	}
	return s.orchestrator.Steps(), nil
}

// ConfirmStep forwards a confirm to the open shift's wizard
func (s *shiftServiceImpl) ConfirmStep(ctx context.Context, key string, payload map[string]interface{}) (wizard.ConfirmResult, error) {
	s.mu.Lock()
	orchestrator := s.orchestrator
	current, _ := s.lifecycle.Active()
	s.mu.Unlock()

	if orchestrator == nil {
		return wizard.ConfirmResult{}, shift.ErrNoActiveShift
	}

	result, err := orchestrator.Confirm(key, payload)
	if err != nil {
		return wizard.ConfirmResult{}, err
	}

	if result.Accepted {
		s.publish(ctx, event.NewEvent(event.TypeStepConfirmed, current.ID, map[string]interface{}{
			"step": key,
		}))
		s.logger.Info("Closeout step confirmed", "step", key)
	} else {
		s.logger.Info("Closeout step not ready",
			"step", key, "unmet_keys", strings.Join(result.UnmetKeys, ","), "rule_reason", result.RuleReason)
	}
	return result, nil
}

// ReopenStep reopens a completed step and reports the cascaded resets
func (s *shiftServiceImpl) ReopenStep(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	orchestrator := s.orchestrator
	current, _ := s.lifecycle.Active()
	s.mu.Unlock()

	if orchestrator == nil {
		return nil, shift.ErrNoActiveShift
	}

	cascaded, err := orchestrator.Reopen(key)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.NewEvent(event.TypeStepReopened, current.ID, map[string]interface{}{
		"step":     key,
		"cascaded": strings.Join(cascaded, ","),
	}))

	s.logger.Info("Closeout step reopened",
		"step", key, "cascaded", strings.Join(cascaded, ","))
	return cascaded, nil
}

// Accumulator exposes the read-only merged view of confirmed step outputs
func (s *shiftServiceImpl) Accumulator(ctx context.Context) (wizard.Snapshot, error) {
	s.mu.Lock()
	orchestrator := s.orchestrator
	s.mu.Unlock()

	if orchestrator == nil {
		return wizard.Snapshot{}, shift.ErrNoActiveShift
	}
	return orchestrator.Snapshot(), nil
}

// EndShift closes the shift once the terminal predicate holds, persists
// the closed record with its full accumulator, and writes the closeout
// report. A failed persistence leaves the shift open.
func (s *shiftServiceImpl) EndShift(ctx context.Context) (*shift.ClosedShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orchestrator == nil {
		return nil, shift.ErrNoActiveShift
	}

	if ok, unmet := s.orchestrator.CanFinish(); !ok {
		return nil, &ShiftNotReadyError{UnmetKeys: unmet}
	}

	current, active := s.lifecycle.Active()
	if !active {
		return nil, shift.ErrNoActiveShift
	}

	elapsed, err := s.lifecycle.Elapsed()
	if err != nil {
		return nil, err
	}

	record := &shift.ClosedShift{
		Shift:       *current,
		EndTime:     current.StartTime.Add(elapsed),
		Duration:    elapsed,
		Accumulator: s.orchestrator.Snapshot(),
	}

	if err := s.shiftRepo.SaveClosed(ctx, record); err != nil {
		s.logger.Error("Failed to persist closed shift", "error", err, "shift_id", current.ID)
		return nil, err
	}

	if _, err := s.lifecycle.End(); err != nil {
		return nil, err
	}
	s.orchestrator = nil

	if s.reportWriter != nil {
		path, err := s.reportWriter.WriteCloseoutReport(record)
		if err != nil {
			// the shift is closed and persisted; a report failure is not fatal
			s.logger.Error("Failed to write closeout report", "error", err, "shift_id", record.ID)
		} else {
			s.logger.Info("Closeout report written", "shift_id", record.ID, "path", path)
		}
	}

	s.publish(ctx, event.NewEvent(event.TypeShiftEnded, record.ID, map[string]interface{}{
		"shift_number":     record.ShiftNumber,
		"duration_seconds": int64(record.Duration.Seconds()),
	}))

	s.logger.Info("Shift ended",
		"shift_id", record.ID, "duration", record.Duration.String())
	return record, nil
}

// History lists closed shifts, most recent first
func (s *shiftServiceImpl) History(ctx context.Context, limit, offset int) ([]*shift.ClosedShift, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.shiftRepo.ListClosed(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list closed shifts", "error", err)
		return nil, err
	}
	return records, nil
}
