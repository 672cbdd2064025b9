package wizard

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrUnknownStep is returned when a step key is not part of the sequence
	ErrUnknownStep = errors.New("unknown wizard step")

	// ErrStepAlreadyCompleted is returned when Open is called on a
	// completed step; completed steps are revisited via Reopen
	ErrStepAlreadyCompleted = errors.New("step already completed")
)

// ConfirmResult reports the outcome of confirming a step. Gating failures
// are results, not errors: Accepted is false and UnmetKeys enumerates the
// prior steps that are not yet valid, so the caller can message them.
type ConfirmResult struct {
	Accepted   bool     `json:"accepted"`
	UnmetKeys  []string `json:"unmet_keys,omitempty"`
	RuleReason string   `json:"rule_reason,omitempty"`

	// InvalidatedKeys lists completed dependents that were reset because
	// this confirmation replaced data they were checked against
	InvalidatedKeys []string `json:"invalidated_keys,omitempty"`
}

// Orchestrator drives an ordered sequence of wizard steps. Each step's
// completion is gated on the validity of its declared prior steps,
// evaluated against a consistent accumulator snapshot, plus an optional
// step-local rule. Finishing requires a fixed subset of step keys to be
// valid simultaneously so genuinely optional steps never block closure.
type Orchestrator struct {
	mu           sync.Mutex
	steps        []Step
	byKey        map[string]int
	states       map[string]StepState
	acc          *Accumulator
	terminalKeys []string
	clock        func() time.Time
}

// NewOrchestrator builds an orchestrator over the given step sequence.
// It rejects duplicate keys, required keys that do not name an earlier
// step, and terminal keys that are not part of the sequence.
func NewOrchestrator(steps []Step, terminalKeys []string) (*Orchestrator, error) {
	byKey := make(map[string]int, len(steps))
	states := make(map[string]StepState, len(steps))

	for i, step := range steps {
		if step.Key == "" {
			return nil, fmt.Errorf("step %d has an empty key", i)
		}
		if _, exists := byKey[step.Key]; exists {
			return nil, fmt.Errorf("duplicate step key %q", step.Key)
		}
		for _, required := range step.RequiredPriorKeys {
			priorIdx, ok := byKey[required]
			if !ok || priorIdx >= i {
				return nil, fmt.Errorf("step %q requires %q which is not an earlier step", step.Key, required)
			}
		}
		byKey[step.Key] = i
		states[step.Key] = StepNotStarted
	}

	for _, key := range terminalKeys {
		if _, ok := byKey[key]; !ok {
			return nil, fmt.Errorf("terminal key %q is not a wizard step", key)
		}
	}

	return &Orchestrator{
		steps:        steps,
		byKey:        byKey,
		states:       states,
		acc:          NewAccumulator(),
		terminalKeys: append([]string(nil), terminalKeys...),
		clock:        time.Now,
	}, nil
}

// Steps returns the declared sequence in order
func (o *Orchestrator) Steps() []Step {
	return o.steps
}

// StepState returns the lifecycle state of a step
func (o *Orchestrator) StepState(key string) (StepState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state, ok := o.states[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStep, key)
	}
	return state, nil
}

// Open marks a step as in progress. It is a UI affordance only; Confirm
// does not require it.
func (o *Orchestrator) Open(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	state, ok := o.states[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, key)
	}
	if state == StepCompleted {
		return fmt.Errorf("%w: %s", ErrStepAlreadyCompleted, key)
	}
	o.states[key] = StepInProgress
	return nil
}

// Confirm attempts to complete a step with the given payload. The step is
// accepted only if every required prior step is currently valid and the
// step's local rule passes; on acceptance the output is merged into the
// accumulator and becomes visible to later steps. A gating failure leaves
// the step unconfirmed and is reported in the result, never as an error.
//
// Confirming an already-completed step replaces its data, so every
// completed dependent is invalidated first, exactly as if the step had
// been reopened. The reset keys are reported in the result.
func (o *Orchestrator) Confirm(key string, payload map[string]interface{}) (ConfirmResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx, ok := o.byKey[key]
	if !ok {
		return ConfirmResult{}, fmt.Errorf("%w: %s", ErrUnknownStep, key)
	}
	step := o.steps[idx]

	snapshot := o.acc.Snapshot()

	var unmet []string
	for _, required := range step.RequiredPriorKeys {
		if !snapshot.IsValid(required) {
			unmet = append(unmet, required)
		}
	}
	if len(unmet) > 0 {
		return ConfirmResult{Accepted: false, UnmetKeys: unmet}, nil
	}

	if step.Rule != nil {
		if err := step.Rule(payload, snapshot); err != nil {
			return ConfirmResult{Accepted: false, RuleReason: err.Error()}, nil
		}
	}

	// a re-confirm edits data that dependents already validated against;
	// reset them before the new output lands
	var invalidated []string
	if o.states[key] == StepCompleted {
		invalidated = o.invalidateCascade(key)
	}

	o.acc.Record(StepOutput{
		Key:        key,
		IsValid:    true,
		Payload:    payload,
		RecordedAt: o.clock(),
	})
	o.states[key] = StepCompleted

	return ConfirmResult{Accepted: true, InvalidatedKeys: invalidated}, nil
}

// Reopen returns a completed step to in-progress for editing and
// invalidates it in the accumulator. Every completed step that depends on
// it, directly or transitively, is invalidated as well: downstream
// confirmations may not outlive the upstream data they were checked
// against.
func (o *Orchestrator) Reopen(key string) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.byKey[key]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, key)
	}

	invalidated := o.invalidateCascade(key)
	o.states[key] = StepInProgress
	return invalidated, nil
}

// invalidateCascade invalidates the step and every transitive dependent,
// returning the dependent keys that were reset. Caller holds the lock.
func (o *Orchestrator) invalidateCascade(key string) []string {
	affected := map[string]bool{key: true}

	// steps are ordered and dependencies only point backwards, so one
	// forward pass finds the full transitive closure
	for _, step := range o.steps {
		if affected[step.Key] {
			continue
		}
		for _, required := range step.RequiredPriorKeys {
			if affected[required] {
				affected[step.Key] = true
				break
			}
		}
	}

	var cascaded []string
	for _, step := range o.steps {
		if !affected[step.Key] {
			continue
		}
		o.acc.Invalidate(step.Key)
		if step.Key != key && o.states[step.Key] == StepCompleted {
			o.states[step.Key] = StepNotStarted
			cascaded = append(cascaded, step.Key)
		}
	}
	return cascaded
}

// Snapshot exposes the read-only merged view of everything prior steps
// reported, keyed by step key
func (o *Orchestrator) Snapshot() Snapshot {
	return o.acc.Snapshot()
}

// CanFinish evaluates the terminal predicate: every terminal key must be
// valid simultaneously. The unmet keys are returned for messaging.
func (o *Orchestrator) CanFinish() (bool, []string) {
	snapshot := o.acc.Snapshot()

	var unmet []string
	for _, key := range o.terminalKeys {
		if !snapshot.IsValid(key) {
			unmet = append(unmet, key)
		}
	}
	return len(unmet) == 0, unmet
}
