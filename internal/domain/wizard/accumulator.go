package wizard

import (
	"sync"
	"time"
)

// StepOutput is one completed step's contribution to the shared accumulator
type StepOutput struct {
	Key        string                 `json:"key"`
	IsValid    bool                   `json:"is_valid"`
	Payload    map[string]interface{} `json:"payload"`
	RecordedAt time.Time              `json:"recorded_at"`
}

// Snapshot is a point-in-time, read-only view of the accumulator. Gating
// predicates are always evaluated against a snapshot so that a confirm in
// flight never observes a half-applied merge.
type Snapshot struct {
	Version int64                 `json:"version"`
	Outputs map[string]StepOutput `json:"outputs"`
}

// Get returns the recorded output for a step key
func (s Snapshot) Get(key string) (StepOutput, bool) {
	out, ok := s.Outputs[key]
	return out, ok
}

// IsValid returns true if the step has a recorded, valid output
func (s Snapshot) IsValid(key string) bool {
	out, ok := s.Outputs[key]
	return ok && out.IsValid
}

// Accumulator is the append-only store of step outputs shared across a
// wizard run. Every merge bumps the version; readers only ever see full
// snapshots.
type Accumulator struct {
	mu      sync.RWMutex
	version int64
	outputs map[string]StepOutput
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		outputs: make(map[string]StepOutput),
	}
}

// Record merges a step output and bumps the version
func (a *Accumulator) Record(output StepOutput) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.version++
	a.outputs[output.Key] = output
}

// Invalidate marks a recorded output invalid without discarding its payload,
// so a reopened step keeps its data for editing
func (a *Accumulator) Invalidate(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out, ok := a.outputs[key]
	if !ok {
		return
	}
	out.IsValid = false
	a.version++
	a.outputs[key] = out
}

// Snapshot returns a consistent copy of the current accumulator contents
func (a *Accumulator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	outputs := make(map[string]StepOutput, len(a.outputs))
	for key, out := range a.outputs {
		payload := make(map[string]interface{}, len(out.Payload))
		for k, v := range out.Payload {
			payload[k] = v
		}
		out.Payload = payload
		outputs[key] = out
	}
	return Snapshot{Version: a.version, Outputs: outputs}
}

// Version returns the current accumulator version
func (a *Accumulator) Version() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.version
}
