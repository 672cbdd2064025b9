package wizard

import (
	"testing"
	"time"
)

func TestAccumulator_RecordBumpsVersion(t *testing.T) {
	acc := NewAccumulator()

	if acc.Version() != 0 {
		t.Errorf("new accumulator version = %d, want 0", acc.Version())
	}

	acc.Record(StepOutput{Key: "a", IsValid: true, RecordedAt: time.Now()})
	if acc.Version() != 1 {
		t.Errorf("version after record = %d, want 1", acc.Version())
	}

	acc.Record(StepOutput{Key: "a", IsValid: true, RecordedAt: time.Now()})
	if acc.Version() != 2 {
		t.Errorf("re-recording the same key must still bump the version, got %d", acc.Version())
	}
}

func TestAccumulator_InvalidateKeepsPayload(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(StepOutput{
		Key:     "attendance",
		IsValid: true,
		Payload: map[string]interface{}{"headcount_present": 9},
	})

	acc.Invalidate("attendance")

	snapshot := acc.Snapshot()
	out, ok := snapshot.Get("attendance")
	if !ok {
		t.Fatal("invalidated output should still be present")
	}
	if out.IsValid {
		t.Error("invalidated output should not be valid")
	}
	if out.Payload["headcount_present"] != 9 {
		t.Error("invalidated output should keep its payload")
	}
	if snapshot.IsValid("attendance") {
		t.Error("Snapshot.IsValid should be false after invalidation")
	}
}

func TestAccumulator_InvalidateUnknownKeyIsNoop(t *testing.T) {
	acc := NewAccumulator()
	acc.Invalidate("missing")

	if acc.Version() != 0 {
		t.Errorf("invalidating an unrecorded key must not bump the version, got %d", acc.Version())
	}
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(StepOutput{
		Key:     "production",
		IsValid: true,
		Payload: map[string]interface{}{"units": 100},
	})

	snapshot := acc.Snapshot()
	snapshot.Outputs["production"].Payload["units"] = 0
	delete(snapshot.Outputs, "production")

	if !acc.Snapshot().IsValid("production") {
		t.Error("mutating a snapshot must not affect the accumulator")
	}
	if acc.Snapshot().Outputs["production"].Payload["units"] != 100 {
		t.Error("snapshot payloads must be copies")
	}
}
