package event

import (
	"testing"
	"time"
)

func TestNewEventGeneratesIdentity(t *testing.T) {
	evt := NewEvent(TypeShiftStarted, "shift-1", map[string]interface{}{"shift_number": 2})

	if evt.ID == "" {
		t.Error("event ID should be generated")
	}
	if evt.CorrelationID == "" {
		t.Error("correlation ID should be generated")
	}
	if evt.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if time.Since(evt.Timestamp) > time.Second {
		t.Error("timestamp should be recent")
	}

	other := NewEvent(TypeShiftStarted, "shift-1", nil)
	if evt.ID == other.ID {
		t.Error("two events must not share an ID")
	}
}

func TestNewEventWithCorrelation(t *testing.T) {
	first := NewEvent(TypeShiftStarted, "shift-1", nil)
	second := NewEventWithCorrelation(TypeShiftEnded, "shift-1", nil, first.CorrelationID)

	if second.CorrelationID != first.CorrelationID {
		t.Error("correlated event must carry the chain's correlation ID")
	}
	if second.ID == first.ID {
		t.Error("correlated event still needs its own ID")
	}
}

func TestWithPayloadIsImmutable(t *testing.T) {
	evt := NewEvent(TypeConfigSaved, "client-1", map[string]interface{}{"version": int64(3)})
	extended := evt.WithPayload("template_id", "express")

	if _, ok := evt.Payload["template_id"]; ok {
		t.Error("WithPayload must not mutate the original event")
	}
	if extended.GetPayloadString("template_id") != "express" {
		t.Error("extended event should carry the added pair")
	}
	if extended.GetPayloadInt("version") != 3 {
		t.Error("extended event should retain existing pairs")
	}
	if extended.ID != evt.ID {
		t.Error("WithPayload keeps the event identity")
	}
}

func TestPayloadAccessors(t *testing.T) {
	evt := NewEvent(TypeStepConfirmed, "shift-1", map[string]interface{}{
		"step":     "equipment-check",
		"attempt":  2,
		"float":    float64(7),
		"not_text": 42,
	})

	if got := evt.GetPayloadString("step"); got != "equipment-check" {
		t.Errorf("GetPayloadString(step) = %q", got)
	}
	if got := evt.GetPayloadString("not_text"); got != "" {
		t.Errorf("GetPayloadString on non-string = %q, want empty", got)
	}
	if got := evt.GetPayloadInt("attempt"); got != 2 {
		t.Errorf("GetPayloadInt(attempt) = %d", got)
	}
	if got := evt.GetPayloadInt("float"); got != 7 {
		t.Errorf("GetPayloadInt(float) = %d", got)
	}
	if got := evt.GetPayloadInt("missing"); got != 0 {
		t.Errorf("GetPayloadInt(missing) = %d, want 0", got)
	}
}

func TestTypeIsValid(t *testing.T) {
	valid := []Type{
		TypeConfigSaved, TypeConfigReset, TypeTemplateApplied,
		TypeShiftStarted, TypeStepConfirmed, TypeStepReopened, TypeShiftEnded,
	}
	for _, typ := range valid {
		if !typ.IsValid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if Type("shift.teleported").IsValid() {
		t.Error("unknown type should be invalid")
	}
}
