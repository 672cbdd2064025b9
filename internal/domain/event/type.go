package event

// Type identifies the type of domain event
type Type string

const (
	TypeConfigSaved     Type = "workflow.config_saved"
	TypeConfigReset     Type = "workflow.config_reset"
	TypeTemplateApplied Type = "workflow.template_applied"
	TypeShiftStarted    Type = "shift.started"
	TypeStepConfirmed   Type = "shift.step_confirmed"
	TypeStepReopened    Type = "shift.step_reopened"
	TypeShiftEnded      Type = "shift.ended"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeConfigSaved,
		TypeConfigReset,
		TypeTemplateApplied,
		TypeShiftStarted,
		TypeStepConfirmed,
		TypeStepReopened,
		TypeShiftEnded:
		return true
	default:
		return false
	}
}
