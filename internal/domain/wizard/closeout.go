package wizard

// Step keys of the standard shift-closeout sequence
const (
	StepConfirmAttendance = "confirm-attendance"
	StepEquipmentCheck    = "equipment-check"
	StepDataCompleteness  = "data-completeness"
	StepProductionEntries = "production-entries"
	StepDowntimeReview    = "downtime-review"
	StepShiftSummary      = "shift-summary"
	StepHandoffNotes      = "handoff-notes"
)

// MinAttendanceRatio is the default present/expected floor for attendance
// confirmation
const MinAttendanceRatio = 0.8

// CloseoutSteps returns the standard shift-closeout sequence with the given
// attendance floor. Handoff notes are optional and deliberately absent from
// the terminal subset.
func CloseoutSteps(minAttendance float64) []Step {
	return []Step{
		{
			Key:   StepConfirmAttendance,
			Title: "Confirm attendance",
			Rule:  AttendanceRule(minAttendance),
		},
		{
			Key:   StepEquipmentCheck,
			Title: "Equipment check",
			Rule:  EquipmentCheckRule(),
		},
		{
			Key:               StepDataCompleteness,
			Title:             "Data completeness",
			RequiredPriorKeys: []string{StepConfirmAttendance, StepEquipmentCheck},
			Rule:              DataCompletenessRule(),
		},
		{
			Key:               StepProductionEntries,
			Title:             "Production entries",
			RequiredPriorKeys: []string{StepDataCompleteness},
			Rule:              ProductionEntriesRule(),
		},
		{
			Key:               StepDowntimeReview,
			Title:             "Downtime review",
			RequiredPriorKeys: []string{StepDataCompleteness},
			Rule:              DowntimeResolvedRule(),
		},
		{
			Key:               StepShiftSummary,
			Title:             "Shift summary",
			RequiredPriorKeys: []string{StepProductionEntries, StepDowntimeReview},
			Rule:              SummaryReviewedRule(),
		},
		{
			Key:      StepHandoffNotes,
			Title:    "Handoff notes",
			Optional: true,
		},
	}
}

// CloseoutTerminalKeys is the fixed subset of steps that must all be valid
// simultaneously before the shift can be ended. A conjunction over a
// hand-picked subset, not "all previous steps": handoff notes never block
// closure.
func CloseoutTerminalKeys() []string {
	return []string{
		StepDataCompleteness,
		StepProductionEntries,
		StepDowntimeReview,
		StepShiftSummary,
	}
}

// NewCloseoutOrchestrator builds the orchestrator for the standard
// shift-closeout wizard
func NewCloseoutOrchestrator(minAttendance float64) (*Orchestrator, error) {
	return NewOrchestrator(CloseoutSteps(minAttendance), CloseoutTerminalKeys())
}
