package wizard

// StepState represents the lifecycle state of a single wizard step
type StepState string

const (
	StepNotStarted StepState = "NOT_STARTED"
	StepInProgress StepState = "IN_PROGRESS"
	StepCompleted  StepState = "COMPLETED"
)

// String returns the string representation of the step state
func (s StepState) String() string {
	return string(s)
}

// Rule is a step-local validity check evaluated at confirm time against the
// step's own payload and a consistent snapshot of prior outputs. A nil
// return accepts the payload.
type Rule func(payload map[string]interface{}, prior Snapshot) error

// Step declares one stage of a wizard sequence. RequiredPriorKeys may only
// name steps declared earlier in the sequence, which keeps the implicit
// dependency graph acyclic by construction.
type Step struct {
	Key               string   `json:"key"`
	Title             string   `json:"title"`
	Optional          bool     `json:"optional"`
	RequiredPriorKeys []string `json:"required_prior_keys"`
	Rule              Rule     `json:"-"`
}
