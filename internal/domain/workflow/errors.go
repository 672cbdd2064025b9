package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransitionDenied is returned when a work-order status change is
	// attempted outside the allowed graph edges
	ErrTransitionDenied = errors.New("transition denied")

	// ErrVersionConflict is returned when a save with an expected version
	// does not match the stored version
	ErrVersionConflict = errors.New("workflow version conflict")

	// ErrTemplateNotFound is returned when a template id is unknown
	ErrTemplateNotFound = errors.New("workflow template not found")
)

// InvalidGraphError rejects a save of a graph that failed validation.
// It carries the full violation list for the editor to display.
type InvalidGraphError struct {
	Violations ValidationResult
}

func (e *InvalidGraphError) Error() string {
	details := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		details = append(details, v.Detail)
	}
	return fmt.Sprintf("invalid workflow graph: %s", strings.Join(details, "; "))
}

// IsInvalidGraph reports whether err is an InvalidGraphError and returns it
func IsInvalidGraph(err error) (*InvalidGraphError, bool) {
	var ige *InvalidGraphError
	if errors.As(err, &ige) {
		return ige, true
	}
	return nil, false
}
