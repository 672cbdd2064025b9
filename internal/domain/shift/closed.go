package shift

import (
	"time"

	"github.com/plantline/opsconsole/internal/domain/wizard"
)

// ClosedShift is the final record handed to persistence when a shift ends:
// the shift fields plus the full wizard accumulator, so the closeout
// summary can reconstruct exactly what each step reported without
// re-querying anything.
type ClosedShift struct {
	Shift
	EndTime     time.Time       `json:"end_time"`
	Duration    time.Duration   `json:"duration"`
	Accumulator wizard.Snapshot `json:"accumulator"`
}
