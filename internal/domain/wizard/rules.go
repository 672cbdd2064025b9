package wizard

import "fmt"

// payloadNumber reads a numeric payload field, accepting the types JSON
// decoding and native callers produce
func payloadNumber(payload map[string]interface{}, field string) (float64, bool) {
	switch v := payload[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func payloadBool(payload map[string]interface{}, field string) bool {
	v, ok := payload[field].(bool)
	return ok && v
}

// AttendanceRule requires the present/expected headcount ratio to reach the
// given minimum (e.g. 0.8 for the standard 80% floor).
func AttendanceRule(minPresentRatio float64) Rule {
	return func(payload map[string]interface{}, _ Snapshot) error {
		expected, ok := payloadNumber(payload, "headcount_expected")
		if !ok || expected <= 0 {
			return fmt.Errorf("headcount_expected is required")
		}
		present, ok := payloadNumber(payload, "headcount_present")
		if !ok {
			return fmt.Errorf("headcount_present is required")
		}
		if present/expected < minPresentRatio {
			return fmt.Errorf("attendance %.0f/%.0f is below the %.0f%% floor",
				present, expected, minPresentRatio*100)
		}
		return nil
	}
}

// EquipmentCheckRule requires every machine on the line to have been checked
func EquipmentCheckRule() Rule {
	return func(payload map[string]interface{}, _ Snapshot) error {
		total, ok := payloadNumber(payload, "machines_total")
		if !ok {
			return fmt.Errorf("machines_total is required")
		}
		checked, ok := payloadNumber(payload, "machines_checked")
		if !ok {
			return fmt.Errorf("machines_checked is required")
		}
		if checked < total {
			return fmt.Errorf("%.0f of %.0f machines unchecked", total-checked, total)
		}
		return nil
	}
}

// DataCompletenessRule requires the operator to attest that all shift data
// has been entered
func DataCompletenessRule() Rule {
	return func(payload map[string]interface{}, _ Snapshot) error {
		if !payloadBool(payload, "complete") {
			return fmt.Errorf("shift data is not marked complete")
		}
		return nil
	}
}

// ProductionEntriesRule requires every open work order to have a production
// entry for the shift
func ProductionEntriesRule() Rule {
	return func(payload map[string]interface{}, _ Snapshot) error {
		total, ok := payloadNumber(payload, "orders_total")
		if !ok {
			return fmt.Errorf("orders_total is required")
		}
		reported, ok := payloadNumber(payload, "orders_reported")
		if !ok {
			return fmt.Errorf("orders_reported is required")
		}
		if reported < total {
			return fmt.Errorf("%.0f of %.0f work orders have no production entry", total-reported, total)
		}
		return nil
	}
}

// DowntimeResolvedRule requires every downtime incident raised during the
// shift to be resolved or reassigned
func DowntimeResolvedRule() Rule {
	return func(payload map[string]interface{}, _ Snapshot) error {
		open, ok := payloadNumber(payload, "incidents_open")
		if !ok {
			return fmt.Errorf("incidents_open is required")
		}
		if open > 0 {
			return fmt.Errorf("%.0f downtime incidents still open", open)
		}
		return nil
	}
}

// SummaryReviewedRule requires the supervisor to have reviewed the shift
// summary before closeout
func SummaryReviewedRule() Rule {
	return func(payload map[string]interface{}, _ Snapshot) error {
		if !payloadBool(payload, "reviewed") {
			return fmt.Errorf("shift summary has not been reviewed")
		}
		return nil
	}
}
