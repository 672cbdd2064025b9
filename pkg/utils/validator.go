package utils

import (
	"fmt"
	"regexp"
)

var clientIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-]{0,63}$`)

// ValidateClientID validates a client identifier used in config routes
func ValidateClientID(clientID string) error {
	if clientID == "" {
		return fmt.Errorf("client ID is required")
	}

	if !clientIDRegex.MatchString(clientID) {
		return fmt.Errorf("invalid client ID format: %s", clientID)
	}

	return nil
}

// ValidateShiftNumber validates a shift number (plants run at most 4 shifts a day)
func ValidateShiftNumber(shiftNumber int) error {
	if shiftNumber < 1 || shiftNumber > 4 {
		return fmt.Errorf("shift number must be between 1 and 4: %d", shiftNumber)
	}

	return nil
}
