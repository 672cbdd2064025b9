package utils

import "testing"

func TestValidateClientID(t *testing.T) {
	valid := []string{"acme", "plant-7", "client_01", "A1"}
	for _, id := range valid {
		if err := ValidateClientID(id); err != nil {
			t.Errorf("ValidateClientID(%q) error = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "-leading-dash", "_leading", "has space", "a/b", "日本"}
	for _, id := range invalid {
		if err := ValidateClientID(id); err == nil {
			t.Errorf("ValidateClientID(%q) should fail", id)
		}
	}
}

func TestValidateShiftNumber(t *testing.T) {
	for n := 1; n <= 4; n++ {
		if err := ValidateShiftNumber(n); err != nil {
			t.Errorf("ValidateShiftNumber(%d) error = %v, want nil", n, err)
		}
	}
	for _, n := range []int{0, -1, 5} {
		if err := ValidateShiftNumber(n); err == nil {
			t.Errorf("ValidateShiftNumber(%d) should fail", n)
		}
	}
}
