package market

import (
	"errors"
	"testing"
)

func TestParseID_Valid(t *testing.T) {
	id := "0x47c031236e19d024b42f8AE6780E44A573170703"
	got, err := ParseID(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0x47c031236e19d024b42f8ae6780e44a573170703" {
		t.Errorf("expected canonical lowercase form, got %s", got)
	}
}

func TestParseID_Invalid(t *testing.T) {
	cases := []string{
		"",
		"47c031236e19d024b42f8ae6780e44a573170703",    // missing 0x
		"0x47c031236e19d024b42f8ae6780e44a5731707",    // too short
		"0x47c031236e19d024b42f8ae6780e44a57317070300", // too long
		"0x47c031236e19d024b42f8ae6780e44a57317070g",  // non-hex
		"pool-1",
	}
	for _, id := range cases {
		if _, err := ParseID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseID(%q): expected ErrInvalidID, got %v", id, err)
		}
	}
}

func TestEqual_IgnoresCase(t *testing.T) {
	a := "0x47C031236E19D024B42F8AE6780E44A573170703"
	b := "0x47c031236e19d024b42f8ae6780e44a573170703"
	if !Equal(a, b) {
		t.Error("identifiers differing only in case should be equal")
	}
	if Equal(a, "0x0000000000000000000000000000000000000000") {
		t.Error("distinct identifiers should not be equal")
	}
}
