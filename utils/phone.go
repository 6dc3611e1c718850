package utils

import (
	"fmt"
	"strings"

	"github.com/ttacon/libphonenumber"
)

var CountryCode = "BR"

// NormalizePhoneNumber formats a WhatsApp contact identifier as E.164.
// Numbers that cannot be parsed are returned unchanged so a sloppy sheet
// entry still gets a delivery attempt.
func NormalizePhoneNumber(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	p, err := libphonenumber.Parse(trimmed, CountryCode)
	if err != nil {
		return trimmed
	}
	return libphonenumber.Format(p, libphonenumber.E164)
}

// ValidatePhoneNumber reports whether a number parses as a valid phone
// number for the default region.
func ValidatePhoneNumber(number string) error {
	p, err := libphonenumber.Parse(number, CountryCode)
	if err != nil {
		return err
	}
	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}
