package utils

import (
	"fmt"
	"regexp"
)

var (
	schemeCodeRe = regexp.MustCompile(`^[A-Z0-9-]{1,20}$`)
	clientCodeRe = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)
	panRe        = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	euinRe       = regexp.MustCompile(`^E[0-9]{6}$`)
	arnRe        = regexp.MustCompile(`^ARN-?[0-9]{1,6}$`)
)

// ValidateSchemeCode проверяет формат кода схемы BSE
func ValidateSchemeCode(code string) error {
	if !schemeCodeRe.MatchString(code) {
		return fmt.Errorf("invalid scheme code %q", code)
	}
	return nil
}

// ValidateClientCode проверяет формат UCC кода клиента
func ValidateClientCode(code string) error {
	if !clientCodeRe.MatchString(code) {
		return fmt.Errorf("invalid client code %q", code)
	}
	return nil
}

// ValidatePAN проверяет формат индийского PAN
func ValidatePAN(pan string) error {
	if !panRe.MatchString(pan) {
		return fmt.Errorf("invalid PAN format")
	}
	return nil
}

// ValidateEUIN проверяет формат EUIN (E + 6 цифр)
func ValidateEUIN(euin string) error {
	if euin == "" {
		return nil // EUIN опционален
	}
	if !euinRe.MatchString(euin) {
		return fmt.Errorf("invalid EUIN %q", euin)
	}
	return nil
}

// ValidateARN проверяет формат регистрационного номера AMFI
func ValidateARN(arn string) error {
	if arn == "" {
		return nil
	}
	if !arnRe.MatchString(arn) {
		return fmt.Errorf("invalid ARN %q", arn)
	}
	return nil
}
