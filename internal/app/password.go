package app

import (
	"fmt"
	"strings"

	"cashflowbot/internal/config"
)

const minReportPasswordLen = 8

// ValidateReportSecurity rejects report API credentials that are trivially
// guessable. It is a no-op while the report API is disabled.
func ValidateReportSecurity(cfg *config.Config) error {
	if !cfg.ReportsEnabled() {
		return nil
	}
	if len(cfg.ReportSecret) < 32 {
		return fmt.Errorf("REPORT_SECRET must be at least 32 characters")
	}
	if isBcryptHash(cfg.ReportPassword) {
		return nil
	}
	if err := validatePasswordStrength(cfg.ReportPassword); err != nil {
		return fmt.Errorf("REPORT_PASSWORD is too weak: %w", err)
	}
	return nil
}

// validatePasswordStrength rejects passwords that are short, a single
// repeated character, a plain ascending or descending run, or on a known-weak
// list.
func validatePasswordStrength(password string) error {
	if len(password) < minReportPasswordLen {
		return fmt.Errorf("at least %d characters required", minReportPasswordLen)
	}
	known := map[string]bool{
		"password": true, "12345678": true, "87654321": true, "123456789": true,
		"qwertyui": true, "11111111": true, "00000000": true, "abcd1234": true,
		"matkhau1": true, "admin123": true, "cashflow": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("repeated-character password not allowed")
	}

	ascending, descending := true, true
	for i := 1; i < len(password); i++ {
		diff := int(password[i]) - int(password[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("sequential password not allowed")
	}
	return nil
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
