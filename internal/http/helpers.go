package http

import (
	"errors"
	"strings"

	"spendwise/internal/core"
)

// formatRupees formats cents with the rupee sign and two decimals
// (e.g., "₹1234.50"). Negative amounts get a leading minus.
func formatRupees(cents int64) string {
	m := core.Money{Cents: cents}
	if cents < 0 {
		return "-₹" + m.Abs().String()
	}
	return "₹" + m.String()
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// isValidationError reports whether err is a user input problem rather than
// a server fault.
func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrIncompleteSubmission,
		core.ErrInvalidAmount,
		core.ErrInvalidBudget,
		core.ErrInvalidDate,
		core.ErrInvalidCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
