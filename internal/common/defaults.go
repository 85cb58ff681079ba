// Package common provides shared utilities across the application.
package common

import "strconv"

// Default policies for missing values, applied uniformly across aggregation
// and display code: a missing numeric value counts as zero in arithmetic,
// while a missing display value renders as a sentinel string. Centralizing
// the policy here keeps every call site consistent.

// DisplayUnknown is the sentinel shown for missing display values.
const DisplayUnknown = "?"

// IntOrZero returns the value of p, or 0 when p is nil.
// Use for arithmetic over optional counters.
func IntOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Float64OrZero returns the value of p, or 0 when p is nil.
func Float64OrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// StringOrUnknown returns s, or the "?" sentinel when s is empty.
// Use for display only, never for arithmetic or matching.
func StringOrUnknown(s string) string {
	if s == "" {
		return DisplayUnknown
	}
	return s
}

// IntDisplay formats an optional counter for display, using the "?" sentinel
// when the value is missing.
func IntDisplay(p *int) string {
	if p == nil {
		return DisplayUnknown
	}
	return strconv.Itoa(*p)
}
