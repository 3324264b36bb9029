// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// ParseLimit converts a query-string limit into a bounded page size.
// Empty, unparsable, or non-positive input yields def; values above max are
// clamped to max. A non-positive max disables the upper bound.
//
// Example:
//
//	n := utils.ParseLimit("42", 50, 500)   // returns 42
//	n = utils.ParseLimit("", 50, 500)      // returns 50
//	n = utils.ParseLimit("9999", 50, 500)  // returns 500
func ParseLimit(s string, def, max int) int {
	n, err := strconv.Atoi(s)
	if s == "" || err != nil || n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
