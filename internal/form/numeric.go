package form

import (
	"fmt"
	"strconv"
	"strings"
)

// formatYears renders a years-of-experience value as an integer clamped to
// the field's declared bounds. Absent a declared maximum the ceiling is 99;
// the floor is never below zero. An unparsable value degrades to "1".
func formatYears(years string, c Constraints) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(years), 64)
	if err != nil {
		return "1"
	}
	n := int(f)

	if c.Min != nil && n < int(*c.Min) {
		n = int(*c.Min)
	}
	if c.Max != nil {
		if n > int(*c.Max) {
			n = int(*c.Max)
		}
	} else if n > 99 {
		n = 99
	}
	if n < 0 {
		n = 0
	}
	return strconv.Itoa(n)
}

// formatNumber renders a numeric value against the field's step and minimum.
// A decimal step means two-decimal output; a value below the declared minimum
// is bumped just past it so the form accepts it. An unparsable value passes
// through untouched.
func formatNumber(value string, c Constraints) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}

	decimal := c.DecimalStep()
	var formatted string
	if decimal {
		formatted = fmt.Sprintf("%.2f", f)
	} else {
		formatted = strconv.Itoa(int(f))
	}

	if c.Min != nil {
		rendered, _ := strconv.ParseFloat(formatted, 64)
		if rendered < *c.Min {
			if decimal {
				formatted = fmt.Sprintf("%.2f", *c.Min+0.5)
			} else {
				formatted = strconv.Itoa(int(*c.Min) + 1)
			}
		}
	}
	return formatted
}
