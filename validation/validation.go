package validation

import (
	"sort"
	"strings"
	"time"
)

// Violations maps field names to failure reasons.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error wraps a non-empty set of violations as an error value so services
// can return field-level failures without partial writes.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.Violations[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLength(field, value string, maxLen int, v Violations) {
	if len(value) > maxLen {
		v[field] = "too_long"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "not_allowed"
}

// Date validators: zero bounds are skipped.
func DateNotBefore(field string, t, earliest time.Time, v Violations) {
	if !earliest.IsZero() && t.Before(earliest) {
		v[field] = "too_early"
	}
}

func DateNotAfter(field string, t, latest time.Time, v Violations) {
	if !latest.IsZero() && t.After(latest) {
		v[field] = "too_late"
	}
}
