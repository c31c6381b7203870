package validation

import (
	"strings"
	"testing"
	"time"
)

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	if v["name"] != "required" {
		t.Fatalf("expected required violation, got %v", v)
	}

	v = make(Violations)
	Required("name", "CISSP", v)
	if !v.Empty() {
		t.Fatalf("expected no violation, got %v", v)
	}
}

func TestNonNegativeFloat(t *testing.T) {
	v := make(Violations)
	NonNegativeFloat("cpe_value", -1, v)
	if v["cpe_value"] != "must_not_be_negative" {
		t.Fatalf("expected violation for -1, got %v", v)
	}

	v = make(Violations)
	NonNegativeFloat("cpe_value", 0, v)
	if !v.Empty() {
		t.Fatalf("zero is allowed, got %v", v)
	}
}

func TestDateBounds(t *testing.T) {
	issue := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	v := make(Violations)
	DateNotBefore("activity_date", issue.AddDate(0, 0, -1), issue, v)
	if v["activity_date"] != "too_early" {
		t.Fatalf("expected too_early, got %v", v)
	}

	v = make(Violations)
	DateNotAfter("activity_date", latest.AddDate(0, 0, 1), latest, v)
	if v["activity_date"] != "too_late" {
		t.Fatalf("expected too_late, got %v", v)
	}

	v = make(Violations)
	DateNotBefore("activity_date", issue, issue, v)
	DateNotAfter("activity_date", latest, latest, v)
	if !v.Empty() {
		t.Fatalf("boundary dates are valid, got %v", v)
	}
}

func TestOneOf(t *testing.T) {
	v := make(Violations)
	OneOf("authority", "CompTIA", []string{"ISC2", "CompTIA"}, v)
	if !v.Empty() {
		t.Fatalf("expected no violation, got %v", v)
	}
	OneOf("authority", "Unknown", []string{"ISC2", "CompTIA"}, v)
	if v["authority"] != "not_allowed" {
		t.Fatalf("expected not_allowed, got %v", v)
	}
}

func TestErrorMessageIsStable(t *testing.T) {
	e := &Error{Violations: Violations{"b": "required", "a": "too_long"}}
	want := "validation failed: a: too_long, b: required"
	if e.Error() != want {
		t.Fatalf("Error() = %q, want %q", e.Error(), want)
	}
	if !strings.Contains(e.Error(), "a: too_long") {
		t.Fatalf("missing field detail: %q", e.Error())
	}
}
