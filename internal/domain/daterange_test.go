package domain

import (
    "testing"
    "time"
)

func day(s string) time.Time {
    t, err := time.Parse("2006-01-02", s)
    if err != nil {
        panic(err)
    }
    return t
}

func TestNewDateRangeValidation(t *testing.T) {
    if _, err := NewDateRange(day("2025-03-10"), day("2025-03-10")); !IsValidation(err) {
        t.Fatalf("expected validation error for zero nights, got %v", err)
    }
    if _, err := NewDateRange(day("2025-03-10"), day("2025-03-09")); !IsValidation(err) {
        t.Fatalf("expected validation error for reversed range, got %v", err)
    }
    dr, err := NewDateRange(day("2025-03-10").Add(15*time.Hour), day("2025-03-12").Add(3*time.Hour))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if dr.Nights() != 2 {
        t.Fatalf("expected 2 nights, got %d", dr.Nights())
    }
    if !dr.CheckIn.Equal(day("2025-03-10")) {
        t.Fatalf("check-in not truncated: %v", dr.CheckIn)
    }
}

func TestParseDateRange(t *testing.T) {
    if _, err := ParseDateRange("2025-13-01", "2025-12-02"); !IsValidation(err) {
        t.Fatalf("expected validation error, got %v", err)
    }
    dr, err := ParseDateRange("2025-03-10", "2025-03-13")
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got := len(dr.Dates()); got != 3 {
        t.Fatalf("expected 3 dates, got %d", got)
    }
    if dr.String() != "2025-03-10..2025-03-13" {
        t.Fatalf("unexpected string %q", dr.String())
    }
}

func TestOverlaps(t *testing.T) {
    base := DateRange{CheckIn: day("2025-03-10"), CheckOut: day("2025-03-12")}
    cases := []struct {
        name     string
        in, out  string
        overlaps bool
    }{
        {"identical", "2025-03-10", "2025-03-12", true},
        {"ends on check-in", "2025-03-08", "2025-03-10", false},
        {"starts on check-out", "2025-03-12", "2025-03-14", false},
        {"straddles start", "2025-03-09", "2025-03-11", true},
        {"inside", "2025-03-11", "2025-03-12", true},
        {"covers", "2025-03-01", "2025-03-31", true},
        {"before", "2025-03-01", "2025-03-05", false},
    }
    for _, tc := range cases {
        other := DateRange{CheckIn: day(tc.in), CheckOut: day(tc.out)}
        if got := base.Overlaps(other); got != tc.overlaps {
            t.Fatalf("%s: expected %v, got %v", tc.name, tc.overlaps, got)
        }
        if got := other.Overlaps(base); got != tc.overlaps {
            t.Fatalf("%s (swapped): expected %v, got %v", tc.name, tc.overlaps, got)
        }
    }
}
