package domain

import "time"

const dateLayout = "2006-01-02"

// DateRange is the half-open stay interval [CheckIn, CheckOut).  Both
// bounds are UTC midnights; the check-out date is not a night.
type DateRange struct {
    CheckIn  time.Time
    CheckOut time.Time
}

// NewDateRange truncates both bounds to their UTC date and validates
// that the stay covers at least one night.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
    dr := DateRange{CheckIn: TruncateDate(checkIn), CheckOut: TruncateDate(checkOut)}
    if err := dr.Validate(); err != nil {
        return DateRange{}, err
    }
    return dr, nil
}

// ParseDateRange parses two YYYY-MM-DD strings.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
    in, err := ParseDate("check_in", checkIn)
    if err != nil {
        return DateRange{}, err
    }
    out, err := ParseDate("check_out", checkOut)
    if err != nil {
        return DateRange{}, err
    }
    return NewDateRange(in, out)
}

// ParseDate parses a YYYY-MM-DD string, naming field in the error.
func ParseDate(field, s string) (time.Time, error) {
    t, err := time.ParseInLocation(dateLayout, s, time.UTC)
    if err != nil {
        return time.Time{}, ValidationError{Field: field, Msg: "must be a date in YYYY-MM-DD format", Err: err}
    }
    return t, nil
}

func (dr DateRange) Validate() error {
    if dr.CheckIn.IsZero() {
        return ValidationError{Field: "check_in", Msg: "is required"}
    }
    if dr.CheckOut.IsZero() {
        return ValidationError{Field: "check_out", Msg: "is required"}
    }
    if !dr.CheckOut.After(dr.CheckIn) {
        return ValidationError{Field: "check_out", Msg: "must be after check_in"}
    }
    return nil
}

// Nights counts calendar nights.  Bounds are date-truncated so the
// division is exact.
func (dr DateRange) Nights() int {
    return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Overlaps is the booking conflict rule: two stays conflict unless one
// ends on or before the other begins.
func (dr DateRange) Overlaps(other DateRange) bool {
    return !(!other.CheckOut.After(dr.CheckIn) || !other.CheckIn.Before(dr.CheckOut))
}

// Dates lists every night of the stay.
func (dr DateRange) Dates() []time.Time {
    out := make([]time.Time, 0, dr.Nights())
    for d := dr.CheckIn; d.Before(dr.CheckOut); d = d.AddDate(0, 0, 1) {
        out = append(out, d)
    }
    return out
}

func (dr DateRange) String() string {
    return dr.CheckIn.Format(dateLayout) + ".." + dr.CheckOut.Format(dateLayout)
}

// TruncateDate drops the clock part of t in UTC.
func TruncateDate(t time.Time) time.Time {
    if t.IsZero() {
        return t
    }
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.UTC().Format(dateLayout) }
