package repository

import (
    "database/sql"
    "time"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
)

func timePtr(nt sql.NullTime) *time.Time {
    if !nt.Valid {
        return nil
    }
    t := nt.Time
    return &t
}

func nullTime(t *time.Time) sql.NullTime {
    if t == nil {
        return sql.NullTime{}
    }
    return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
    if s == nil {
        return sql.NullString{}
    }
    return sql.NullString{String: *s, Valid: true}
}

// requireOne turns an update that matched no row into
// domain.ErrRecordNotFound.
func requireOne(res sql.Result, op string) error {
    n, err := res.RowsAffected()
    if err != nil {
        return translate(op, err)
    }
    if n == 0 {
        return domain.ErrRecordNotFound
    }
    return nil
}
