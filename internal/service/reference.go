package service

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
)

const (
    reservationPrefix = "RES"
    invoicePrefix     = "INV"

    // maxReferenceAttempts bounds retries on reference collisions.
    maxReferenceAttempts = 5
)

// ReferenceFunc generates a human readable reference for prefix.
// Uniqueness is enforced by the storage constraint, not here.
type ReferenceFunc func(prefix string, now time.Time) (string, error)

// NewReference renders PREFIX-YYYYMMDD-XXXXXXXX with a random suffix.
func NewReference(prefix string, now time.Time) (string, error) {
    var b [4]byte
    if _, err := rand.Read(b[:]); err != nil {
        return "", err
    }
    return prefix + "-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// withReference calls insert with fresh references until it stops
// reporting a duplicate key, at most maxReferenceAttempts times.
func withReference(ctx context.Context, gen ReferenceFunc, prefix string, now time.Time, insert func(ref string) error) error {
    var lastErr error
    for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
        if err := ctx.Err(); err != nil {
            return domain.Internal("generate reference", err)
        }
        ref, err := gen(prefix, now)
        if err != nil {
            return domain.Internal("generate reference", err)
        }
        err = insert(ref)
        if err == nil {
            return nil
        }
        if !errors.Is(err, domain.ErrDuplicateKey) {
            return err
        }
        lastErr = err
    }
    return domain.InternalError{Msg: "could not allocate a unique reference", Err: lastErr}
}
