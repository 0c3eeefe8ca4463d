package service

import (
    "context"
    "log/slog"
    "time"

    "github.com/shopspring/decimal"
)

// ReservationNotice carries what a confirmation message needs without a
// round trip to storage.
type ReservationNotice struct {
    ReservationID   uint64
    ReferenceNumber string
    ClientID        uint64
    Email           string
    HotelID         uint64
    HotelName       string
    CheckIn         time.Time
    CheckOut        time.Time
    Nights          int
    Rooms           []NoticeRoom
    TotalAmount     decimal.Decimal
    ConfirmedAt     time.Time
}

type NoticeRoom struct {
    RoomTypeName string
    RoomNumber   string
    RatePerNight decimal.Decimal
}

// Notifier delivers booking confirmations.  It is called after commit
// and its failure never affects the booking.
type Notifier interface {
    ReservationConfirmed(ctx context.Context, n ReservationNotice) error
}

// LogNotifier only logs confirmations.  It is used when no broker is
// configured.
type LogNotifier struct {
    Log *slog.Logger
}

func (l LogNotifier) ReservationConfirmed(_ context.Context, n ReservationNotice) error {
    l.Log.Info("reservation confirmed",
        "reservation_id", n.ReservationID,
        "reference", n.ReferenceNumber,
        "client_id", n.ClientID,
        "total", n.TotalAmount.StringFixed(2))
    return nil
}
