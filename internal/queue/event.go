// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "fmt"
    "strings"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// ReservationConfirmedQueue is the durable queue confirmations travel on.
const ReservationConfirmedQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published when a reservation is
// committed.  It carries enough for the consumer to email the guest
// without querying the primary database.  Amounts are decimal strings.
type ReservationConfirmedEvent struct {
    ReservationID   uint64      `json:"reservation_id"`
    ReferenceNumber string      `json:"reference_number"`
    ClientID        uint64      `json:"client_id"`
    Email           string      `json:"email"`
    HotelID         uint64      `json:"hotel_id"`
    HotelName       string      `json:"hotel_name"`
    CheckIn         string      `json:"check_in"`
    CheckOut        string      `json:"check_out"`
    Nights          int         `json:"nights"`
    Rooms           []EventRoom `json:"rooms"`
    TotalAmount     string      `json:"total_amount"`
    ConfirmedAt     string      `json:"confirmed_at"`
}

type EventRoom struct {
    RoomType     string `json:"room_type"`
    RoomNumber   string `json:"room_number"`
    RatePerNight string `json:"rate_per_night"`
}

// EventFromNotice converts the service notice into its wire form.
func EventFromNotice(n service.ReservationNotice) ReservationConfirmedEvent {
    ev := ReservationConfirmedEvent{
        ReservationID:   n.ReservationID,
        ReferenceNumber: n.ReferenceNumber,
        ClientID:        n.ClientID,
        Email:           n.Email,
        HotelID:         n.HotelID,
        HotelName:       n.HotelName,
        CheckIn:         domain.FormatDate(n.CheckIn),
        CheckOut:        domain.FormatDate(n.CheckOut),
        Nights:          n.Nights,
        TotalAmount:     n.TotalAmount.StringFixed(2),
        ConfirmedAt:     n.ConfirmedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
    }
    for _, r := range n.Rooms {
        ev.Rooms = append(ev.Rooms, EventRoom{RoomType: r.RoomTypeName, RoomNumber: r.RoomNumber, RatePerNight: r.RatePerNight.StringFixed(2)})
    }
    return ev
}

// ConfirmationEmail renders the guest email for ev.
func ConfirmationEmail(ev ReservationConfirmedEvent) (subject, body string) {
    subject = fmt.Sprintf("Reservation %s confirmed", ev.ReferenceNumber)
    var b strings.Builder
    fmt.Fprintf(&b, "Your reservation at %s is confirmed.\n\n", ev.HotelName)
    fmt.Fprintf(&b, "Reference: %s\n", ev.ReferenceNumber)
    fmt.Fprintf(&b, "Stay: %s to %s (%d night(s))\n", ev.CheckIn, ev.CheckOut, ev.Nights)
    b.WriteString("Rooms:\n")
    for _, r := range ev.Rooms {
        fmt.Fprintf(&b, "  - %s, room %s at %s per night\n", r.RoomType, r.RoomNumber, r.RatePerNight)
    }
    fmt.Fprintf(&b, "Total: %s\n", ev.TotalAmount)
    return subject, b.String()
}
