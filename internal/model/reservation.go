package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
    StatusConfirmed       ReservationStatus = "confirmed"
    StatusModifiedByAgent ReservationStatus = "modified_by_agent"
    StatusCheckedIn       ReservationStatus = "checked_in"
    StatusCheckedOut      ReservationStatus = "checked_out"
    StatusCancelled       ReservationStatus = "cancelled"
)

// ActiveStatuses are the statuses whose room allocations block other
// bookings.  Cancelled and checked-out reservations release their rooms
// implicitly because they are filtered out here.
var ActiveStatuses = []ReservationStatus{StatusConfirmed, StatusCheckedIn, StatusModifiedByAgent}

// IsActive reports whether reservations in status s hold their rooms.
func (s ReservationStatus) IsActive() bool {
    for _, a := range ActiveStatuses {
        if s == a {
            return true
        }
    }
    return false
}

// Reservation is the aggregate root of a booking.  It groups one or
// more physical rooms for the same date range and tracks lifecycle
// timestamps and the denormalised total.
//
// Fields:
//  ID                 – primary key identifier.
//  ReferenceNumber    – unique human readable reference (RES-...).
//  ClientID           – user who owns the reservation.
//  HotelID            – hotel of all booked rooms.
//  CheckInDate        – first night (UTC midnight).
//  CheckOutDate       – departure date (UTC midnight), after CheckInDate.
//  TotalAmount        – Σ rate_per_night × nights over booked rooms.
//  Status             – lifecycle state.
//  ActualCheckInTime  – when reception checked the guest in.
//  ActualCheckOutTime – when reception checked the guest out.
//  CancelledAt        – cancellation timestamp.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Reservation struct {
    ID                 uint64            // reservations.id
    ReferenceNumber    string            // reservations.reference_number
    ClientID           uint64            // reservations.client_id
    HotelID            uint64            // reservations.hotel_id
    CheckInDate        time.Time         // reservations.check_in_date
    CheckOutDate       time.Time         // reservations.check_out_date
    TotalAmount        decimal.Decimal   // reservations.total_amount
    Status             ReservationStatus // reservations.status
    ActualCheckInTime  *time.Time        // reservations.actual_check_in_time (nullable)
    ActualCheckOutTime *time.Time        // reservations.actual_check_out_time (nullable)
    CancelledAt        *time.Time        // reservations.cancelled_at (nullable)
    CreatedAt          time.Time         // reservations.created_at
    UpdatedAt          time.Time         // reservations.updated_at
}

// ReservationRoom binds one physical room to a reservation at the rate
// captured when the booking was made.  Later rate changes never touch
// RatePerNight.  RoomNumber and RoomTypeName are read-only joins.
type ReservationRoom struct {
    ID            uint64          // reservation_rooms.id
    ReservationID uint64          // reservation_rooms.reservation_id
    RoomID        uint64          // reservation_rooms.room_id
    RoomTypeID    uint64          // reservation_rooms.room_type_id
    RatePerNight  decimal.Decimal // reservation_rooms.rate_per_night
    RoomNumber    string          // rooms.room_number
    RoomTypeName  string          // room_types.name
}

// SpecialRequest is a free-text guest request attached to a reservation.
type SpecialRequest struct {
    ID            uint64 // reservation_special_requests.id
    ReservationID uint64 // reservation_special_requests.reservation_id
    Text          string // reservation_special_requests.request_text
}
