// Package service implements the booking engine components: rate
// resolution, availability, allocation, lifecycle, consumptions and
// invoicing.  Components depend only on the ports declared here; the
// MySQL repositories and the in-memory store both satisfy them.
package service

import (
    "context"
    "time"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// AvailabilityQuery selects allocatable rooms.  Limit 0 means no limit.
// ExcludeReservationID ignores the allocations of one reservation, which
// is how a reservation is checked against everyone but itself.  RoomID
// narrows the query to a single room.
type AvailabilityQuery struct {
    HotelID              uint64
    RoomTypeID           uint64
    Range                domain.DateRange
    Limit                int
    ExcludeReservationID uint64
    RoomID               uint64
}

// RoomRepository reads the physical inventory.  The Lock methods take
// row locks for the rest of the transaction and are no-ops outside one.
type RoomRepository interface {
    GetHotel(ctx context.Context, id uint64) (model.Hotel, error)
    GetRoomType(ctx context.Context, id uint64) (model.RoomType, error)
    GetRoom(ctx context.Context, id uint64) (model.Room, error)
    LockRoomsByType(ctx context.Context, hotelID, roomTypeID uint64) error
    LockRooms(ctx context.Context, ids []uint64) error
    FindAvailable(ctx context.Context, q AvailabilityQuery) ([]model.Room, error)
}

type RateRepository interface {
    ListRates(ctx context.Context, hotelID, roomTypeID uint64) ([]model.RoomRate, error)
    IsHoliday(ctx context.Context, hotelID uint64, date time.Time) (bool, error)
    // UpsertGeneralRate inserts or replaces the single general rate of
    // the rate's hotel and room type and sets rate.ID.
    UpsertGeneralRate(ctx context.Context, rate *model.RoomRate) error
}

type ReservationRepository interface {
    // Create inserts the reservation and sets its ID and timestamps.  A
    // reference number collision yields domain.ErrDuplicateKey.
    Create(ctx context.Context, res *model.Reservation) error
    AddRooms(ctx context.Context, rooms []model.ReservationRoom) error
    Get(ctx context.Context, id uint64) (model.Reservation, error)
    GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error)
    ListRooms(ctx context.Context, reservationID uint64) ([]model.ReservationRoom, error)
    Update(ctx context.Context, res *model.Reservation) error
    UpdateRoomAssignment(ctx context.Context, reservationRoomID, roomID uint64) error
    ReplaceSpecialRequests(ctx context.Context, reservationID uint64, texts []string) error
    ListSpecialRequests(ctx context.Context, reservationID uint64) ([]model.SpecialRequest, error)
}

type ConsumptionRepository interface {
    Add(ctx context.Context, item *model.ConsumptionItem) error
    ListByReservation(ctx context.Context, reservationID uint64) ([]model.ConsumptionItem, error)
}

// InvoiceFilter is the typed, parameterised filter of invoice listings.
// Zero fields do not filter.  DateFrom and DateTo bound issued_at
// inclusively by date.
type InvoiceFilter struct {
    ClientID uint64
    Status   model.InvoiceStatus
    DateFrom *time.Time
    DateTo   *time.Time
    Page     int
    PageSize int
}

// Offset returns the row offset of the filter's page.
func (f InvoiceFilter) Offset() int {
    if f.Page <= 1 {
        return 0
    }
    return (f.Page - 1) * f.PageSize
}

type InvoiceRepository interface {
    // Create inserts the invoice with its items.  A second invoice for
    // the same reservation or a reference collision yields
    // domain.ErrDuplicateKey.
    Create(ctx context.Context, inv *model.Invoice) error
    Get(ctx context.Context, id uint64) (model.Invoice, error)
    GetByReservation(ctx context.Context, reservationID uint64) (model.Invoice, error)
    List(ctx context.Context, f InvoiceFilter) ([]model.Invoice, int, error)
    // UpdateStatus moves an invoice from one status to another and yields
    // domain.ErrRecordNotFound when it is no longer in status from.
    UpdateStatus(ctx context.Context, id uint64, from, to model.InvoiceStatus) error
}

// UnitOfWork exposes every repository bound to the same connection or
// transaction.
type UnitOfWork interface {
    Rooms() RoomRepository
    Rates() RateRepository
    Reservations() ReservationRepository
    Consumptions() ConsumptionRepository
    Invoices() InvoiceRepository
}

// TxManager runs fn in one transaction, committing when fn returns nil
// and rolling back otherwise.  Reader returns a non-transactional unit
// of work for previews and reads; it must not be used inside fn.
type TxManager interface {
    WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
    Reader() UnitOfWork
}
