package service_test

import (
    "io"
    "log/slog"
    "testing"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
    "github.com/iliyamo/hotel-booking-engine/internal/storage/memory"
)

// 2025-03-10 is a Monday.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type engine struct {
    store     *memory.Store
    hotel     model.Hotel
    std       model.RoomType
    rates     *service.RateResolver
    avail     *service.AvailabilityChecker
    booking   *service.BookingAllocator
    lifecycle *service.LifecycleManager
    ledger    *service.ConsumptionLedger
    invoices  *service.InvoiceAggregator
    now       time.Time
}

func discardLogger() *slog.Logger {
    return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngine seeds one hotel with a Standard type of standardRooms rooms
// at a base rate of 100.00.
func newEngine(t *testing.T, standardRooms int, notifier service.Notifier) *engine {
    t.Helper()
    s := memory.New()
    h := s.AddHotel("Test Hotel", "Porto")
    std := s.AddRoomType(h.ID, "Standard", 2)
    for i := 0; i < standardRooms; i++ {
        s.AddRoom(h.ID, std.ID, string(rune('A'+i)), model.RoomAvailable)
    }
    s.AddRate(model.RoomRate{HotelID: h.ID, RoomTypeID: std.ID, BasePrice: decimal.RequireFromString("100.00")})

    log := discardLogger()
    e := &engine{store: s, hotel: h, std: std, now: monday.Add(15 * time.Hour)}
    clock := func() time.Time { return e.now }
    e.rates = service.NewRateResolver(s, decimal.RequireFromString("100.00"))
    e.avail = service.NewAvailabilityChecker(s, e.rates)
    e.booking = service.NewBookingAllocator(s, e.rates, notifier, log)
    e.booking.Now = clock
    e.lifecycle = service.NewLifecycleManager(s, log)
    e.lifecycle.Now = clock
    e.ledger = service.NewConsumptionLedger(s, log)
    e.ledger.Now = clock
    e.invoices = service.NewInvoiceAggregator(s, log)
    e.invoices.Now = clock
    return e
}

func (e *engine) request(clientID uint64, nights, quantity int) service.BookingRequest {
    return service.BookingRequest{
        ClientID: clientID,
        HotelID:  e.hotel.ID,
        CheckIn:  monday,
        CheckOut: monday.AddDate(0, 0, nights),
        Rooms:    []service.RoomRequest{{RoomTypeID: e.std.ID, Quantity: quantity}},
    }
}

func client(id uint64) model.Requester { return model.Requester{UserID: id, Role: model.RoleClient} }

var reception = model.Requester{UserID: 900, Role: model.RoleReception}
