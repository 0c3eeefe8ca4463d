package service_test

import (
    "context"
    "testing"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

func dec(s string) *decimal.Decimal {
    d := decimal.RequireFromString(s)
    return &d
}

func dptr(t time.Time) *time.Time { return &t }

func TestRateTiers(t *testing.T) {
    e := newEngine(t, 1, nil)
    ctx := context.Background()
    rt := e.store.AddRoomType(e.hotel.ID, "Tiered", 2)
    e.store.AddRate(model.RoomRate{
        HotelID: e.hotel.ID, RoomTypeID: rt.ID,
        BasePrice: decimal.RequireFromString("80"), WeekendPrice: dec("95"), HolidayPrice: dec("150"),
    })
    // A season covering March and a narrower week inside it.
    e.store.AddRate(model.RoomRate{
        HotelID: e.hotel.ID, RoomTypeID: rt.ID, BasePrice: decimal.RequireFromString("90"),
        StartDate: dptr(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), EndDate: dptr(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)),
    })
    e.store.AddRate(model.RoomRate{
        HotelID: e.hotel.ID, RoomTypeID: rt.ID, BasePrice: decimal.RequireFromString("110"),
        StartDate: dptr(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)), EndDate: dptr(time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC)),
    })
    e.store.AddHoliday(e.hotel.ID, time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC))

    cases := []struct {
        date  time.Time
        price string
        tier  string
    }{
        {time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), "80.00", service.TierBase},     // Monday, general rate
        {time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC), "95.00", service.TierWeekend},  // Friday
        {time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC), "80.00", service.TierBase},     // Sunday
        {time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC), "150.00", service.TierHoliday}, // holiday on a Friday
        {time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "90.00", service.TierBase},    // season
        {time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "90.00", service.TierBase},    // season has no weekend price
        {time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC), "110.00", service.TierBase},   // narrower window wins
    }
    for _, tc := range cases {
        q, err := e.rates.Quote(ctx, e.hotel.ID, rt.ID, tc.date)
        if err != nil {
            t.Fatalf("%s: %v", domain.FormatDate(tc.date), err)
        }
        if q.Price.StringFixed(2) != tc.price || q.Tier != tc.tier {
            t.Fatalf("%s: expected %s/%s, got %s/%s", domain.FormatDate(tc.date), tc.price, tc.tier, q.Price.StringFixed(2), q.Tier)
        }
    }

    if _, err := e.rates.Quote(ctx, e.hotel.ID+100, rt.ID, monday); !domain.IsNotFound(err) {
        t.Fatalf("room type of another hotel: expected not found, got %v", err)
    }
}

func TestBookingCapturesCheckInRate(t *testing.T) {
    e := newEngine(t, 1, nil)
    ctx := context.Background()
    res, err := e.booking.CreateReservation(ctx, e.request(1, 2, 1))
    if err != nil {
        t.Fatalf("booking: %v", err)
    }
    if _, err := e.rates.UpsertGeneralRate(ctx, service.RateInput{HotelID: e.hotel.ID, RoomTypeID: e.std.ID, BasePrice: decimal.RequireFromString("250")}); err != nil {
        t.Fatalf("upsert: %v", err)
    }
    view, _ := e.lifecycle.GetReservation(ctx, res.ReservationID, reception)
    if view.Rooms[0].RatePerNight.StringFixed(2) != "100.00" {
        t.Fatalf("captured rate changed to %s", view.Rooms[0].RatePerNight.StringFixed(2))
    }
    q, _ := e.rates.Quote(ctx, e.hotel.ID, e.std.ID, monday)
    if q.Price.StringFixed(2) != "250.00" {
        t.Fatalf("upsert did not replace the general rate: %s", q.Price.StringFixed(2))
    }
}

func TestUpsertGeneralRateKeepsOneRow(t *testing.T) {
    e := newEngine(t, 0, nil)
    ctx := context.Background()
    first, err := e.rates.UpsertGeneralRate(ctx, service.RateInput{HotelID: e.hotel.ID, RoomTypeID: e.std.ID, BasePrice: decimal.RequireFromString("120")})
    if err != nil {
        t.Fatalf("upsert: %v", err)
    }
    second, err := e.rates.UpsertGeneralRate(ctx, service.RateInput{HotelID: e.hotel.ID, RoomTypeID: e.std.ID, BasePrice: decimal.RequireFromString("130"), WeekendPrice: dec("140")})
    if err != nil {
        t.Fatalf("upsert: %v", err)
    }
    if first.ID != second.ID {
        t.Fatalf("expected the same general rate row, got %d and %d", first.ID, second.ID)
    }
    if _, err := e.rates.UpsertGeneralRate(ctx, service.RateInput{HotelID: e.hotel.ID, RoomTypeID: e.std.ID}); !domain.IsValidation(err) {
        t.Fatalf("zero base price: expected validation, got %v", err)
    }
}

func TestPreview(t *testing.T) {
    e := newEngine(t, 3, nil)
    ctx := context.Background()
    if _, err := e.booking.CreateReservation(ctx, e.request(1, 2, 1)); err != nil {
        t.Fatalf("booking: %v", err)
    }
    stay, _ := domain.NewDateRange(monday, monday.AddDate(0, 0, 2))
    p, err := e.avail.Preview(ctx, e.hotel.ID, e.std.ID, stay)
    if err != nil {
        t.Fatalf("preview: %v", err)
    }
    if len(p.Rooms) != 2 || p.Rate.Price.StringFixed(2) != "100.00" {
        t.Fatalf("unexpected preview: %d rooms at %s", len(p.Rooms), p.Rate.Price.StringFixed(2))
    }
    if _, err := e.avail.FindAvailableRooms(ctx, e.hotel.ID, e.std.ID, stay, 0); !domain.IsValidation(err) {
        t.Fatalf("needed 0: expected validation, got %v", err)
    }
}
