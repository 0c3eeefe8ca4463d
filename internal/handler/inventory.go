package handler

import (
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// InventoryHandler serves the public availability and rate previews and
// the admin rate upsert.
type InventoryHandler struct {
    AvailabilityChecker *service.AvailabilityChecker
    Rates        *service.RateResolver
    Cache        HotelCache
    Log          *slog.Logger
    Now          func() time.Time
}

func NewInventoryHandler(availability *service.AvailabilityChecker, rates *service.RateResolver, cache HotelCache, log *slog.Logger) *InventoryHandler {
    if availability == nil || rates == nil {
        panic("nil service passed to NewInventoryHandler")
    }
    if cache == nil {
        cache = noCache{}
    }
    return &InventoryHandler{AvailabilityChecker: availability, Rates: rates, Cache: cache, Log: log, Now: time.Now}
}

type roomResponse struct {
    ID         uint64 `json:"id"`
    RoomNumber string `json:"room_number"`
}

// Availability handles GET /v1/hotels/:id/availability.  The result is a
// preview; the booking transaction re-checks every room.
func (h *InventoryHandler) Availability(c echo.Context) error {
    hotelID, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "availability", err)
    }
    typeID, err := queryID(c, "room_type_id")
    if err != nil {
        return respondError(c, h.Log, "availability", err)
    }
    if typeID == 0 {
        return respondError(c, h.Log, "availability", domain.ValidationError{Field: "room_type_id", Msg: "is required"})
    }
    stay, err := domain.ParseDateRange(c.QueryParam("check_in"), c.QueryParam("check_out"))
    if err != nil {
        return respondError(c, h.Log, "availability", err)
    }
    p, err := h.AvailabilityChecker.Preview(c.Request().Context(), hotelID, typeID, stay)
    if err != nil {
        return respondError(c, h.Log, "availability", err)
    }
    rooms := make([]roomResponse, 0, len(p.Rooms))
    for _, r := range p.Rooms {
        rooms = append(rooms, roomResponse{ID: r.ID, RoomNumber: r.RoomNumber})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "hotel_id":        p.HotelID,
        "room_type_id":    p.RoomTypeID,
        "check_in":        domain.FormatDate(stay.CheckIn),
        "check_out":       domain.FormatDate(stay.CheckOut),
        "nights":          stay.Nights(),
        "available_count": len(rooms),
        "rooms":           rooms,
        "rate_per_night":  p.Rate.Price.StringFixed(2),
        "rate_tier":       p.Rate.Tier,
    })
}

// Rate handles GET /v1/hotels/:id/room-types/:typeId/rate?date=.  The
// date defaults to today (UTC).
func (h *InventoryHandler) Rate(c echo.Context) error {
    hotelID, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "rate", err)
    }
    typeID, err := pathID(c, "typeId")
    if err != nil {
        return respondError(c, h.Log, "rate", err)
    }
    date := domain.TruncateDate(h.Now())
    if raw := c.QueryParam("date"); raw != "" {
        if date, err = domain.ParseDate("date", raw); err != nil {
            return respondError(c, h.Log, "rate", err)
        }
    }
    q, err := h.Rates.Quote(c.Request().Context(), hotelID, typeID, date)
    if err != nil {
        return respondError(c, h.Log, "rate", err)
    }
    resp := echo.Map{
        "hotel_id":     hotelID,
        "room_type_id": typeID,
        "date":         domain.FormatDate(q.Date),
        "price":        q.Price.StringFixed(2),
        "tier":         q.Tier,
    }
    if q.RateID != 0 {
        resp["rate_id"] = q.RateID
    }
    return c.JSON(http.StatusOK, resp)
}

type upsertRateRequest struct {
    BasePrice    decimal.Decimal  `json:"base_price"`
    WeekendPrice *decimal.Decimal `json:"weekend_price"`
    HolidayPrice *decimal.Decimal `json:"holiday_price"`
}

// UpsertRate handles PUT /v1/hotels/:id/room-types/:typeId/rates (admin).
// It writes the general rate of the room type and drops cached previews.
func (h *InventoryHandler) UpsertRate(c echo.Context) error {
    hotelID, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "upsert rate", err)
    }
    typeID, err := pathID(c, "typeId")
    if err != nil {
        return respondError(c, h.Log, "upsert rate", err)
    }
    var body upsertRateRequest
    if err := bindAndValidate(c, &body); err != nil {
        return respondError(c, h.Log, "upsert rate", err)
    }
    in := service.RateInput{HotelID: hotelID, RoomTypeID: typeID}
    if in.BasePrice, err = money("base_price", body.BasePrice); err != nil {
        return respondError(c, h.Log, "upsert rate", err)
    }
    if in.WeekendPrice, err = moneyPtr("weekend_price", body.WeekendPrice); err != nil {
        return respondError(c, h.Log, "upsert rate", err)
    }
    if in.HolidayPrice, err = moneyPtr("holiday_price", body.HolidayPrice); err != nil {
        return respondError(c, h.Log, "upsert rate", err)
    }

    ctx := c.Request().Context()
    rate, err := h.Rates.UpsertGeneralRate(ctx, in)
    if err != nil {
        return respondError(c, h.Log, "upsert rate", err)
    }
    if err := h.Cache.InvalidateHotel(ctx, hotelID); err != nil {
        h.Log.WarnContext(ctx, "cache invalidation failed", "hotel_id", hotelID, "err", err)
    }
    return c.JSON(http.StatusOK, rateResponse{
        ID:           rate.ID,
        HotelID:      rate.HotelID,
        RoomTypeID:   rate.RoomTypeID,
        BasePrice:    rate.BasePrice.StringFixed(2),
        WeekendPrice: fixedPtr(rate.WeekendPrice),
        HolidayPrice: fixedPtr(rate.HolidayPrice),
    })
}
