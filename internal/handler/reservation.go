package handler

import (
    "context"
    "encoding/json"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// ReservationHandler serves booking and lifecycle endpoints.  Staff-only
// routes are guarded by RequireStaff in the router; ownership of a
// reservation is enforced by the services.
type ReservationHandler struct {
    Booking   *service.BookingAllocator
    Lifecycle *service.LifecycleManager
    Cache     HotelCache
    Log       *slog.Logger
}

// NewReservationHandler panics if a service is nil.  A nil cache
// disables invalidation.
func NewReservationHandler(booking *service.BookingAllocator, lifecycle *service.LifecycleManager, cache HotelCache, log *slog.Logger) *ReservationHandler {
    if booking == nil || lifecycle == nil {
        panic("nil service passed to NewReservationHandler")
    }
    if cache == nil {
        cache = noCache{}
    }
    return &ReservationHandler{Booking: booking, Lifecycle: lifecycle, Cache: cache, Log: log}
}

type roomRequestDTO struct {
    RoomTypeID uint64 `json:"room_type_id" validate:"required"`
    Quantity   int    `json:"quantity" validate:"required,min=1,max=50"`
}

type createReservationRequest struct {
    ClientID        uint64           `json:"client_id"`
    HotelID         uint64           `json:"hotel_id" validate:"required"`
    CheckIn         string           `json:"check_in" validate:"required,datetime=2006-01-02"`
    CheckOut        string           `json:"check_out" validate:"required,datetime=2006-01-02"`
    Rooms           []roomRequestDTO `json:"rooms" validate:"required,min=1,dive"`
    SpecialRequests []string         `json:"special_requests" validate:"omitempty,max=20,dive,max=500"`
}

// Create handles POST /v1/reservations.  Clients book for themselves;
// staff book on behalf of the client named by client_id.
func (h *ReservationHandler) Create(c echo.Context) error {
    who, err := requester(c)
    if err != nil {
        return respondError(c, h.Log, "create reservation", err)
    }
    var body createReservationRequest
    if err := bindAndValidate(c, &body); err != nil {
        return respondError(c, h.Log, "create reservation", err)
    }
    stay, err := domain.ParseDateRange(body.CheckIn, body.CheckOut)
    if err != nil {
        return respondError(c, h.Log, "create reservation", err)
    }

    req := service.BookingRequest{
        ClientID:        who.UserID,
        ClientEmail:     who.Email,
        HotelID:         body.HotelID,
        CheckIn:         stay.CheckIn,
        CheckOut:        stay.CheckOut,
        SpecialRequests: body.SpecialRequests,
    }
    switch {
    case who.Role.IsStaff():
        if body.ClientID == 0 {
            return respondError(c, h.Log, "create reservation", domain.ValidationError{Field: "client_id", Msg: "is required when booking on behalf of a client"})
        }
        req.ClientID, req.ClientEmail = body.ClientID, ""
    case body.ClientID != 0 && body.ClientID != who.UserID:
        return respondError(c, h.Log, "create reservation", domain.ForbiddenError{Msg: "clients may only book for themselves"})
    }
    for _, r := range body.Rooms {
        req.Rooms = append(req.Rooms, service.RoomRequest{RoomTypeID: r.RoomTypeID, Quantity: r.Quantity})
    }

    ctx := c.Request().Context()
    res, err := h.Booking.CreateReservation(ctx, req)
    if err != nil {
        return respondError(c, h.Log, "create reservation", err)
    }
    h.invalidate(ctx, body.HotelID)
    return c.JSON(http.StatusCreated, echo.Map{
        "reservation_id":   res.ReservationID,
        "reference_number": res.ReferenceNumber,
        "total_amount":     res.TotalAmount.StringFixed(2),
    })
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    who, err := requester(c)
    if err != nil {
        return respondError(c, h.Log, "get reservation", err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "get reservation", err)
    }
    view, err := h.Lifecycle.GetReservation(c.Request().Context(), id, who)
    if err != nil {
        return respondError(c, h.Log, "get reservation", err)
    }
    return c.JSON(http.StatusOK, toReservationResponse(view))
}

type updateReservationRequest struct {
    CheckIn         *string         `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
    CheckOut        *string         `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
    SpecialRequests *[]string       `json:"special_requests" validate:"omitempty,max=20,dive,max=500"`
    Status          *string         `json:"status"`
    Rooms           json.RawMessage `json:"rooms"`
}

// Update handles PATCH /v1/reservations/:id (staff).
func (h *ReservationHandler) Update(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "update reservation", err)
    }
    var body updateReservationRequest
    if err := bindAndValidate(c, &body); err != nil {
        return respondError(c, h.Log, "update reservation", err)
    }
    patch := service.ReservationPatch{SpecialRequests: body.SpecialRequests, RoomsSet: len(body.Rooms) > 0}
    if body.CheckIn != nil {
        d, err := domain.ParseDate("check_in", *body.CheckIn)
        if err != nil {
            return respondError(c, h.Log, "update reservation", err)
        }
        patch.CheckIn = &d
    }
    if body.CheckOut != nil {
        d, err := domain.ParseDate("check_out", *body.CheckOut)
        if err != nil {
            return respondError(c, h.Log, "update reservation", err)
        }
        patch.CheckOut = &d
    }
    if body.Status != nil {
        s := model.ReservationStatus(strings.ToLower(strings.TrimSpace(*body.Status)))
        if !domain.ValidStatus(s) {
            return respondError(c, h.Log, "update reservation", domain.ValidationError{Field: "status", Msg: "unknown reservation status"})
        }
        patch.Status = &s
    }

    ctx := c.Request().Context()
    view, err := h.Lifecycle.UpdateReservation(ctx, id, patch)
    if err != nil {
        return respondError(c, h.Log, "update reservation", err)
    }
    h.invalidate(ctx, view.HotelID)
    return c.JSON(http.StatusOK, toReservationResponse(view))
}

// Cancel handles POST /v1/reservations/:id/cancel.  Only confirmed
// reservations can be cancelled here; staff use PATCH for other edges.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    who, err := requester(c)
    if err != nil {
        return respondError(c, h.Log, "cancel reservation", err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "cancel reservation", err)
    }
    ctx := c.Request().Context()
    res, err := h.Lifecycle.Cancel(ctx, id, who)
    if err != nil {
        return respondError(c, h.Log, "cancel reservation", err)
    }
    h.invalidate(ctx, res.HotelID)
    return c.JSON(http.StatusOK, echo.Map{"status": res.Status, "cancelled_at": res.CancelledAt})
}

// CheckIn handles POST /v1/reservations/:id/check-in (staff).
func (h *ReservationHandler) CheckIn(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "check in", err)
    }
    out, err := h.Lifecycle.CheckIn(c.Request().Context(), id)
    if err != nil {
        return respondError(c, h.Log, "check in", err)
    }
    resp := echo.Map{
        "status":               out.Reservation.Status,
        "actual_check_in_time": out.Reservation.ActualCheckInTime,
        "early":                out.Early,
    }
    if out.Warning != "" {
        resp["warning"] = out.Warning
    }
    return c.JSON(http.StatusOK, resp)
}

// CheckOut handles POST /v1/reservations/:id/check-out (staff).
func (h *ReservationHandler) CheckOut(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "check out", err)
    }
    ctx := c.Request().Context()
    res, err := h.Lifecycle.CheckOut(ctx, id)
    if err != nil {
        return respondError(c, h.Log, "check out", err)
    }
    h.invalidate(ctx, res.HotelID)
    return c.JSON(http.StatusOK, echo.Map{"status": res.Status, "actual_check_out_time": res.ActualCheckOutTime})
}

type reassignRequest struct {
    ReservationRoomID uint64 `json:"reservation_room_id" validate:"required"`
    NewRoomID         uint64 `json:"new_room_id" validate:"required"`
}

// Reassign handles POST /v1/reservations/:id/rooms/reassign (staff).
func (h *ReservationHandler) Reassign(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "reassign room", err)
    }
    var body reassignRequest
    if err := bindAndValidate(c, &body); err != nil {
        return respondError(c, h.Log, "reassign room", err)
    }
    ctx := c.Request().Context()
    view, err := h.Lifecycle.ReassignRoom(ctx, id, body.ReservationRoomID, body.NewRoomID)
    if err != nil {
        return respondError(c, h.Log, "reassign room", err)
    }
    h.invalidate(ctx, view.HotelID)
    return c.JSON(http.StatusOK, toReservationResponse(view))
}

func (h *ReservationHandler) invalidate(ctx context.Context, hotelID uint64) {
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
    defer cancel()
    if err := h.Cache.InvalidateHotel(ctx, hotelID); err != nil {
        h.Log.WarnContext(ctx, "cache invalidation failed", "hotel_id", hotelID, "err", err)
    }
}
