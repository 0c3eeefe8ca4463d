package service

import (
    "context"
    "log/slog"
    "sort"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// ReservationView is a reservation with its rooms and special requests.
type ReservationView struct {
    model.Reservation
    Rooms           []model.ReservationRoom
    SpecialRequests []model.SpecialRequest
}

// CheckInResult reports an early arrival as a warning; it never blocks
// the check-in.
type CheckInResult struct {
    Reservation model.Reservation
    Early       bool
    Warning     string
}

// ReservationPatch is a partial staff update.  Nil fields are left
// alone.  RoomsSet marks a request that tried to change rooms.
type ReservationPatch struct {
    CheckIn         *time.Time
    CheckOut        *time.Time
    SpecialRequests *[]string
    Status          *model.ReservationStatus
    RoomsSet        bool
}

// LifecycleManager drives reservations through the status machine.
type LifecycleManager struct {
    tx  TxManager
    log *slog.Logger

    Now func() time.Time
    // CheckInHour is the standard arrival time, in hours after midnight
    // UTC of the check-in date.  Earlier check-ins carry a warning.
    CheckInHour int
}

func NewLifecycleManager(tx TxManager, log *slog.Logger) *LifecycleManager {
    return &LifecycleManager{
        tx:          tx,
        log:         log,
        Now:         func() time.Time { return time.Now().UTC() },
        CheckInHour: 14,
    }
}

// GetReservation loads a reservation the requester may see.  Clients
// only see their own.
func (m *LifecycleManager) GetReservation(ctx context.Context, id uint64, who model.Requester) (ReservationView, error) {
    uow := m.tx.Reader()
    res, err := uow.Reservations().Get(ctx, id)
    if err != nil {
        return ReservationView{}, notFoundOr(err, "reservation", id, "load reservation")
    }
    if !who.CanAccessClient(res.ClientID) {
        return ReservationView{}, domain.ForbiddenError{Msg: "reservation belongs to another client"}
    }
    return loadView(ctx, uow, res)
}

func (m *LifecycleManager) CheckIn(ctx context.Context, id uint64) (CheckInResult, error) {
    var out CheckInResult
    err := m.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        res, err := lockReservation(ctx, uow, id)
        if err != nil {
            return err
        }
        if err := domain.RequireStatus("check in", res.Status, model.StatusConfirmed, model.StatusModifiedByAgent); err != nil {
            return err
        }
        now := m.Now()
        m.applyCheckIn(&res, now)
        if err := uow.Reservations().Update(ctx, &res); err != nil {
            return domain.Internal("update reservation", err)
        }
        out = CheckInResult{Reservation: res}
        if m.isEarly(res, now) {
            out.Early = true
            out.Warning = "early check-in: guest arrived before the standard check-in time"
        }
        return nil
    })
    if err != nil {
        return CheckInResult{}, err
    }
    if out.Early {
        m.log.WarnContext(ctx, "early check-in", "reservation_id", id, "check_in_date", domain.FormatDate(out.Reservation.CheckInDate))
    }
    return out, nil
}

func (m *LifecycleManager) CheckOut(ctx context.Context, id uint64) (model.Reservation, error) {
    var out model.Reservation
    err := m.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        res, err := lockReservation(ctx, uow, id)
        if err != nil {
            return err
        }
        if err := domain.RequireStatus("check out", res.Status, model.StatusCheckedIn); err != nil {
            return err
        }
        applyCheckOut(&res, m.Now())
        if err := uow.Reservations().Update(ctx, &res); err != nil {
            return domain.Internal("update reservation", err)
        }
        out = res
        return nil
    })
    return out, err
}

// Cancel is the guest-facing cancellation: allowed from confirmed only.
// Rows are kept; the cancelled status frees the rooms.
func (m *LifecycleManager) Cancel(ctx context.Context, id uint64, who model.Requester) (model.Reservation, error) {
    var out model.Reservation
    err := m.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        res, err := lockReservation(ctx, uow, id)
        if err != nil {
            return err
        }
        if !who.CanAccessClient(res.ClientID) {
            return domain.ForbiddenError{Msg: "reservation belongs to another client"}
        }
        if err := domain.RequireStatus("cancel", res.Status, model.StatusConfirmed); err != nil {
            return err
        }
        applyCancel(&res, m.Now())
        if err := uow.Reservations().Update(ctx, &res); err != nil {
            return domain.Internal("update reservation", err)
        }
        out = res
        return nil
    })
    if err == nil {
        m.log.InfoContext(ctx, "reservation cancelled", "reservation_id", id)
    }
    return out, err
}

// ReassignRoom moves one reservation room to another physical room of
// the same type.  Choosing the current room is a no-op.
func (m *LifecycleManager) ReassignRoom(ctx context.Context, reservationID, reservationRoomID, newRoomID uint64) (ReservationView, error) {
    var out ReservationView
    err := m.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        res, err := lockReservation(ctx, uow, reservationID)
        if err != nil {
            return err
        }
        if !res.Status.IsActive() {
            return domain.RequireStatus("reassign room", res.Status, model.ActiveStatuses...)
        }
        rows, err := uow.Reservations().ListRooms(ctx, reservationID)
        if err != nil {
            return domain.Internal("load reservation rooms", err)
        }
        var row *model.ReservationRoom
        for i := range rows {
            if rows[i].ID == reservationRoomID {
                row = &rows[i]
            }
        }
        if row == nil {
            return domain.NotFoundError{Resource: "reservation room", ID: reservationRoomID}
        }
        if row.RoomID == newRoomID {
            out, err = loadView(ctx, uow, res)
            return err
        }
        room, err := uow.Rooms().GetRoom(ctx, newRoomID)
        if err != nil {
            return notFoundOr(err, "room", newRoomID, "load room")
        }
        if room.HotelID != res.HotelID || room.RoomTypeID != row.RoomTypeID {
            return domain.TypeMismatchError{ExpectedRoomTypeID: row.RoomTypeID, ActualRoomTypeID: room.RoomTypeID}
        }
        for _, other := range rows {
            if other.RoomID == newRoomID {
                return domain.RoomUnavailableError{RoomID: newRoomID}
            }
        }
        if err := uow.Rooms().LockRooms(ctx, sortedIDs(row.RoomID, newRoomID)); err != nil {
            return domain.Internal("lock rooms", err)
        }
        free, err := findAvailable(ctx, uow, AvailabilityQuery{
            HotelID:              res.HotelID,
            RoomTypeID:           row.RoomTypeID,
            Range:                domain.DateRange{CheckIn: res.CheckInDate, CheckOut: res.CheckOutDate},
            Limit:                1,
            ExcludeReservationID: res.ID,
            RoomID:               newRoomID,
        })
        if err != nil {
            return err
        }
        if len(free) == 0 {
            return domain.RoomUnavailableError{RoomID: newRoomID}
        }
        if err := uow.Reservations().UpdateRoomAssignment(ctx, reservationRoomID, newRoomID); err != nil {
            return domain.Internal("update reservation room", err)
        }
        res.UpdatedAt = m.Now()
        if err := uow.Reservations().Update(ctx, &res); err != nil {
            return domain.Internal("update reservation", err)
        }
        out, err = loadView(ctx, uow, res)
        return err
    })
    if err == nil {
        m.log.InfoContext(ctx, "room reassigned", "reservation_id", reservationID, "reservation_room_id", reservationRoomID, "room_id", newRoomID)
    }
    return out, err
}

// UpdateReservation applies a staff patch.  Date changes re-check every
// booked room against other reservations and recompute the total from
// the captured nightly rates.  A staff edit of a confirmed reservation
// without an explicit status marks it modified_by_agent.
func (m *LifecycleManager) UpdateReservation(ctx context.Context, id uint64, p ReservationPatch) (ReservationView, error) {
    if p.RoomsSet {
        return ReservationView{}, domain.NotSupportedError{Msg: "changing rooms through update is not supported; use room reassignment"}
    }
    if p.Status != nil && !domain.ValidStatus(*p.Status) {
        return ReservationView{}, domain.ValidationError{Field: "status", Msg: "unknown status " + string(*p.Status)}
    }
    var out ReservationView
    err := m.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        res, err := lockReservation(ctx, uow, id)
        if err != nil {
            return err
        }
        now := m.Now()
        edited := false

        if p.CheckIn != nil || p.CheckOut != nil {
            if err := domain.RequireStatus("change dates", res.Status, model.StatusConfirmed, model.StatusModifiedByAgent); err != nil {
                return err
            }
            checkIn, checkOut := res.CheckInDate, res.CheckOutDate
            if p.CheckIn != nil {
                checkIn = *p.CheckIn
            }
            if p.CheckOut != nil {
                checkOut = *p.CheckOut
            }
            stay, err := domain.NewDateRange(checkIn, checkOut)
            if err != nil {
                return err
            }
            if p.CheckIn != nil && stay.CheckIn.Before(domain.TruncateDate(now)) {
                return domain.ValidationError{Field: "check_in", Msg: "must not be in the past"}
            }
            if err := m.moveStay(ctx, uow, &res, stay); err != nil {
                return err
            }
            edited = true
        }

        if p.SpecialRequests != nil {
            if domain.IsTerminal(res.Status) {
                return domain.RequireStatus("change special requests", res.Status, model.ActiveStatuses...)
            }
            if err := uow.Reservations().ReplaceSpecialRequests(ctx, res.ID, cleanRequests(*p.SpecialRequests)); err != nil {
                return domain.Internal("replace special requests", err)
            }
            edited = true
        }

        switch {
        case p.Status != nil && *p.Status != res.Status:
            if err := domain.RequireTransition(res.Status, *p.Status); err != nil {
                return err
            }
            switch *p.Status {
            case model.StatusCheckedIn:
                m.applyCheckIn(&res, now)
            case model.StatusCheckedOut:
                applyCheckOut(&res, now)
            case model.StatusCancelled:
                applyCancel(&res, now)
            default:
                res.Status = *p.Status
            }
        case p.Status == nil && edited && res.Status == model.StatusConfirmed:
            res.Status = model.StatusModifiedByAgent
        }

        res.UpdatedAt = now
        if err := uow.Reservations().Update(ctx, &res); err != nil {
            return domain.Internal("update reservation", err)
        }
        out, err = loadView(ctx, uow, res)
        return err
    })
    if err == nil {
        m.log.InfoContext(ctx, "reservation updated", "reservation_id", id, "status", out.Status)
    }
    return out, err
}

// moveStay re-validates every booked room for the new range, excluding
// the reservation's own allocations, and recomputes the total.
func (m *LifecycleManager) moveStay(ctx context.Context, uow UnitOfWork, res *model.Reservation, stay domain.DateRange) error {
    rows, err := uow.Reservations().ListRooms(ctx, res.ID)
    if err != nil {
        return domain.Internal("load reservation rooms", err)
    }
    ids := make([]uint64, 0, len(rows))
    for _, r := range rows {
        ids = append(ids, r.RoomID)
    }
    if err := uow.Rooms().LockRooms(ctx, sortedIDs(ids...)); err != nil {
        return domain.Internal("lock rooms", err)
    }
    for _, r := range rows {
        free, err := findAvailable(ctx, uow, AvailabilityQuery{
            HotelID:              res.HotelID,
            RoomTypeID:           r.RoomTypeID,
            Range:                stay,
            Limit:                1,
            ExcludeReservationID: res.ID,
            RoomID:               r.RoomID,
        })
        if err != nil {
            return err
        }
        if len(free) == 0 {
            return domain.RoomUnavailableError{RoomID: r.RoomID}
        }
    }
    res.CheckInDate, res.CheckOutDate = stay.CheckIn, stay.CheckOut
    res.TotalAmount = totalFor(rows, stay.Nights())
    return nil
}

func (m *LifecycleManager) applyCheckIn(res *model.Reservation, now time.Time) {
    res.Status = model.StatusCheckedIn
    res.ActualCheckInTime = &now
    res.UpdatedAt = now
}

func (m *LifecycleManager) isEarly(res model.Reservation, now time.Time) bool {
    standard := res.CheckInDate.Add(time.Duration(m.CheckInHour) * time.Hour)
    return now.Before(standard)
}

func applyCheckOut(res *model.Reservation, now time.Time) {
    res.Status = model.StatusCheckedOut
    res.ActualCheckOutTime = &now
    res.UpdatedAt = now
}

func applyCancel(res *model.Reservation, now time.Time) {
    res.Status = model.StatusCancelled
    res.CancelledAt = &now
    res.UpdatedAt = now
}

func lockReservation(ctx context.Context, uow UnitOfWork, id uint64) (model.Reservation, error) {
    res, err := uow.Reservations().GetForUpdate(ctx, id)
    if err != nil {
        return model.Reservation{}, notFoundOr(err, "reservation", id, "load reservation")
    }
    return res, nil
}

func loadView(ctx context.Context, uow UnitOfWork, res model.Reservation) (ReservationView, error) {
    rows, err := uow.Reservations().ListRooms(ctx, res.ID)
    if err != nil {
        return ReservationView{}, domain.Internal("load reservation rooms", err)
    }
    specials, err := uow.Reservations().ListSpecialRequests(ctx, res.ID)
    if err != nil {
        return ReservationView{}, domain.Internal("load special requests", err)
    }
    return ReservationView{Reservation: res, Rooms: rows, SpecialRequests: specials}, nil
}

// totalFor is Σ rate_per_night × nights over the booked rooms.
func totalFor(rows []model.ReservationRoom, nights int) decimal.Decimal {
    total := decimal.Zero
    for _, r := range rows {
        total = total.Add(domain.StayAmount(r.RatePerNight, 1, nights))
    }
    return total
}

func sortedIDs(ids ...uint64) []uint64 {
    out := append([]uint64(nil), ids...)
    sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
    return out
}
