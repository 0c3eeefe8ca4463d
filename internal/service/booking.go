package service

import (
    "context"
    "log/slog"
    "sort"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// RoomRequest asks for Quantity rooms of one type.
type RoomRequest struct {
    RoomTypeID uint64
    Quantity   int
}

type BookingRequest struct {
    ClientID        uint64
    ClientEmail     string
    HotelID         uint64
    CheckIn         time.Time
    CheckOut        time.Time
    Rooms           []RoomRequest
    SpecialRequests []string
}

type BookingResult struct {
    ReservationID   uint64
    ReferenceNumber string
    TotalAmount     decimal.Decimal
}

// BookingAllocator turns a booking request into a confirmed reservation
// with physical rooms, all or nothing.
type BookingAllocator struct {
    tx       TxManager
    rates    *RateResolver
    notifier Notifier
    log      *slog.Logger

    Now       func() time.Time
    Reference ReferenceFunc
}

func NewBookingAllocator(tx TxManager, rates *RateResolver, notifier Notifier, log *slog.Logger) *BookingAllocator {
    return &BookingAllocator{
        tx:        tx,
        rates:     rates,
        notifier:  notifier,
        log:       log,
        Now:       func() time.Time { return time.Now().UTC() },
        Reference: NewReference,
    }
}

// CreateReservation allocates every requested room inside one
// transaction.  The candidate rooms of each type are locked in room type
// order before the overlap query runs, so two requests competing for
// the last room serialise and the loser sees it taken.
func (b *BookingAllocator) CreateReservation(ctx context.Context, req BookingRequest) (BookingResult, error) {
    stay, err := domain.NewDateRange(req.CheckIn, req.CheckOut)
    if err != nil {
        return BookingResult{}, err
    }
    now := b.Now()
    if stay.CheckIn.Before(domain.TruncateDate(now)) {
        return BookingResult{}, domain.ValidationError{Field: "check_in", Msg: "must not be in the past"}
    }
    if req.ClientID == 0 {
        return BookingResult{}, domain.ValidationError{Field: "client_id", Msg: "is required"}
    }
    if req.HotelID == 0 {
        return BookingResult{}, domain.ValidationError{Field: "hotel_id", Msg: "is required"}
    }
    wanted, err := mergeRoomRequests(req.Rooms)
    if err != nil {
        return BookingResult{}, err
    }
    specials := cleanRequests(req.SpecialRequests)

    nights := stay.Nights()
    var (
        res    model.Reservation
        notice ReservationNotice
    )
    err = b.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        hotel, err := uow.Rooms().GetHotel(ctx, req.HotelID)
        if err != nil {
            return notFoundOr(err, "hotel", req.HotelID, "load hotel")
        }
        var (
            rows  []model.ReservationRoom
            total = decimal.Zero
        )
        for _, w := range wanted {
            rt, err := uow.Rooms().GetRoomType(ctx, w.RoomTypeID)
            if err != nil {
                return notFoundOr(err, "room type", w.RoomTypeID, "load room type")
            }
            if rt.HotelID != req.HotelID {
                return domain.NotFoundError{Resource: "room type", ID: w.RoomTypeID}
            }
            if err := uow.Rooms().LockRoomsByType(ctx, req.HotelID, w.RoomTypeID); err != nil {
                return domain.Internal("lock rooms", err)
            }
            rooms, err := findAvailable(ctx, uow, AvailabilityQuery{
                HotelID:    req.HotelID,
                RoomTypeID: w.RoomTypeID,
                Range:      stay,
                Limit:      w.Quantity,
            })
            if err != nil {
                return err
            }
            if len(rooms) < w.Quantity {
                return domain.InsufficientInventoryError{RoomTypeID: w.RoomTypeID, Requested: w.Quantity, Available: len(rooms)}
            }
            quote, err := b.rates.resolve(ctx, uow, req.HotelID, w.RoomTypeID, stay.CheckIn)
            if err != nil {
                return err
            }
            total = total.Add(domain.StayAmount(quote.Price, w.Quantity, nights))
            for _, room := range rooms {
                rows = append(rows, model.ReservationRoom{
                    RoomID:       room.ID,
                    RoomTypeID:   w.RoomTypeID,
                    RatePerNight: quote.Price,
                    RoomNumber:   room.RoomNumber,
                    RoomTypeName: rt.Name,
                })
            }
        }

        res = model.Reservation{
            ClientID:     req.ClientID,
            HotelID:      req.HotelID,
            CheckInDate:  stay.CheckIn,
            CheckOutDate: stay.CheckOut,
            TotalAmount:  domain.RoundMoney(total),
            Status:       model.StatusConfirmed,
            CreatedAt:    now,
            UpdatedAt:    now,
        }
        err = withReference(ctx, b.Reference, reservationPrefix, now, func(ref string) error {
            res.ReferenceNumber = ref
            return uow.Reservations().Create(ctx, &res)
        })
        if err != nil {
            return domain.Internal("insert reservation", err)
        }
        for i := range rows {
            rows[i].ReservationID = res.ID
        }
        if err := uow.Reservations().AddRooms(ctx, rows); err != nil {
            return domain.Internal("insert reservation rooms", err)
        }
        if len(specials) > 0 {
            if err := uow.Reservations().ReplaceSpecialRequests(ctx, res.ID, specials); err != nil {
                return domain.Internal("insert special requests", err)
            }
        }
        notice = buildNotice(res, hotel, rows, req.ClientEmail, nights, now)
        return nil
    })
    if err != nil {
        return BookingResult{}, err
    }

    b.log.InfoContext(ctx, "reservation created",
        "reservation_id", res.ID,
        "reference", res.ReferenceNumber,
        "hotel_id", res.HotelID,
        "stay", stay.String(),
        "rooms", len(notice.Rooms))
    if b.notifier != nil {
        if err := b.notifier.ReservationConfirmed(ctx, notice); err != nil {
            b.log.WarnContext(ctx, "confirmation notification failed", "reservation_id", res.ID, "err", err)
        }
    }
    return BookingResult{ReservationID: res.ID, ReferenceNumber: res.ReferenceNumber, TotalAmount: res.TotalAmount}, nil
}

// mergeRoomRequests sums duplicate room types and orders the result by
// room type id, which fixes the order in which rows are locked.
func mergeRoomRequests(in []RoomRequest) ([]RoomRequest, error) {
    if len(in) == 0 {
        return nil, domain.ValidationError{Field: "rooms", Msg: "at least one room is required"}
    }
    sum := make(map[uint64]int, len(in))
    for _, r := range in {
        if r.RoomTypeID == 0 {
            return nil, domain.ValidationError{Field: "rooms.room_type_id", Msg: "is required"}
        }
        if r.Quantity < 1 {
            return nil, domain.ValidationError{Field: "rooms.quantity", Msg: "must be at least 1"}
        }
        sum[r.RoomTypeID] += r.Quantity
    }
    out := make([]RoomRequest, 0, len(sum))
    for id, q := range sum {
        out = append(out, RoomRequest{RoomTypeID: id, Quantity: q})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].RoomTypeID < out[j].RoomTypeID })
    return out, nil
}

func cleanRequests(in []string) []string {
    out := make([]string, 0, len(in))
    for _, s := range in {
        if s = strings.TrimSpace(s); s != "" {
            out = append(out, s)
        }
    }
    return out
}

func buildNotice(res model.Reservation, hotel model.Hotel, rows []model.ReservationRoom, email string, nights int, now time.Time) ReservationNotice {
    n := ReservationNotice{
        ReservationID:   res.ID,
        ReferenceNumber: res.ReferenceNumber,
        ClientID:        res.ClientID,
        Email:           email,
        HotelID:         hotel.ID,
        HotelName:       hotel.Name,
        CheckIn:         res.CheckInDate,
        CheckOut:        res.CheckOutDate,
        Nights:          nights,
        TotalAmount:     res.TotalAmount,
        ConfirmedAt:     now,
    }
    for _, r := range rows {
        n.Rooms = append(n.Rooms, NoticeRoom{RoomTypeName: r.RoomTypeName, RoomNumber: r.RoomNumber, RatePerNight: r.RatePerNight})
    }
    return n
}
