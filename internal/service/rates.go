package service

import (
    "context"
    "errors"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// Rate tiers reported with a quote.
const (
    TierHoliday = "holiday"
    TierWeekend = "weekend"
    TierBase    = "base"
    TierDefault = "default"
)

// RateQuote is the nightly price for one date and where it came from.
// RateID is zero when the default price was used.
type RateQuote struct {
    Date   time.Time
    Price  decimal.Decimal
    Tier   string
    RateID uint64
}

// RateResolver picks the nightly rate of a room type on a date.
type RateResolver struct {
    tx           TxManager
    defaultPrice decimal.Decimal
}

func NewRateResolver(tx TxManager, defaultPrice decimal.Decimal) *RateResolver {
    return &RateResolver{tx: tx, defaultPrice: domain.RoundMoney(defaultPrice)}
}

// Quote resolves a rate outside of any transaction.
func (r *RateResolver) Quote(ctx context.Context, hotelID, roomTypeID uint64, date time.Time) (RateQuote, error) {
    uow := r.tx.Reader()
    rt, err := uow.Rooms().GetRoomType(ctx, roomTypeID)
    if err != nil {
        return RateQuote{}, notFoundOr(err, "room type", roomTypeID, "load room type")
    }
    if rt.HotelID != hotelID {
        return RateQuote{}, domain.NotFoundError{Resource: "room type", ID: roomTypeID}
    }
    return r.resolve(ctx, uow, hotelID, roomTypeID, date)
}

// resolve chooses the applicable rate row, then the tier.  A dated row
// covering the date beats the general row; among dated rows the
// narrowest window wins, then the lowest id.
func (r *RateResolver) resolve(ctx context.Context, uow UnitOfWork, hotelID, roomTypeID uint64, date time.Time) (RateQuote, error) {
    date = domain.TruncateDate(date)
    rates, err := uow.Rates().ListRates(ctx, hotelID, roomTypeID)
    if err != nil {
        return RateQuote{}, domain.Internal("load room rates", err)
    }
    var chosen *model.RoomRate
    for i := range rates {
        rt := &rates[i]
        if !rt.Covers(date) {
            continue
        }
        if chosen == nil || betterRate(rt, chosen) {
            chosen = rt
        }
    }
    if chosen == nil {
        return RateQuote{Date: date, Price: r.defaultPrice, Tier: TierDefault}, nil
    }
    q := RateQuote{Date: date, Price: domain.RoundMoney(chosen.BasePrice), Tier: TierBase, RateID: chosen.ID}
    if chosen.HolidayPrice != nil {
        holiday, err := uow.Rates().IsHoliday(ctx, hotelID, date)
        if err != nil {
            return RateQuote{}, domain.Internal("load hotel holidays", err)
        }
        if holiday {
            q.Price, q.Tier = domain.RoundMoney(*chosen.HolidayPrice), TierHoliday
            return q, nil
        }
    }
    if chosen.WeekendPrice != nil && isWeekendNight(date) {
        q.Price, q.Tier = domain.RoundMoney(*chosen.WeekendPrice), TierWeekend
    }
    return q, nil
}

func betterRate(a, b *model.RoomRate) bool {
    if a.IsGeneral() != b.IsGeneral() {
        return !a.IsGeneral()
    }
    if !a.IsGeneral() {
        wa, wb := rateWindow(a), rateWindow(b)
        if wa != wb {
            return wa < wb
        }
    }
    return a.ID < b.ID
}

// rateWindow measures a dated rate; an open-ended side counts as
// unbounded.
func rateWindow(r *model.RoomRate) time.Duration {
    if r.StartDate == nil || r.EndDate == nil {
        return time.Duration(1<<63 - 1)
    }
    return r.EndDate.Sub(*r.StartDate)
}

func isWeekendNight(d time.Time) bool {
    wd := d.Weekday()
    return wd == time.Friday || wd == time.Saturday
}

// RateInput is the admin upsert of a general rate.
type RateInput struct {
    HotelID      uint64
    RoomTypeID   uint64
    BasePrice    decimal.Decimal
    WeekendPrice *decimal.Decimal
    HolidayPrice *decimal.Decimal
}

// UpsertGeneralRate replaces the general rate of a room type.  Existing
// reservations keep the rate they captured.
func (r *RateResolver) UpsertGeneralRate(ctx context.Context, in RateInput) (model.RoomRate, error) {
    if in.BasePrice.IsNegative() || in.BasePrice.IsZero() {
        return model.RoomRate{}, domain.ValidationError{Field: "base_price", Msg: "must be positive"}
    }
    for field, p := range map[string]*decimal.Decimal{"weekend_price": in.WeekendPrice, "holiday_price": in.HolidayPrice} {
        if p != nil && (p.IsNegative() || p.IsZero()) {
            return model.RoomRate{}, domain.ValidationError{Field: field, Msg: "must be positive"}
        }
    }
    rate := model.RoomRate{
        HotelID:      in.HotelID,
        RoomTypeID:   in.RoomTypeID,
        BasePrice:    domain.RoundMoney(in.BasePrice),
        WeekendPrice: roundPtr(in.WeekendPrice),
        HolidayPrice: roundPtr(in.HolidayPrice),
    }
    err := r.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        rt, err := uow.Rooms().GetRoomType(ctx, in.RoomTypeID)
        if err != nil {
            return notFoundOr(err, "room type", in.RoomTypeID, "load room type")
        }
        if rt.HotelID != in.HotelID {
            return domain.NotFoundError{Resource: "room type", ID: in.RoomTypeID}
        }
        return domain.Internal("upsert room rate", uow.Rates().UpsertGeneralRate(ctx, &rate))
    })
    return rate, err
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
    if d == nil {
        return nil
    }
    v := domain.RoundMoney(*d)
    return &v
}

// notFoundOr maps a storage miss to a NotFoundError and anything else to
// an InternalError.
func notFoundOr(err error, resource string, id uint64, op string) error {
    if errors.Is(err, domain.ErrRecordNotFound) {
        return domain.NotFoundError{Resource: resource, ID: id, Err: err}
    }
    return domain.Internal(op, err)
}
