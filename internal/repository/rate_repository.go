package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// RateRepo stores room rates and hotel holidays.
type RateRepo struct {
    q queryer
}

func NewRateRepo(q queryer) *RateRepo { return &RateRepo{q: q} }

// ListRates returns every rate row of the pair ordered by id.  Choosing
// among them is the resolver's job.
func (r *RateRepo) ListRates(ctx context.Context, hotelID, roomTypeID uint64) ([]model.RoomRate, error) {
    const q = `SELECT id, hotel_id, room_type_id, base_price, weekend_price, holiday_price, start_date, end_date
FROM room_rates WHERE hotel_id = ? AND room_type_id = ? ORDER BY id`
    rows, err := r.q.QueryContext(ctx, q, hotelID, roomTypeID)
    if err != nil {
        return nil, translate("list room rates", err)
    }
    defer rows.Close()
    var out []model.RoomRate
    for rows.Next() {
        var (
            rt             model.RoomRate
            weekend, holid decimal.NullDecimal
            start, end     sql.NullTime
        )
        if err := rows.Scan(&rt.ID, &rt.HotelID, &rt.RoomTypeID, &rt.BasePrice, &weekend, &holid, &start, &end); err != nil {
            return nil, translate("scan room rate", err)
        }
        if weekend.Valid {
            rt.WeekendPrice = &weekend.Decimal
        }
        if holid.Valid {
            rt.HolidayPrice = &holid.Decimal
        }
        if start.Valid {
            t := start.Time
            rt.StartDate = &t
        }
        if end.Valid {
            t := end.Time
            rt.EndDate = &t
        }
        out = append(out, rt)
    }
    return out, translate("list room rates", rows.Err())
}

func (r *RateRepo) IsHoliday(ctx context.Context, hotelID uint64, date time.Time) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM hotel_holidays WHERE hotel_id = ? AND holiday_date = ?)`
    var ok bool
    if err := r.q.QueryRowContext(ctx, q, hotelID, date).Scan(&ok); err != nil {
        return false, translate("check holiday", err)
    }
    return ok, nil
}

// UpsertGeneralRate relies on the generated general_key column, which is
// only non-null for undated rows and carries a unique index, so
// ON DUPLICATE KEY replaces the existing general rate.
func (r *RateRepo) UpsertGeneralRate(ctx context.Context, rate *model.RoomRate) error {
    const q = `INSERT INTO room_rates (hotel_id, room_type_id, base_price, weekend_price, holiday_price, start_date, end_date)
VALUES (?, ?, ?, ?, ?, NULL, NULL)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), base_price = VALUES(base_price),
  weekend_price = VALUES(weekend_price), holiday_price = VALUES(holiday_price)`
    res, err := r.q.ExecContext(ctx, q, rate.HotelID, rate.RoomTypeID, rate.BasePrice,
        nullDecimal(rate.WeekendPrice), nullDecimal(rate.HolidayPrice))
    if err != nil {
        return translate("upsert room rate", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return translate("upsert room rate", err)
    }
    rate.ID = uint64(id)
    return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
    if d == nil {
        return decimal.NullDecimal{}
    }
    return decimal.NullDecimal{Decimal: *d, Valid: true}
}
