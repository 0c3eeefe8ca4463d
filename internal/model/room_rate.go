package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// RoomRate holds the nightly price tiers for a (hotel, room type) pair.
// A rate with nil StartDate and EndDate is the general rate; there is at
// most one general rate per pair.  Dated rates cover the inclusive
// window [StartDate, EndDate] and take precedence over the general rate.
//
// Fields:
//  ID           – primary key identifier.
//  HotelID      – hotel the rate applies to.
//  RoomTypeID   – room type the rate applies to.
//  BasePrice    – default nightly price.
//  WeekendPrice – price for Friday and Saturday nights (nullable).
//  HolidayPrice – price for hotel holidays (nullable).
//  StartDate    – first date of a dated rate (nullable).
//  EndDate      – last date of a dated rate (nullable).
type RoomRate struct {
    ID           uint64           // room_rates.id
    HotelID      uint64           // room_rates.hotel_id
    RoomTypeID   uint64           // room_rates.room_type_id
    BasePrice    decimal.Decimal  // room_rates.base_price
    WeekendPrice *decimal.Decimal // room_rates.weekend_price (nullable)
    HolidayPrice *decimal.Decimal // room_rates.holiday_price (nullable)
    StartDate    *time.Time       // room_rates.start_date (nullable)
    EndDate      *time.Time       // room_rates.end_date (nullable)
}

// IsGeneral reports whether the rate is the date-unbounded default rate.
func (r RoomRate) IsGeneral() bool {
    return r.StartDate == nil && r.EndDate == nil
}

// Covers reports whether a dated rate applies on the given date.  A
// general rate covers every date.
func (r RoomRate) Covers(date time.Time) bool {
    if r.StartDate != nil && date.Before(*r.StartDate) {
        return false
    }
    if r.EndDate != nil && date.After(*r.EndDate) {
        return false
    }
    return true
}
