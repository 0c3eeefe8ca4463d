package service

import (
    "context"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// AvailabilityChecker finds rooms of a type that are free for a stay.  A
// room is free when its status is available and no active reservation
// holds it over an overlapping range.
type AvailabilityChecker struct {
    tx    TxManager
    rates *RateResolver
}

func NewAvailabilityChecker(tx TxManager, rates *RateResolver) *AvailabilityChecker {
    return &AvailabilityChecker{tx: tx, rates: rates}
}

// FindAvailableRooms returns up to needed free rooms ordered by room id.
// The answer is a preview: allocation re-evaluates it under lock.
func (a *AvailabilityChecker) FindAvailableRooms(ctx context.Context, hotelID, roomTypeID uint64, stay domain.DateRange, needed int) ([]model.Room, error) {
    if needed < 1 {
        return nil, domain.ValidationError{Field: "quantity", Msg: "must be at least 1"}
    }
    if err := stay.Validate(); err != nil {
        return nil, err
    }
    uow := a.tx.Reader()
    if err := checkRoomType(ctx, uow, hotelID, roomTypeID); err != nil {
        return nil, err
    }
    return findAvailable(ctx, uow, AvailabilityQuery{HotelID: hotelID, RoomTypeID: roomTypeID, Range: stay, Limit: needed})
}

// Preview is the public availability answer: every free room of the
// type plus the nightly rate on the check-in date.
type Preview struct {
    HotelID    uint64
    RoomTypeID uint64
    Stay       domain.DateRange
    Rooms      []model.Room
    Rate       RateQuote
}

func (a *AvailabilityChecker) Preview(ctx context.Context, hotelID, roomTypeID uint64, stay domain.DateRange) (Preview, error) {
    if err := stay.Validate(); err != nil {
        return Preview{}, err
    }
    uow := a.tx.Reader()
    if err := checkRoomType(ctx, uow, hotelID, roomTypeID); err != nil {
        return Preview{}, err
    }
    rooms, err := findAvailable(ctx, uow, AvailabilityQuery{HotelID: hotelID, RoomTypeID: roomTypeID, Range: stay})
    if err != nil {
        return Preview{}, err
    }
    quote, err := a.rates.resolve(ctx, uow, hotelID, roomTypeID, stay.CheckIn)
    if err != nil {
        return Preview{}, err
    }
    return Preview{HotelID: hotelID, RoomTypeID: roomTypeID, Stay: stay, Rooms: rooms, Rate: quote}, nil
}

func findAvailable(ctx context.Context, uow UnitOfWork, q AvailabilityQuery) ([]model.Room, error) {
    rooms, err := uow.Rooms().FindAvailable(ctx, q)
    if err != nil {
        return nil, domain.Internal("find available rooms", err)
    }
    return rooms, nil
}

// checkRoomType fails with NotFound unless the room type exists in the
// hotel.
func checkRoomType(ctx context.Context, uow UnitOfWork, hotelID, roomTypeID uint64) error {
    rt, err := uow.Rooms().GetRoomType(ctx, roomTypeID)
    if err != nil {
        return notFoundOr(err, "room type", roomTypeID, "load room type")
    }
    if rt.HotelID != hotelID {
        return domain.NotFoundError{Resource: "room type", ID: roomTypeID}
    }
    return nil
}
