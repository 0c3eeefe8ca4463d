package model

import "time"

// Hotel is the root of a property's inventory.  Hotels are managed by
// an upstream catalogue service; the booking engine only reads them.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name.
//  City      – city used in notifications.
//  CreatedAt – creation timestamp.
type Hotel struct {
    ID        uint64    // hotels.id
    Name      string    // hotels.name
    City      string    // hotels.city
    CreatedAt time.Time // hotels.created_at
}

// RoomType is a named category of rooms (e.g. "Deluxe") within a hotel.
//
// Fields:
//  ID       – primary key identifier.
//  HotelID  – owning hotel.
//  Name     – category name shown on invoices.
//  Capacity – maximum number of guests per room.
type RoomType struct {
    ID       uint64 // room_types.id
    HotelID  uint64 // room_types.hotel_id
    Name     string // room_types.name
    Capacity uint32 // room_types.capacity
}

// RoomStatus flags whether a physical room can be allocated at all.
// It is independent of bookings: a room under maintenance is never
// offered, whatever its reservations look like.
type RoomStatus string

const (
    RoomAvailable   RoomStatus = "available"
    RoomMaintenance RoomStatus = "maintenance"
    RoomUnavailable RoomStatus = "unavailable"
)

// Room is a physical room and the unit of allocation.  RoomNumber is
// unique per hotel.
type Room struct {
    ID         uint64     // rooms.id
    HotelID    uint64     // rooms.hotel_id
    RoomTypeID uint64     // rooms.room_type_id
    RoomNumber string     // rooms.room_number
    Status     RoomStatus // rooms.status
}
