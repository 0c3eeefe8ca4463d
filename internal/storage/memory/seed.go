package memory

import (
    "fmt"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// Catalogue data is owned by an upstream service; these helpers load it
// directly into the store.

func (s *Store) AddHotel(name, city string) model.Hotel {
    s.mu.Lock()
    defer s.mu.Unlock()
    h := model.Hotel{ID: s.st.id(), Name: name, City: city, CreatedAt: time.Now().UTC()}
    s.st.hotels[h.ID] = h
    return h
}

func (s *Store) AddRoomType(hotelID uint64, name string, capacity uint32) model.RoomType {
    s.mu.Lock()
    defer s.mu.Unlock()
    rt := model.RoomType{ID: s.st.id(), HotelID: hotelID, Name: name, Capacity: capacity}
    s.st.roomTypes[rt.ID] = rt
    return rt
}

func (s *Store) AddRoom(hotelID, roomTypeID uint64, number string, status model.RoomStatus) model.Room {
    s.mu.Lock()
    defer s.mu.Unlock()
    r := model.Room{ID: s.st.id(), HotelID: hotelID, RoomTypeID: roomTypeID, RoomNumber: number, Status: status}
    s.st.rooms[r.ID] = r
    return r
}

// AddRate stores a rate row as given, dated or general.
func (s *Store) AddRate(rate model.RoomRate) model.RoomRate {
    s.mu.Lock()
    defer s.mu.Unlock()
    rate.ID = s.st.id()
    s.st.rates[rate.ID] = rate
    return rate
}

func (s *Store) AddHoliday(hotelID uint64, date time.Time) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.st.holidays[holidayKey{hotelID, domain.FormatDate(date)}] = true
}

// SetRoomStatus changes a room's housekeeping status.
func (s *Store) SetRoomStatus(roomID uint64, status model.RoomStatus) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if r, ok := s.st.rooms[roomID]; ok {
        r.Status = status
        s.st.rooms[roomID] = r
    }
}

// SeedDemo loads one hotel with two room types for local runs.
func SeedDemo(s *Store) {
    h := s.AddHotel("Grand Demo Hotel", "Lisbon")
    std := s.AddRoomType(h.ID, "Standard", 2)
    dlx := s.AddRoomType(h.ID, "Deluxe", 3)
    for i := 1; i <= 5; i++ {
        s.AddRoom(h.ID, std.ID, fmt.Sprintf("1%02d", i), model.RoomAvailable)
    }
    for i := 1; i <= 3; i++ {
        s.AddRoom(h.ID, dlx.ID, fmt.Sprintf("2%02d", i), model.RoomAvailable)
    }
    weekend := decimal.RequireFromString("120.00")
    s.AddRate(model.RoomRate{HotelID: h.ID, RoomTypeID: std.ID, BasePrice: decimal.RequireFromString("100.00"), WeekendPrice: &weekend})
    s.AddRate(model.RoomRate{HotelID: h.ID, RoomTypeID: dlx.ID, BasePrice: decimal.RequireFromString("180.00")})
}
