package repository

import (
    "context"
    "strings"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// RoomRepo reads hotels, room types and rooms.  Rooms are the unit of
// allocation; their rows double as the lock that serialises bookings.
type RoomRepo struct {
    q    queryer
    inTx bool
}

// NewRoomRepo returns a RoomRepo bound to q, which may be a *sql.DB or a
// *sql.Tx.
func NewRoomRepo(q queryer) *RoomRepo { return &RoomRepo{q: q} }

// GetHotel returns domain.ErrRecordNotFound when the hotel is missing.
func (r *RoomRepo) GetHotel(ctx context.Context, id uint64) (model.Hotel, error) {
    const q = `SELECT id, name, city, created_at FROM hotels WHERE id = ?`
    var h model.Hotel
    err := r.q.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.City, &h.CreatedAt)
    if err != nil {
        return model.Hotel{}, translate("get hotel", err)
    }
    return h, nil
}

func (r *RoomRepo) GetRoomType(ctx context.Context, id uint64) (model.RoomType, error) {
    const q = `SELECT id, hotel_id, name, capacity FROM room_types WHERE id = ?`
    var rt model.RoomType
    err := r.q.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Capacity)
    if err != nil {
        return model.RoomType{}, translate("get room type", err)
    }
    return rt, nil
}

func (r *RoomRepo) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
    const q = `SELECT id, hotel_id, room_type_id, room_number, status FROM rooms WHERE id = ?`
    var room model.Room
    err := r.q.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.HotelID, &room.RoomTypeID, &room.RoomNumber, &room.Status)
    if err != nil {
        return model.Room{}, translate("get room", err)
    }
    return room, nil
}

// LockRoomsByType takes FOR UPDATE locks on every room of the type in id
// order.  Two transactions allocating the same type queue here, and the
// second one runs its overlap query only after the first committed.
func (r *RoomRepo) LockRoomsByType(ctx context.Context, hotelID, roomTypeID uint64) error {
    if !r.inTx {
        return nil
    }
    const q = `SELECT id FROM rooms WHERE hotel_id = ? AND room_type_id = ? ORDER BY id FOR UPDATE`
    return r.drainLock(ctx, "lock rooms by type", q, hotelID, roomTypeID)
}

// LockRooms locks specific rooms.  ids must be sorted ascending so that
// lock order is the same everywhere.
func (r *RoomRepo) LockRooms(ctx context.Context, ids []uint64) error {
    if !r.inTx || len(ids) == 0 {
        return nil
    }
    args := make([]any, len(ids))
    for i, id := range ids {
        args[i] = id
    }
    q := `SELECT id FROM rooms WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id FOR UPDATE`
    return r.drainLock(ctx, "lock rooms", q, args...)
}

func (r *RoomRepo) drainLock(ctx context.Context, op, q string, args ...any) error {
    rows, err := r.q.QueryContext(ctx, q, args...)
    if err != nil {
        return translate(op, err)
    }
    defer rows.Close()
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return translate(op, err)
        }
    }
    return translate(op, rows.Err())
}

// activeStatusList is the SQL literal of model.ActiveStatuses.
var activeStatusList = func() string {
    parts := make([]string, len(model.ActiveStatuses))
    for i, s := range model.ActiveStatuses {
        parts[i] = "'" + string(s) + "'"
    }
    return strings.Join(parts, ",")
}()

// FindAvailable runs the overlap query: rooms of the type with status
// available and no active allocation whose stay overlaps the requested
// range.  Ordering by id keeps allocation deterministic.
func (r *RoomRepo) FindAvailable(ctx context.Context, aq service.AvailabilityQuery) ([]model.Room, error) {
    var sb strings.Builder
    sb.WriteString(`SELECT r.id, r.hotel_id, r.room_type_id, r.room_number, r.status
FROM rooms r
WHERE r.hotel_id = ? AND r.room_type_id = ? AND r.status = 'available'`)
    args := []any{aq.HotelID, aq.RoomTypeID}
    if aq.RoomID != 0 {
        sb.WriteString(` AND r.id = ?`)
        args = append(args, aq.RoomID)
    }
    sb.WriteString(`
  AND NOT EXISTS (
    SELECT 1 FROM reservation_rooms rr
    JOIN reservations res ON res.id = rr.reservation_id
    WHERE rr.room_id = r.id
      AND res.status IN (` + activeStatusList + `)
      AND res.id <> ?
      AND NOT (res.check_out_date <= ? OR res.check_in_date >= ?)
  )
ORDER BY r.id`)
    args = append(args, aq.ExcludeReservationID, aq.Range.CheckIn, aq.Range.CheckOut)
    if aq.Limit > 0 {
        sb.WriteString(` LIMIT ?`)
        args = append(args, aq.Limit)
    }

    rows, err := r.q.QueryContext(ctx, sb.String(), args...)
    if err != nil {
        return nil, translate("find available rooms", err)
    }
    defer rows.Close()
    var out []model.Room
    for rows.Next() {
        var room model.Room
        if err := rows.Scan(&room.ID, &room.HotelID, &room.RoomTypeID, &room.RoomNumber, &room.Status); err != nil {
            return nil, translate("scan room", err)
        }
        out = append(out, room)
    }
    return out, translate("find available rooms", rows.Err())
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
