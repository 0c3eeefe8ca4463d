package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// ReservationRepo provides CRUD operations for reservations, their
// rooms and their special requests.  All timestamp fields are stored in
// UTC; check-in and check-out are DATE columns.
type ReservationRepo struct {
    q    queryer
    inTx bool
}

// NewReservationRepo returns a ReservationRepo bound to q.
func NewReservationRepo(q queryer) *ReservationRepo { return &ReservationRepo{q: q} }

const reservationColumns = `id, reference_number, client_id, hotel_id, check_in_date, check_out_date, total_amount,
status, actual_check_in_time, actual_check_out_time, cancelled_at, created_at, updated_at`

// Create inserts a new reservation and populates its generated ID.  The
// caller supplies the reference number; a collision on its unique index
// surfaces as domain.ErrDuplicateKey.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (reference_number, client_id, hotel_id, check_in_date, check_out_date,
total_amount, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := r.q.ExecContext(ctx, q, res.ReferenceNumber, res.ClientID, res.HotelID,
        res.CheckInDate, res.CheckOutDate, res.TotalAmount, string(res.Status), res.CreatedAt, res.UpdatedAt)
    if err != nil {
        return translate("insert reservation", err)
    }
    id, err := result.LastInsertId()
    if err != nil {
        return translate("insert reservation", err)
    }
    res.ID = uint64(id)
    return nil
}

// AddRooms inserts multiple reservation_rooms rows in a single
// statement and fills in their IDs.  MySQL assigns consecutive ids to a
// multi-row insert, starting at LAST_INSERT_ID().
func (r *ReservationRepo) AddRooms(ctx context.Context, rooms []model.ReservationRoom) error {
    if len(rooms) == 0 {
        return nil
    }
    query := `INSERT INTO reservation_rooms (reservation_id, room_id, room_type_id, rate_per_night) VALUES `
    args := make([]any, 0, len(rooms)*4)
    for i, rr := range rooms {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, rr.ReservationID, rr.RoomID, rr.RoomTypeID, rr.RatePerNight)
    }
    result, err := r.q.ExecContext(ctx, query, args...)
    if err != nil {
        return translate("insert reservation rooms", err)
    }
    first, err := result.LastInsertId()
    if err != nil {
        return translate("insert reservation rooms", err)
    }
    for i := range rooms {
        rooms[i].ID = uint64(first) + uint64(i)
    }
    return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id uint64) (model.Reservation, error) {
    return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
}

// GetForUpdate locks the reservation row for the rest of the
// transaction.  Outside a transaction it is a plain read.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    if r.inTx {
        q += ` FOR UPDATE`
    }
    return r.get(ctx, q, id)
}

func (r *ReservationRepo) get(ctx context.Context, q string, id uint64) (model.Reservation, error) {
    var (
        res               model.Reservation
        checkIn, checkOut sql.NullTime
        cancelled         sql.NullTime
    )
    err := r.q.QueryRowContext(ctx, q, id).Scan(
        &res.ID, &res.ReferenceNumber, &res.ClientID, &res.HotelID, &res.CheckInDate, &res.CheckOutDate,
        &res.TotalAmount, &res.Status, &checkIn, &checkOut, &cancelled, &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return model.Reservation{}, translate("get reservation", err)
    }
    res.ActualCheckInTime = timePtr(checkIn)
    res.ActualCheckOutTime = timePtr(checkOut)
    res.CancelledAt = timePtr(cancelled)
    return res, nil
}

// ListRooms returns the reservation's rooms with room number and room
// type name joined in, ordered by reservation room id.
func (r *ReservationRepo) ListRooms(ctx context.Context, reservationID uint64) ([]model.ReservationRoom, error) {
    const q = `SELECT rr.id, rr.reservation_id, rr.room_id, rr.room_type_id, rr.rate_per_night, rm.room_number, rt.name
FROM reservation_rooms rr
JOIN rooms rm ON rm.id = rr.room_id
JOIN room_types rt ON rt.id = rr.room_type_id
WHERE rr.reservation_id = ?
ORDER BY rr.id`
    rows, err := r.q.QueryContext(ctx, q, reservationID)
    if err != nil {
        return nil, translate("list reservation rooms", err)
    }
    defer rows.Close()
    var out []model.ReservationRoom
    for rows.Next() {
        var rr model.ReservationRoom
        if err := rows.Scan(&rr.ID, &rr.ReservationID, &rr.RoomID, &rr.RoomTypeID, &rr.RatePerNight, &rr.RoomNumber, &rr.RoomTypeName); err != nil {
            return nil, translate("scan reservation room", err)
        }
        out = append(out, rr)
    }
    return out, translate("list reservation rooms", rows.Err())
}

// Update writes back the mutable columns of a reservation.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
    const q = `UPDATE reservations SET check_in_date = ?, check_out_date = ?, total_amount = ?, status = ?,
actual_check_in_time = ?, actual_check_out_time = ?, cancelled_at = ?, updated_at = ? WHERE id = ?`
    result, err := r.q.ExecContext(ctx, q, res.CheckInDate, res.CheckOutDate, res.TotalAmount, string(res.Status),
        nullTime(res.ActualCheckInTime), nullTime(res.ActualCheckOutTime), nullTime(res.CancelledAt), res.UpdatedAt, res.ID)
    if err != nil {
        return translate("update reservation", err)
    }
    return requireOne(result, "update reservation")
}

func (r *ReservationRepo) UpdateRoomAssignment(ctx context.Context, reservationRoomID, roomID uint64) error {
    const q = `UPDATE reservation_rooms SET room_id = ? WHERE id = ?`
    result, err := r.q.ExecContext(ctx, q, roomID, reservationRoomID)
    if err != nil {
        return translate("update reservation room", err)
    }
    return requireOne(result, "update reservation room")
}

// ReplaceSpecialRequests deletes the reservation's requests and inserts
// texts in their place.
func (r *ReservationRepo) ReplaceSpecialRequests(ctx context.Context, reservationID uint64, texts []string) error {
    if _, err := r.q.ExecContext(ctx, `DELETE FROM reservation_special_requests WHERE reservation_id = ?`, reservationID); err != nil {
        return translate("delete special requests", err)
    }
    if len(texts) == 0 {
        return nil
    }
    query := `INSERT INTO reservation_special_requests (reservation_id, request_text) VALUES `
    args := make([]any, 0, len(texts)*2)
    for i, t := range texts {
        if i > 0 {
            query += ","
        }
        query += "(?, ?)"
        args = append(args, reservationID, t)
    }
    _, err := r.q.ExecContext(ctx, query, args...)
    return translate("insert special requests", err)
}

func (r *ReservationRepo) ListSpecialRequests(ctx context.Context, reservationID uint64) ([]model.SpecialRequest, error) {
    const q = `SELECT id, reservation_id, request_text FROM reservation_special_requests WHERE reservation_id = ? ORDER BY id`
    rows, err := r.q.QueryContext(ctx, q, reservationID)
    if err != nil {
        return nil, translate("list special requests", err)
    }
    defer rows.Close()
    var out []model.SpecialRequest
    for rows.Next() {
        var s model.SpecialRequest
        if err := rows.Scan(&s.ID, &s.ReservationID, &s.Text); err != nil {
            return nil, translate("scan special request", err)
        }
        out = append(out, s)
    }
    return out, translate("list special requests", rows.Err())
}
