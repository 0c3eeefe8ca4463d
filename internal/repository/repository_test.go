package repository

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock init error: %v", err)
    }
    t.Cleanup(func() { db.Close() })
    return db, mock
}

func TestWithinTxCommitsAndRollsBack(t *testing.T) {
    db, mock := newMock(t)
    m := NewTxManager(db)
    ctx := context.Background()

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("UPDATE reservation_rooms SET room_id = ?")).
        WithArgs(7, 3).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()
    err := m.WithinTx(ctx, func(ctx context.Context, uow service.UnitOfWork) error {
        return uow.Reservations().UpdateRoomAssignment(ctx, 3, 7)
    })
    if err != nil {
        t.Fatalf("commit path: %v", err)
    }

    boom := errors.New("boom")
    mock.ExpectBegin()
    mock.ExpectRollback()
    if err := m.WithinTx(ctx, func(context.Context, service.UnitOfWork) error { return boom }); !errors.Is(err, boom) {
        t.Fatalf("expected boom, got %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestFindAvailableQuery(t *testing.T) {
    db, mock := newMock(t)
    in := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
    out := in.AddDate(0, 0, 2)

    mock.ExpectQuery(`SELECT r\.id, r\.hotel_id.*r\.status = 'available'.*NOT EXISTS.*'confirmed','checked_in','modified_by_agent'.*res\.id <> \?.*NOT \(res\.check_out_date <= \? OR res\.check_in_date >= \?\).*ORDER BY r\.id LIMIT \?`).
        WithArgs(1, 2, 0, in, out, 2).
        WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id", "room_type_id", "room_number", "status"}).
            AddRow(10, 1, 2, "101", "available").
            AddRow(11, 1, 2, "102", "available"))

    repo := NewRoomRepo(db)
    rooms, err := repo.FindAvailable(context.Background(), service.AvailabilityQuery{
        HotelID: 1, RoomTypeID: 2, Range: domain.DateRange{CheckIn: in, CheckOut: out}, Limit: 2,
    })
    if err != nil {
        t.Fatalf("find: %v", err)
    }
    if len(rooms) != 2 || rooms[0].RoomNumber != "101" || rooms[1].Status != model.RoomAvailable {
        t.Fatalf("unexpected rooms: %+v", rooms)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestFindAvailableSingleRoomWithoutLimit(t *testing.T) {
    db, mock := newMock(t)
    in := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
    out := in.AddDate(0, 0, 1)
    mock.ExpectQuery(`AND r\.id = \?.*ORDER BY r\.id$`).
        WithArgs(1, 2, 10, 55, in, out).
        WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id", "room_type_id", "room_number", "status"}))
    rooms, err := NewRoomRepo(db).FindAvailable(context.Background(), service.AvailabilityQuery{
        HotelID: 1, RoomTypeID: 2, RoomID: 10, ExcludeReservationID: 55, Range: domain.DateRange{CheckIn: in, CheckOut: out},
    })
    if err != nil || len(rooms) != 0 {
        t.Fatalf("expected no rooms, got %v %v", rooms, err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestLocksOnlyInsideTransactions(t *testing.T) {
    db, mock := newMock(t)
    ctx := context.Background()

    // Outside a transaction nothing is sent.
    if err := NewRoomRepo(db).LockRoomsByType(ctx, 1, 2); err != nil {
        t.Fatalf("reader lock: %v", err)
    }

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rooms WHERE hotel_id = ? AND room_type_id = ? ORDER BY id FOR UPDATE")).
        WithArgs(1, 2).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))
    mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rooms WHERE id IN (?, ?) ORDER BY id FOR UPDATE")).
        WithArgs(10, 12).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(12))
    mock.ExpectCommit()
    err := NewTxManager(db).WithinTx(ctx, func(ctx context.Context, uow service.UnitOfWork) error {
        if err := uow.Rooms().LockRoomsByType(ctx, 1, 2); err != nil {
            return err
        }
        return uow.Rooms().LockRooms(ctx, []uint64{10, 12})
    })
    if err != nil {
        t.Fatalf("tx: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestCreateReservationDuplicateReference(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectExec("INSERT INTO reservations").
        WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'RES-1' for key 'uq_reservations_reference'"})
    res := model.Reservation{ReferenceNumber: "RES-1", Status: model.StatusConfirmed, TotalAmount: decimal.NewFromInt(100)}
    err := NewReservationRepo(db).Create(context.Background(), &res)
    if !errors.Is(err, domain.ErrDuplicateKey) {
        t.Fatalf("expected duplicate key, got %v", err)
    }
}

func TestGetReservationNotFoundAndScan(t *testing.T) {
    db, mock := newMock(t)
    ctx := context.Background()
    mock.ExpectQuery("FROM reservations WHERE id = ").WithArgs(9).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))
    if _, err := NewReservationRepo(db).Get(ctx, 9); !errors.Is(err, domain.ErrRecordNotFound) {
        t.Fatalf("expected record not found, got %v", err)
    }

    in := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
    checkedIn := in.Add(15 * time.Hour)
    cols := []string{"id", "reference_number", "client_id", "hotel_id", "check_in_date", "check_out_date", "total_amount",
        "status", "actual_check_in_time", "actual_check_out_time", "cancelled_at", "created_at", "updated_at"}
    mock.ExpectQuery("FROM reservations WHERE id = ").WithArgs(5).
        WillReturnRows(sqlmock.NewRows(cols).AddRow(5, "RES-20250301-ABCD1234", 1, 1, in, in.AddDate(0, 0, 2), "200.00",
            "checked_in", checkedIn, nil, nil, in, checkedIn))
    res, err := NewReservationRepo(db).Get(ctx, 5)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if res.Status != model.StatusCheckedIn || res.ActualCheckInTime == nil || res.CancelledAt != nil {
        t.Fatalf("unexpected scan: %+v", res)
    }
    if res.TotalAmount.StringFixed(2) != "200.00" {
        t.Fatalf("unexpected total %s", res.TotalAmount)
    }
}

func TestGetForUpdateLocksInTx(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectBegin()
    mock.ExpectQuery(`FROM reservations WHERE id = \? FOR UPDATE`).WithArgs(5).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))
    mock.ExpectRollback()
    err := NewTxManager(db).WithinTx(context.Background(), func(ctx context.Context, uow service.UnitOfWork) error {
        _, err := uow.Reservations().GetForUpdate(ctx, 5)
        return err
    })
    if !errors.Is(err, domain.ErrRecordNotFound) {
        t.Fatalf("expected record not found, got %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestAddRoomsAssignsConsecutiveIDs(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservation_rooms (reservation_id, room_id, room_type_id, rate_per_night) VALUES (?, ?, ?, ?),(?, ?, ?, ?)")).
        WithArgs(1, 10, 2, "100", 1, 11, 2, "100").
        WillReturnResult(sqlmock.NewResult(40, 2))
    rows := []model.ReservationRoom{
        {ReservationID: 1, RoomID: 10, RoomTypeID: 2, RatePerNight: decimal.NewFromInt(100)},
        {ReservationID: 1, RoomID: 11, RoomTypeID: 2, RatePerNight: decimal.NewFromInt(100)},
    }
    if err := NewReservationRepo(db).AddRooms(context.Background(), rows); err != nil {
        t.Fatalf("add rooms: %v", err)
    }
    if rows[0].ID != 40 || rows[1].ID != 41 {
        t.Fatalf("unexpected ids %d %d", rows[0].ID, rows[1].ID)
    }
}

func TestUpdateMissingReservation(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectExec("UPDATE reservations SET").WillReturnResult(sqlmock.NewResult(0, 0))
    res := model.Reservation{ID: 3, Status: model.StatusCancelled}
    if err := NewReservationRepo(db).Update(context.Background(), &res); !errors.Is(err, domain.ErrRecordNotFound) {
        t.Fatalf("expected record not found, got %v", err)
    }
}

func TestListRatesScansNullables(t *testing.T) {
    db, mock := newMock(t)
    start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
    end := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
    mock.ExpectQuery("FROM room_rates WHERE hotel_id = ").WithArgs(1, 2).
        WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id", "room_type_id", "base_price", "weekend_price", "holiday_price", "start_date", "end_date"}).
            AddRow(1, 1, 2, "100.00", nil, nil, nil, nil).
            AddRow(2, 1, 2, "140.00", "160.00", nil, start, end))
    rates, err := NewRateRepo(db).ListRates(context.Background(), 1, 2)
    if err != nil {
        t.Fatalf("list rates: %v", err)
    }
    if len(rates) != 2 || !rates[0].IsGeneral() || rates[1].IsGeneral() {
        t.Fatalf("unexpected rates: %+v", rates)
    }
    if rates[1].WeekendPrice == nil || rates[1].WeekendPrice.StringFixed(2) != "160.00" || rates[1].HolidayPrice != nil {
        t.Fatalf("unexpected tiers: %+v", rates[1])
    }
}

func TestUpsertGeneralRate(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectExec(`INSERT INTO room_rates .* ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID\(id\)`).
        WithArgs(1, 2, "120", "150", nil).
        WillReturnResult(sqlmock.NewResult(8, 2))
    weekend := decimal.NewFromInt(150)
    rate := model.RoomRate{HotelID: 1, RoomTypeID: 2, BasePrice: decimal.NewFromInt(120), WeekendPrice: &weekend}
    if err := NewRateRepo(db).UpsertGeneralRate(context.Background(), &rate); err != nil {
        t.Fatalf("upsert: %v", err)
    }
    if rate.ID != 8 {
        t.Fatalf("expected id 8, got %d", rate.ID)
    }
}

func TestInvoiceWhere(t *testing.T) {
    from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
    to := time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC)
    where, args := invoiceWhere(service.InvoiceFilter{ClientID: 4, Status: model.InvoiceIssued, DateFrom: &from, DateTo: &to})
    want := " WHERE client_id = ? AND status = ? AND issued_at >= ? AND issued_at < ?"
    if where != want {
        t.Fatalf("expected %q, got %q", want, where)
    }
    if len(args) != 4 || args[1] != "issued" || !args[3].(time.Time).Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected args: %v", args)
    }
    if where, args := invoiceWhere(service.InvoiceFilter{}); where != "" || args != nil {
        t.Fatalf("empty filter must not filter, got %q %v", where, args)
    }
}

func TestListInvoicesPaged(t *testing.T) {
    db, mock := newMock(t)
    issued := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
    mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM invoices WHERE client_id = ?")).WithArgs(4).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
    mock.ExpectQuery(`FROM invoices WHERE client_id = \? ORDER BY issued_at DESC, id DESC LIMIT \? OFFSET \?`).
        WithArgs(4, 2, 2).
        WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "client_id", "reference_number", "subtotal_room_charges",
            "subtotal_consumption_charges", "taxes_amount", "total_amount_due", "status", "issued_at"}).
            AddRow(1, 9, 4, "INV-20250312-00000001", "200.00", "5.00", "20.50", "225.50", "draft", issued))
    list, total, err := NewInvoiceRepo(db).List(context.Background(), service.InvoiceFilter{ClientID: 4, Page: 2, PageSize: 2})
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if total != 3 || len(list) != 1 || list[0].TotalAmountDue.StringFixed(2) != "225.50" {
        t.Fatalf("unexpected page: %d %+v", total, list)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestCreateInvoiceWritesItems(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(12, 1))
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoice_items (invoice_id, position, item_type, description, quantity, unit_price, total_price) VALUES (?, ?, ?, ?, ?, ?, ?),(?, ?, ?, ?, ?, ?, ?)")).
        WithArgs(12, 1, "room", "Standard: 1 room(s) x 2 night(s)", 2, "100", "200", 12, 2, "tax", "Tax (10%)", 1, "20", "20").
        WillReturnResult(sqlmock.NewResult(30, 2))
    inv := model.Invoice{
        ReservationID: 9, ClientID: 4, ReferenceNumber: "INV-1", Status: model.InvoiceDraft,
        Items: []model.InvoiceItem{
            {Position: 1, ItemType: model.ItemRoom, Description: "Standard: 1 room(s) x 2 night(s)", Quantity: 2, UnitPrice: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(200)},
            {Position: 2, ItemType: model.ItemTax, Description: "Tax (10%)", Quantity: 1, UnitPrice: decimal.NewFromInt(20), TotalPrice: decimal.NewFromInt(20)},
        },
    }
    if err := NewInvoiceRepo(db).Create(context.Background(), &inv); err != nil {
        t.Fatalf("create: %v", err)
    }
    if inv.ID != 12 || inv.Items[1].ID != 31 || inv.Items[1].InvoiceID != 12 {
        t.Fatalf("unexpected ids: %+v", inv)
    }

    mock.ExpectExec("INSERT INTO invoices").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '9' for key 'uq_invoices_reservation'"})
    again := model.Invoice{ReservationID: 9, ReferenceNumber: "INV-2"}
    if err := NewInvoiceRepo(db).Create(context.Background(), &again); !errors.Is(err, domain.ErrDuplicateKey) {
        t.Fatalf("expected duplicate key, got %v", err)
    }
}

func TestUpdateInvoiceStatusCompareAndSet(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET status = ? WHERE id = ? AND status = ?")).
        WithArgs("issued", 3, "draft").WillReturnResult(sqlmock.NewResult(0, 0))
    if err := NewInvoiceRepo(db).UpdateStatus(context.Background(), 3, model.InvoiceDraft, model.InvoiceIssued); !errors.Is(err, domain.ErrRecordNotFound) {
        t.Fatalf("expected record not found when status moved, got %v", err)
    }
}
