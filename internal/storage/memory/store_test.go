package memory

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

func TestRollbackDiscardsWrites(t *testing.T) {
    s := New()
    h := s.AddHotel("H", "C")
    ctx := context.Background()
    boom := errors.New("boom")
    err := s.WithinTx(ctx, func(ctx context.Context, uow service.UnitOfWork) error {
        res := model.Reservation{ReferenceNumber: "RES-1", ClientID: 1, HotelID: h.ID, Status: model.StatusConfirmed}
        if err := uow.Reservations().Create(ctx, &res); err != nil {
            return err
        }
        return boom
    })
    if !errors.Is(err, boom) {
        t.Fatalf("expected boom, got %v", err)
    }
    if _, err := s.Reader().Reservations().Get(ctx, h.ID+1); !errors.Is(err, domain.ErrRecordNotFound) {
        t.Fatalf("rolled back reservation is visible: %v", err)
    }
}

func TestDuplicateReferenceAndInvoice(t *testing.T) {
    s := New()
    ctx := context.Background()
    err := s.WithinTx(ctx, func(ctx context.Context, uow service.UnitOfWork) error {
        a := model.Reservation{ReferenceNumber: "RES-X"}
        if err := uow.Reservations().Create(ctx, &a); err != nil {
            return err
        }
        b := model.Reservation{ReferenceNumber: "RES-X"}
        if err := uow.Reservations().Create(ctx, &b); !errors.Is(err, domain.ErrDuplicateKey) {
            t.Fatalf("expected duplicate reference, got %v", err)
        }
        inv := model.Invoice{ReservationID: a.ID, ReferenceNumber: "INV-1"}
        if err := uow.Invoices().Create(ctx, &inv); err != nil {
            return err
        }
        again := model.Invoice{ReservationID: a.ID, ReferenceNumber: "INV-2"}
        if err := uow.Invoices().Create(ctx, &again); !errors.Is(err, domain.ErrDuplicateKey) {
            t.Fatalf("expected duplicate invoice, got %v", err)
        }
        return nil
    })
    if err != nil {
        t.Fatalf("tx: %v", err)
    }
}

func TestFindAvailableHonoursStatusAndOverlap(t *testing.T) {
    s := New()
    h := s.AddHotel("H", "C")
    rt := s.AddRoomType(h.ID, "Std", 2)
    r1 := s.AddRoom(h.ID, rt.ID, "101", model.RoomAvailable)
    r2 := s.AddRoom(h.ID, rt.ID, "102", model.RoomAvailable)
    s.AddRoom(h.ID, rt.ID, "103", model.RoomMaintenance)
    ctx := context.Background()
    in := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
    stay := domain.DateRange{CheckIn: in, CheckOut: in.AddDate(0, 0, 2)}

    var resID uint64
    err := s.WithinTx(ctx, func(ctx context.Context, uow service.UnitOfWork) error {
        res := model.Reservation{ReferenceNumber: "R", HotelID: h.ID, CheckInDate: stay.CheckIn, CheckOutDate: stay.CheckOut, Status: model.StatusConfirmed}
        if err := uow.Reservations().Create(ctx, &res); err != nil {
            return err
        }
        resID = res.ID
        return uow.Reservations().AddRooms(ctx, []model.ReservationRoom{{ReservationID: res.ID, RoomID: r1.ID, RoomTypeID: rt.ID, RatePerNight: decimal.NewFromInt(100)}})
    })
    if err != nil {
        t.Fatalf("seed reservation: %v", err)
    }

    rooms, err := s.Reader().Rooms().FindAvailable(ctx, service.AvailabilityQuery{HotelID: h.ID, RoomTypeID: rt.ID, Range: stay})
    if err != nil {
        t.Fatalf("find: %v", err)
    }
    if len(rooms) != 1 || rooms[0].ID != r2.ID {
        t.Fatalf("expected only room 102, got %+v", rooms)
    }

    rooms, _ = s.Reader().Rooms().FindAvailable(ctx, service.AvailabilityQuery{HotelID: h.ID, RoomTypeID: rt.ID, Range: stay, ExcludeReservationID: resID})
    if len(rooms) != 2 || rooms[0].ID != r1.ID {
        t.Fatalf("excluding the reservation should free 101, got %+v", rooms)
    }

    later := domain.DateRange{CheckIn: stay.CheckOut, CheckOut: stay.CheckOut.AddDate(0, 0, 1)}
    rooms, _ = s.Reader().Rooms().FindAvailable(ctx, service.AvailabilityQuery{HotelID: h.ID, RoomTypeID: rt.ID, Range: later, Limit: 1})
    if len(rooms) != 1 || rooms[0].ID != r1.ID {
        t.Fatalf("back-to-back stay should get 101 first, got %+v", rooms)
    }
}

func TestInvoiceListPaging(t *testing.T) {
    s := New()
    ctx := context.Background()
    base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
    err := s.WithinTx(ctx, func(ctx context.Context, uow service.UnitOfWork) error {
        for i := 0; i < 5; i++ {
            inv := model.Invoice{
                ReservationID:   uint64(100 + i),
                ClientID:        uint64(1 + i%2),
                ReferenceNumber: "INV-" + string(rune('A'+i)),
                Status:          model.InvoiceDraft,
                IssuedAt:        base.AddDate(0, 0, i),
            }
            if err := uow.Invoices().Create(ctx, &inv); err != nil {
                return err
            }
        }
        return nil
    })
    if err != nil {
        t.Fatalf("seed: %v", err)
    }
    list, total, err := s.Reader().Invoices().List(ctx, service.InvoiceFilter{ClientID: 1, Page: 1, PageSize: 2})
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if total != 3 || len(list) != 2 {
        t.Fatalf("expected 2 of 3, got %d of %d", len(list), total)
    }
    if !list[0].IssuedAt.After(list[1].IssuedAt) {
        t.Fatalf("expected newest first")
    }
    from := base.AddDate(0, 0, 1)
    to := base.AddDate(0, 0, 3)
    _, total, _ = s.Reader().Invoices().List(ctx, service.InvoiceFilter{DateFrom: &from, DateTo: &to, PageSize: 10})
    if total != 3 {
        t.Fatalf("expected 3 invoices in window, got %d", total)
    }
}
