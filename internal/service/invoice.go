package service

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "sort"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

const (
    defaultPageSize = 20
    maxPageSize     = 100
)

// InvoiceAggregator derives invoices from reservations.  An invoice is
// generated once; every later request returns it unchanged.
type InvoiceAggregator struct {
    tx  TxManager
    log *slog.Logger

    Now       func() time.Time
    Reference ReferenceFunc
}

func NewInvoiceAggregator(tx TxManager, log *slog.Logger) *InvoiceAggregator {
    return &InvoiceAggregator{
        tx:        tx,
        log:       log,
        Now:       func() time.Time { return time.Now().UTC() },
        Reference: NewReference,
    }
}

// GenerateOrGetInvoice returns the reservation's invoice, creating it
// when none exists.  created is false for an existing invoice.
func (a *InvoiceAggregator) GenerateOrGetInvoice(ctx context.Context, reservationID uint64, who model.Requester) (inv model.Invoice, created bool, err error) {
    err = a.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        res, err := lockReservation(ctx, uow, reservationID)
        if err != nil {
            return err
        }
        if !who.CanAccessClient(res.ClientID) {
            return domain.ForbiddenError{Msg: "reservation belongs to another client"}
        }
        existing, err := uow.Invoices().GetByReservation(ctx, reservationID)
        switch {
        case err == nil:
            inv, created = existing, false
            return nil
        case !errors.Is(err, domain.ErrRecordNotFound):
            return domain.Internal("load invoice", err)
        }
        // Invoices are only written once the stay has begun.
        if err := domain.RequireStatus("generate invoice", res.Status, model.StatusCheckedIn, model.StatusCheckedOut); err != nil {
            return err
        }
        rows, err := uow.Reservations().ListRooms(ctx, reservationID)
        if err != nil {
            return domain.Internal("load reservation rooms", err)
        }
        items, err := uow.Consumptions().ListByReservation(ctx, reservationID)
        if err != nil {
            return domain.Internal("list consumptions", err)
        }
        now := a.Now()
        inv = buildInvoice(res, rows, items, now)
        created = true
        err = withReference(ctx, a.Reference, invoicePrefix, now, func(ref string) error {
            inv.ReferenceNumber = ref
            err := uow.Invoices().Create(ctx, &inv)
            if errors.Is(err, domain.ErrDuplicateKey) {
                if winner, gerr := uow.Invoices().GetByReservation(ctx, reservationID); gerr == nil {
                    inv, created = winner, false
                    return nil
                }
            }
            return err
        })
        return domain.Internal("insert invoice", err)
    })
    if err != nil {
        return model.Invoice{}, false, err
    }
    if created {
        a.log.InfoContext(ctx, "invoice generated", "invoice_id", inv.ID, "reservation_id", reservationID, "total", inv.TotalAmountDue.StringFixed(2))
    }
    return inv, created, nil
}

// buildInvoice computes the invoice lines: one per (room type, rate)
// group, one per consumption item, then the tax line.
func buildInvoice(res model.Reservation, rows []model.ReservationRoom, items []model.ConsumptionItem, now time.Time) model.Invoice {
    nights := domain.DateRange{CheckIn: res.CheckInDate, CheckOut: res.CheckOutDate}.Nights()

    type groupKey struct {
        roomTypeID uint64
        rate       string
    }
    type group struct {
        name  string
        rate  decimal.Decimal
        rooms int
    }
    groups := map[groupKey]*group{}
    var keys []groupKey
    for _, r := range rows {
        k := groupKey{roomTypeID: r.RoomTypeID, rate: r.RatePerNight.StringFixed(2)}
        g, ok := groups[k]
        if !ok {
            g = &group{name: r.RoomTypeName, rate: r.RatePerNight}
            groups[k] = g
            keys = append(keys, k)
        }
        g.rooms++
    }
    sort.Slice(keys, func(i, j int) bool {
        if keys[i].roomTypeID != keys[j].roomTypeID {
            return keys[i].roomTypeID < keys[j].roomTypeID
        }
        return groups[keys[i]].rate.LessThan(groups[keys[j]].rate)
    })

    inv := model.Invoice{
        ReservationID: res.ID,
        ClientID:      res.ClientID,
        Status:        model.InvoiceDraft,
        IssuedAt:      now,
    }
    var pos uint32
    addItem := func(it model.InvoiceItem) {
        pos++
        it.Position = pos
        inv.Items = append(inv.Items, it)
    }

    roomTotal := decimal.Zero
    for _, k := range keys {
        g := groups[k]
        qty := g.rooms * nights
        line := domain.StayAmount(g.rate, g.rooms, nights)
        roomTotal = roomTotal.Add(line)
        name := g.name
        if name == "" {
            name = fmt.Sprintf("Room type %d", k.roomTypeID)
        }
        addItem(model.InvoiceItem{
            ItemType:    model.ItemRoom,
            Description: fmt.Sprintf("%s: %d room(s) x %d night(s)", name, g.rooms, nights),
            Quantity:    uint32(qty),
            UnitPrice:   domain.RoundMoney(g.rate),
            TotalPrice:  line,
        })
    }

    consumptionTotal := decimal.Zero
    for _, c := range items {
        consumptionTotal = consumptionTotal.Add(c.TotalPrice)
        desc := c.ItemName
        if c.Description != nil && *c.Description != "" {
            desc += " (" + *c.Description + ")"
        }
        addItem(model.InvoiceItem{
            ItemType:    model.ItemConsumption,
            Description: desc,
            Quantity:    c.Quantity,
            UnitPrice:   c.UnitPrice,
            TotalPrice:  c.TotalPrice,
        })
    }

    tax := domain.Tax(roomTotal, consumptionTotal)
    addItem(model.InvoiceItem{
        ItemType:    model.ItemTax,
        Description: "Tax (" + domain.TaxRate.Shift(2).String() + "%)",
        Quantity:    1,
        UnitPrice:   tax,
        TotalPrice:  tax,
    })

    inv.SubtotalRoomCharges = domain.RoundMoney(roomTotal)
    inv.SubtotalConsumptionCharges = domain.RoundMoney(consumptionTotal)
    inv.TaxesAmount = tax
    inv.TotalAmountDue = domain.RoundMoney(roomTotal.Add(consumptionTotal).Add(tax))
    return inv
}

// InvoicePage is one page of an invoice listing.
type InvoicePage struct {
    Invoices []model.Invoice
    Total    int
    Page     int
    PageSize int
}

// ListInvoices applies f.  Clients are pinned to their own invoices.
func (a *InvoiceAggregator) ListInvoices(ctx context.Context, f InvoiceFilter, who model.Requester) (InvoicePage, error) {
    if !who.Role.IsStaff() {
        if f.ClientID != 0 && f.ClientID != who.UserID {
            return InvoicePage{}, domain.ForbiddenError{Msg: "clients may only list their own invoices"}
        }
        f.ClientID = who.UserID
    }
    switch f.Status {
    case "", model.InvoiceDraft, model.InvoiceIssued, model.InvoicePaid:
    default:
        return InvoicePage{}, domain.ValidationError{Field: "status", Msg: "must be draft, issued or paid"}
    }
    if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
        return InvoicePage{}, domain.ValidationError{Field: "date_to", Msg: "must not be before date_from"}
    }
    if f.Page < 1 {
        f.Page = 1
    }
    if f.PageSize < 1 {
        f.PageSize = defaultPageSize
    }
    if f.PageSize > maxPageSize {
        f.PageSize = maxPageSize
    }
    list, total, err := a.tx.Reader().Invoices().List(ctx, f)
    if err != nil {
        return InvoicePage{}, domain.Internal("list invoices", err)
    }
    return InvoicePage{Invoices: list, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (a *InvoiceAggregator) GetInvoice(ctx context.Context, id uint64, who model.Requester) (model.Invoice, error) {
    inv, err := a.tx.Reader().Invoices().Get(ctx, id)
    if err != nil {
        return model.Invoice{}, notFoundOr(err, "invoice", id, "load invoice")
    }
    if !who.CanAccessClient(inv.ClientID) {
        return model.Invoice{}, domain.ForbiddenError{Msg: "invoice belongs to another client"}
    }
    return inv, nil
}

// UpdateInvoiceStatus moves an invoice along draft → issued → paid.
// Amounts and items are never touched.
func (a *InvoiceAggregator) UpdateInvoiceStatus(ctx context.Context, id uint64, next model.InvoiceStatus) (model.Invoice, error) {
    var out model.Invoice
    err := a.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        inv, err := uow.Invoices().Get(ctx, id)
        if err != nil {
            return notFoundOr(err, "invoice", id, "load invoice")
        }
        if err := domain.RequireInvoiceTransition(inv.Status, next); err != nil {
            return err
        }
        err = uow.Invoices().UpdateStatus(ctx, id, inv.Status, next)
        if errors.Is(err, domain.ErrRecordNotFound) {
            return domain.InvalidStateError{Operation: "set invoice " + string(next), Current: "changed concurrently"}
        }
        if err != nil {
            return domain.Internal("update invoice status", err)
        }
        inv.Status = next
        out = inv
        return nil
    })
    return out, err
}
