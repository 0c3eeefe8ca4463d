package service

import (
    "context"
    "log/slog"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

type ConsumptionInput struct {
    ItemName    string
    Description *string
    Quantity    int
    UnitPrice   decimal.Decimal
}

// ConsumptionLedger records charges against stays in progress.
type ConsumptionLedger struct {
    tx  TxManager
    log *slog.Logger

    Now func() time.Time
}

func NewConsumptionLedger(tx TxManager, log *slog.Logger) *ConsumptionLedger {
    return &ConsumptionLedger{tx: tx, log: log, Now: func() time.Time { return time.Now().UTC() }}
}

// AddConsumption appends an item to a checked-in reservation.  Any other
// status is refused with a ForbiddenError.
func (l *ConsumptionLedger) AddConsumption(ctx context.Context, reservationID uint64, in ConsumptionInput) (model.ConsumptionItem, error) {
    name := strings.TrimSpace(in.ItemName)
    if name == "" {
        return model.ConsumptionItem{}, domain.ValidationError{Field: "item_name", Msg: "is required"}
    }
    if in.Quantity < 1 {
        return model.ConsumptionItem{}, domain.ValidationError{Field: "quantity", Msg: "must be at least 1"}
    }
    if in.UnitPrice.IsNegative() {
        return model.ConsumptionItem{}, domain.ValidationError{Field: "unit_price", Msg: "must not be negative"}
    }
    unit := domain.RoundMoney(in.UnitPrice)
    item := model.ConsumptionItem{
        ReservationID: reservationID,
        ItemName:      name,
        Description:   in.Description,
        Quantity:      uint32(in.Quantity),
        UnitPrice:     unit,
        TotalPrice:    domain.RoundMoney(unit.Mul(decimal.NewFromInt(int64(in.Quantity)))),
        ConsumedAt:    l.Now(),
    }
    err := l.tx.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
        res, err := lockReservation(ctx, uow, reservationID)
        if err != nil {
            return err
        }
        if res.Status != model.StatusCheckedIn {
            return domain.ForbiddenError{Msg: "consumptions can only be added to a checked-in reservation (status " + string(res.Status) + ")"}
        }
        return domain.Internal("insert consumption", uow.Consumptions().Add(ctx, &item))
    })
    if err != nil {
        return model.ConsumptionItem{}, err
    }
    l.log.InfoContext(ctx, "consumption recorded", "reservation_id", reservationID, "item", name, "total", item.TotalPrice.StringFixed(2))
    return item, nil
}

// ListConsumptions returns the items of a reservation the requester may
// see.
func (l *ConsumptionLedger) ListConsumptions(ctx context.Context, reservationID uint64, who model.Requester) ([]model.ConsumptionItem, error) {
    uow := l.tx.Reader()
    res, err := uow.Reservations().Get(ctx, reservationID)
    if err != nil {
        return nil, notFoundOr(err, "reservation", reservationID, "load reservation")
    }
    if !who.CanAccessClient(res.ClientID) {
        return nil, domain.ForbiddenError{Msg: "reservation belongs to another client"}
    }
    items, err := uow.Consumptions().ListByReservation(ctx, reservationID)
    if err != nil {
        return nil, domain.Internal("list consumptions", err)
    }
    return items, nil
}
