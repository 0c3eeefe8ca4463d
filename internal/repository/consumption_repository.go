package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// ConsumptionRepo stores consumption items.  Items are append-only.
type ConsumptionRepo struct {
    q queryer
}

func NewConsumptionRepo(q queryer) *ConsumptionRepo { return &ConsumptionRepo{q: q} }

func (r *ConsumptionRepo) Add(ctx context.Context, item *model.ConsumptionItem) error {
    const q = `INSERT INTO consumption_items (reservation_id, item_name, description, quantity, unit_price, total_price, consumed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
    result, err := r.q.ExecContext(ctx, q, item.ReservationID, item.ItemName, nullString(item.Description),
        item.Quantity, item.UnitPrice, item.TotalPrice, item.ConsumedAt)
    if err != nil {
        return translate("insert consumption", err)
    }
    id, err := result.LastInsertId()
    if err != nil {
        return translate("insert consumption", err)
    }
    item.ID = uint64(id)
    return nil
}

func (r *ConsumptionRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ConsumptionItem, error) {
    const q = `SELECT id, reservation_id, item_name, description, quantity, unit_price, total_price, consumed_at
FROM consumption_items WHERE reservation_id = ? ORDER BY id`
    rows, err := r.q.QueryContext(ctx, q, reservationID)
    if err != nil {
        return nil, translate("list consumptions", err)
    }
    defer rows.Close()
    var out []model.ConsumptionItem
    for rows.Next() {
        var (
            c    model.ConsumptionItem
            desc sql.NullString
        )
        if err := rows.Scan(&c.ID, &c.ReservationID, &c.ItemName, &desc, &c.Quantity, &c.UnitPrice, &c.TotalPrice, &c.ConsumedAt); err != nil {
            return nil, translate("scan consumption", err)
        }
        if desc.Valid {
            d := desc.String
            c.Description = &d
        }
        out = append(out, c)
    }
    return out, translate("list consumptions", rows.Err())
}
