package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// ConsumptionItem is an ad-hoc charge (mini-bar, laundry, room service)
// recorded against a checked-in reservation.  TotalPrice is always
// Quantity × UnitPrice.
type ConsumptionItem struct {
    ID            uint64          // consumption_items.id
    ReservationID uint64          // consumption_items.reservation_id
    ItemName      string          // consumption_items.item_name
    Description   *string         // consumption_items.description (nullable)
    Quantity      uint32          // consumption_items.quantity
    UnitPrice     decimal.Decimal // consumption_items.unit_price
    TotalPrice    decimal.Decimal // consumption_items.total_price
    ConsumedAt    time.Time       // consumption_items.consumed_at
}
