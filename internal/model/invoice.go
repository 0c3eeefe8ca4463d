package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// InvoiceStatus tracks billing progress of an invoice.
type InvoiceStatus string

const (
    InvoiceDraft  InvoiceStatus = "draft"
    InvoiceIssued InvoiceStatus = "issued"
    InvoicePaid   InvoiceStatus = "paid"
)

// InvoiceItemType classifies invoice lines.
type InvoiceItemType string

const (
    ItemRoom        InvoiceItemType = "room"
    ItemConsumption InvoiceItemType = "consumption"
    ItemTax         InvoiceItemType = "tax"
)

// Invoice is derived from a reservation's rooms and consumption items.
// There is at most one invoice per reservation; once generated its
// amounts and items never change.
//
// Fields:
//  ID                         – primary key identifier.
//  ReservationID              – reservation billed (unique).
//  ClientID                   – copied from the reservation for filtering.
//  ReferenceNumber            – unique human readable reference (INV-...).
//  SubtotalRoomCharges        – room nights subtotal.
//  SubtotalConsumptionCharges – consumption subtotal.
//  TaxesAmount                – tax on both subtotals.
//  TotalAmountDue             – subtotals plus taxes.
//  Status                     – draft, issued or paid.
//  IssuedAt                   – generation timestamp.
//  Items                      – ordered lines: rooms, consumptions, tax.
type Invoice struct {
    ID                         uint64          // invoices.id
    ReservationID              uint64          // invoices.reservation_id
    ClientID                   uint64          // invoices.client_id
    ReferenceNumber            string          // invoices.reference_number
    SubtotalRoomCharges        decimal.Decimal // invoices.subtotal_room_charges
    SubtotalConsumptionCharges decimal.Decimal // invoices.subtotal_consumption_charges
    TaxesAmount                decimal.Decimal // invoices.taxes_amount
    TotalAmountDue             decimal.Decimal // invoices.total_amount_due
    Status                     InvoiceStatus   // invoices.status
    IssuedAt                   time.Time       // invoices.issued_at
    Items                      []InvoiceItem
}

// InvoiceItem is one immutable invoice line.  Position preserves the
// order in which lines were generated.
type InvoiceItem struct {
    ID          uint64          // invoice_items.id
    InvoiceID   uint64          // invoice_items.invoice_id
    Position    uint32          // invoice_items.position
    ItemType    InvoiceItemType // invoice_items.item_type
    Description string          // invoice_items.description
    Quantity    uint32          // invoice_items.quantity
    UnitPrice   decimal.Decimal // invoice_items.unit_price
    TotalPrice  decimal.Decimal // invoice_items.total_price
}
