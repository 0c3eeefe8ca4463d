package repository

import (
    "context"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// InvoiceRepo stores invoices and their items.  invoices.reservation_id
// is unique, which makes concurrent generation for one reservation fail
// on the second insert instead of producing two invoices.
type InvoiceRepo struct {
    q queryer
}

func NewInvoiceRepo(q queryer) *InvoiceRepo { return &InvoiceRepo{q: q} }

const invoiceColumns = `id, reservation_id, client_id, reference_number, subtotal_room_charges,
subtotal_consumption_charges, taxes_amount, total_amount_due, status, issued_at`

// Create inserts the invoice row and then its items in position order.
// It must run inside a transaction so a failed item insert leaves no
// half-written invoice.
func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
    const q = `INSERT INTO invoices (reservation_id, client_id, reference_number, subtotal_room_charges,
subtotal_consumption_charges, taxes_amount, total_amount_due, status, issued_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := r.q.ExecContext(ctx, q, inv.ReservationID, inv.ClientID, inv.ReferenceNumber,
        inv.SubtotalRoomCharges, inv.SubtotalConsumptionCharges, inv.TaxesAmount, inv.TotalAmountDue,
        string(inv.Status), inv.IssuedAt)
    if err != nil {
        return translate("insert invoice", err)
    }
    id, err := result.LastInsertId()
    if err != nil {
        return translate("insert invoice", err)
    }
    inv.ID = uint64(id)
    if len(inv.Items) == 0 {
        return nil
    }

    query := `INSERT INTO invoice_items (invoice_id, position, item_type, description, quantity, unit_price, total_price) VALUES `
    args := make([]any, 0, len(inv.Items)*7)
    for i, it := range inv.Items {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?, ?)"
        args = append(args, inv.ID, it.Position, string(it.ItemType), it.Description, it.Quantity, it.UnitPrice, it.TotalPrice)
    }
    result, err = r.q.ExecContext(ctx, query, args...)
    if err != nil {
        return translate("insert invoice items", err)
    }
    first, err := result.LastInsertId()
    if err != nil {
        return translate("insert invoice items", err)
    }
    for i := range inv.Items {
        inv.Items[i].ID = uint64(first) + uint64(i)
        inv.Items[i].InvoiceID = inv.ID
    }
    return nil
}

func (r *InvoiceRepo) Get(ctx context.Context, id uint64) (model.Invoice, error) {
    return r.getWithItems(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
}

func (r *InvoiceRepo) GetByReservation(ctx context.Context, reservationID uint64) (model.Invoice, error) {
    return r.getWithItems(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE reservation_id = ?`, reservationID)
}

func (r *InvoiceRepo) getWithItems(ctx context.Context, q string, arg uint64) (model.Invoice, error) {
    var inv model.Invoice
    err := r.q.QueryRowContext(ctx, q, arg).Scan(&inv.ID, &inv.ReservationID, &inv.ClientID, &inv.ReferenceNumber,
        &inv.SubtotalRoomCharges, &inv.SubtotalConsumptionCharges, &inv.TaxesAmount, &inv.TotalAmountDue,
        &inv.Status, &inv.IssuedAt)
    if err != nil {
        return model.Invoice{}, translate("get invoice", err)
    }
    items, err := r.listItems(ctx, inv.ID)
    if err != nil {
        return model.Invoice{}, err
    }
    inv.Items = items
    return inv, nil
}

func (r *InvoiceRepo) listItems(ctx context.Context, invoiceID uint64) ([]model.InvoiceItem, error) {
    const q = `SELECT id, invoice_id, position, item_type, description, quantity, unit_price, total_price
FROM invoice_items WHERE invoice_id = ? ORDER BY position`
    rows, err := r.q.QueryContext(ctx, q, invoiceID)
    if err != nil {
        return nil, translate("list invoice items", err)
    }
    defer rows.Close()
    var out []model.InvoiceItem
    for rows.Next() {
        var it model.InvoiceItem
        if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.ItemType, &it.Description, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
            return nil, translate("scan invoice item", err)
        }
        out = append(out, it)
    }
    return out, translate("list invoice items", rows.Err())
}

// List returns one page of invoices, newest first, without items, and
// the total number of matches.
func (r *InvoiceRepo) List(ctx context.Context, f service.InvoiceFilter) ([]model.Invoice, int, error) {
    where, args := invoiceWhere(f)

    var total int
    if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
        return nil, 0, translate("count invoices", err)
    }
    if total == 0 {
        return nil, 0, nil
    }

    q := `SELECT ` + invoiceColumns + ` FROM invoices` + where + ` ORDER BY issued_at DESC, id DESC LIMIT ? OFFSET ?`
    pageArgs := append(append([]any(nil), args...), f.PageSize, f.Offset())
    rows, err := r.q.QueryContext(ctx, q, pageArgs...)
    if err != nil {
        return nil, 0, translate("list invoices", err)
    }
    defer rows.Close()
    var out []model.Invoice
    for rows.Next() {
        var inv model.Invoice
        if err := rows.Scan(&inv.ID, &inv.ReservationID, &inv.ClientID, &inv.ReferenceNumber,
            &inv.SubtotalRoomCharges, &inv.SubtotalConsumptionCharges, &inv.TaxesAmount, &inv.TotalAmountDue,
            &inv.Status, &inv.IssuedAt); err != nil {
            return nil, 0, translate("scan invoice", err)
        }
        out = append(out, inv)
    }
    return out, total, translate("list invoices", rows.Err())
}

// UpdateStatus is a compare-and-set on the status column.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.InvoiceStatus) error {
    const q = `UPDATE invoices SET status = ? WHERE id = ? AND status = ?`
    result, err := r.q.ExecContext(ctx, q, string(to), id, string(from))
    if err != nil {
        return translate("update invoice status", err)
    }
    return requireOne(result, "update invoice status")
}
