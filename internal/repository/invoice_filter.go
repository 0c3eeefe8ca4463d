package repository

import (
    "strings"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// invoiceWhere renders the WHERE clause of an invoice listing.  Values
// only ever travel as arguments; the clause text is built from fixed
// fragments.
func invoiceWhere(f service.InvoiceFilter) (string, []any) {
    var (
        conds []string
        args  []any
    )
    if f.ClientID != 0 {
        conds = append(conds, "client_id = ?")
        args = append(args, f.ClientID)
    }
    if f.Status != "" {
        conds = append(conds, "status = ?")
        args = append(args, string(f.Status))
    }
    if f.DateFrom != nil {
        conds = append(conds, "issued_at >= ?")
        args = append(args, domain.TruncateDate(*f.DateFrom))
    }
    if f.DateTo != nil {
        conds = append(conds, "issued_at < ?")
        args = append(args, domain.TruncateDate(*f.DateTo).AddDate(0, 0, 1))
    }
    if len(conds) == 0 {
        return "", nil
    }
    return " WHERE " + strings.Join(conds, " AND "), args
}
