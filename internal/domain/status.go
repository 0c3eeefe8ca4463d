package domain

import (
    "sort"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// transitions is the reservation state machine.  checked_out and
// cancelled have no outgoing edges.
var transitions = map[model.ReservationStatus][]model.ReservationStatus{
    model.StatusConfirmed:       {model.StatusCheckedIn, model.StatusModifiedByAgent, model.StatusCancelled},
    model.StatusModifiedByAgent: {model.StatusCheckedIn, model.StatusCancelled},
    model.StatusCheckedIn:       {model.StatusCheckedOut},
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to model.ReservationStatus) bool {
    for _, s := range transitions[from] {
        if s == to {
            return true
        }
    }
    return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s model.ReservationStatus) bool {
    return len(transitions[s]) == 0
}

// ValidStatus reports whether s names a known reservation status.
func ValidStatus(s model.ReservationStatus) bool {
    switch s {
    case model.StatusConfirmed, model.StatusModifiedByAgent, model.StatusCheckedIn,
        model.StatusCheckedOut, model.StatusCancelled:
        return true
    }
    return false
}

// RequireStatus returns an InvalidStateError naming op unless current is
// one of allowed.
func RequireStatus(op string, current model.ReservationStatus, allowed ...model.ReservationStatus) error {
    for _, a := range allowed {
        if current == a {
            return nil
        }
    }
    req := make([]string, len(allowed))
    for i, a := range allowed {
        req[i] = string(a)
    }
    return InvalidStateError{Operation: op, Current: string(current), Required: req}
}

// RequireTransition checks a generic status change from the staff patch
// path.
func RequireTransition(current, next model.ReservationStatus) error {
    if CanTransition(current, next) {
        return nil
    }
    allowedFrom := []string{}
    for from, tos := range transitions {
        for _, to := range tos {
            if to == next {
                allowedFrom = append(allowedFrom, string(from))
            }
        }
    }
    sort.Strings(allowedFrom)
    return InvalidStateError{Operation: "change status to " + string(next), Current: string(current), Required: allowedFrom}
}

var invoiceTransitions = map[model.InvoiceStatus]model.InvoiceStatus{
    model.InvoiceDraft:  model.InvoiceIssued,
    model.InvoiceIssued: model.InvoicePaid,
}

// RequireInvoiceTransition allows draft → issued → paid only.
func RequireInvoiceTransition(current, next model.InvoiceStatus) error {
    if invoiceTransitions[current] == next {
        return nil
    }
    var req []string
    for from, to := range invoiceTransitions {
        if to == next {
            req = append(req, string(from))
        }
    }
    return InvalidStateError{Operation: "set invoice " + string(next), Current: string(current), Required: req}
}
