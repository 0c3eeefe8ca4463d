package domain

import (
    "testing"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

func TestTransitions(t *testing.T) {
    all := []model.ReservationStatus{
        model.StatusConfirmed, model.StatusModifiedByAgent, model.StatusCheckedIn,
        model.StatusCheckedOut, model.StatusCancelled,
    }
    legal := map[[2]model.ReservationStatus]bool{
        {model.StatusConfirmed, model.StatusCheckedIn}:       true,
        {model.StatusConfirmed, model.StatusModifiedByAgent}: true,
        {model.StatusConfirmed, model.StatusCancelled}:       true,
        {model.StatusModifiedByAgent, model.StatusCheckedIn}: true,
        {model.StatusModifiedByAgent, model.StatusCancelled}: true,
        {model.StatusCheckedIn, model.StatusCheckedOut}:      true,
    }
    for _, from := range all {
        for _, to := range all {
            want := legal[[2]model.ReservationStatus{from, to}]
            if got := CanTransition(from, to); got != want {
                t.Fatalf("%s -> %s: expected %v, got %v", from, to, want, got)
            }
        }
    }
    if !IsTerminal(model.StatusCheckedOut) || !IsTerminal(model.StatusCancelled) {
        t.Fatalf("checked_out and cancelled must be terminal")
    }
    if IsTerminal(model.StatusConfirmed) {
        t.Fatalf("confirmed must not be terminal")
    }
}

func TestRequireStatus(t *testing.T) {
    err := RequireStatus("check out", model.StatusConfirmed, model.StatusCheckedIn)
    if !IsInvalidState(err) {
        t.Fatalf("expected invalid state, got %v", err)
    }
    ise := err.(InvalidStateError)
    if ise.Current != "confirmed" || len(ise.Required) != 1 || ise.Required[0] != "checked_in" {
        t.Fatalf("unexpected error contents: %+v", ise)
    }
    if err := RequireStatus("check in", model.StatusModifiedByAgent, model.StatusConfirmed, model.StatusModifiedByAgent); err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
}

func TestRequireTransitionListsSources(t *testing.T) {
    err := RequireTransition(model.StatusCheckedIn, model.StatusCancelled)
    var ise InvalidStateError
    if e, ok := err.(InvalidStateError); ok {
        ise = e
    } else {
        t.Fatalf("expected InvalidStateError, got %T", err)
    }
    if len(ise.Required) != 2 || ise.Required[0] != "confirmed" || ise.Required[1] != "modified_by_agent" {
        t.Fatalf("unexpected required states: %v", ise.Required)
    }
}

func TestInvoiceTransitions(t *testing.T) {
    if err := RequireInvoiceTransition(model.InvoiceDraft, model.InvoiceIssued); err != nil {
        t.Fatalf("draft -> issued: %v", err)
    }
    if err := RequireInvoiceTransition(model.InvoiceIssued, model.InvoicePaid); err != nil {
        t.Fatalf("issued -> paid: %v", err)
    }
    if err := RequireInvoiceTransition(model.InvoiceDraft, model.InvoicePaid); !IsInvalidState(err) {
        t.Fatalf("draft -> paid should fail, got %v", err)
    }
    if err := RequireInvoiceTransition(model.InvoicePaid, model.InvoiceDraft); !IsInvalidState(err) {
        t.Fatalf("paid -> draft should fail, got %v", err)
    }
}
