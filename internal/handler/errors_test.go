package handler

import (
    "errors"
    "fmt"
    "net/http"
    "testing"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
)

func TestClassify(t *testing.T) {
    cases := []struct {
        err  error
        code int
        name string
    }{
        {domain.ValidationError{Field: "check_in", Msg: "is required"}, http.StatusBadRequest, "validation_error"},
        {domain.NotFoundError{Resource: "reservation", ID: 4}, http.StatusNotFound, "not_found"},
        {domain.InsufficientInventoryError{RoomTypeID: 1, Requested: 2, Available: 1}, http.StatusConflict, "insufficient_inventory"},
        {domain.InvalidStateError{Operation: "check in", Current: "cancelled"}, http.StatusConflict, "invalid_state"},
        {domain.TypeMismatchError{ExpectedRoomTypeID: 1, ActualRoomTypeID: 2}, http.StatusUnprocessableEntity, "type_mismatch"},
        {domain.RoomUnavailableError{RoomID: 3}, http.StatusConflict, "room_unavailable"},
        {domain.NotSupportedError{Msg: "rooms"}, http.StatusUnprocessableEntity, "not_supported"},
        {domain.ForbiddenError{Msg: "no"}, http.StatusForbidden, "forbidden"},
        {fmt.Errorf("wrapped: %w", domain.RoomUnavailableError{RoomID: 3}), http.StatusConflict, "room_unavailable"},
        {domain.InternalError{Msg: "insert", Err: errors.New("driver: bad connection")}, http.StatusInternalServerError, "internal_error"},
        {errors.New("boom"), http.StatusInternalServerError, "internal_error"},
    }
    for _, tc := range cases {
        code, body := classify(tc.err)
        if code != tc.code || body.Error != tc.name {
            t.Fatalf("%v: got %d %s, want %d %s", tc.err, code, body.Error, tc.code, tc.name)
        }
    }
}

func TestInternalErrorsStayOpaque(t *testing.T) {
    _, body := classify(domain.InternalError{Msg: "insert", Err: errors.New("password=hunter2")})
    if body.Message != "internal server error" || body.Details != nil {
        t.Fatalf("internal detail leaked: %+v", body)
    }
}

func TestValidatorNamesJSONField(t *testing.T) {
    v := NewRequestValidator()
    err := v.Validate(&createReservationRequest{
        HotelID: 1, CheckIn: "2025-03-10", CheckOut: "2025-03-11",
        Rooms: []roomRequestDTO{{RoomTypeID: 1, Quantity: 0}},
    })
    var ve domain.ValidationError
    if !errors.As(err, &ve) || ve.Field != "rooms[0].quantity" {
        t.Fatalf("unexpected validation error: %#v", err)
    }
    if err := v.Validate(&invoiceStatusRequest{Status: "void"}); !domain.IsValidation(err) {
        t.Fatalf("expected oneof failure, got %v", err)
    }
}
